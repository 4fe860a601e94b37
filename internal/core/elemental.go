package core

import "slimelab/pkg/domain"

// Damage multipliers for elemental matchups.
const (
	AdvantageMultiplier    = 1.5
	DisadvantageMultiplier = 0.75
)

// beats lists, for each element, the element it has the advantage over.
var beats = map[domain.Element]domain.Element{
	domain.ElementWater:    domain.ElementFire,
	domain.ElementFire:     domain.ElementElectric,
	domain.ElementElectric: domain.ElementWater,
}

// ElementalMultiplier scales damage dealt by attacker against defender.
// Neutral on either side and mirror matchups are even.
func ElementalMultiplier(attacker, defender domain.Element) float64 {
	if attacker == domain.ElementNeutral || defender == domain.ElementNeutral {
		return 1
	}
	switch {
	case beats[attacker] == defender:
		return AdvantageMultiplier
	case beats[defender] == attacker:
		return DisadvantageMultiplier
	default:
		return 1
	}
}

// HasAdvantage reports whether attacker is strong against defender.
func HasAdvantage(attacker, defender domain.Element) bool {
	return ElementalMultiplier(attacker, defender) > 1
}

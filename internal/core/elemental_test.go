package core

import (
	"testing"

	"slimelab/pkg/domain"
)

func TestElementalMultiplier(t *testing.T) {
	cases := []struct {
		attacker, defender domain.Element
		want               float64
	}{
		{domain.ElementWater, domain.ElementFire, AdvantageMultiplier},
		{domain.ElementFire, domain.ElementElectric, AdvantageMultiplier},
		{domain.ElementElectric, domain.ElementWater, AdvantageMultiplier},
		{domain.ElementFire, domain.ElementWater, DisadvantageMultiplier},
		{domain.ElementElectric, domain.ElementFire, DisadvantageMultiplier},
		{domain.ElementWater, domain.ElementElectric, DisadvantageMultiplier},
		{domain.ElementFire, domain.ElementFire, 1},
		{domain.ElementNeutral, domain.ElementFire, 1},
		{domain.ElementWater, domain.ElementNeutral, 1},
	}
	for _, tc := range cases {
		if got := ElementalMultiplier(tc.attacker, tc.defender); got != tc.want {
			t.Fatalf("%s vs %s = %v, want %v", tc.attacker, tc.defender, got, tc.want)
		}
	}
	if !HasAdvantage(domain.ElementWater, domain.ElementFire) || HasAdvantage(domain.ElementFire, domain.ElementWater) {
		t.Fatalf("unexpected advantage results")
	}
}

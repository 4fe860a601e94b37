package core

import (
	"slices"
	"strings"

	"slimelab/pkg/domain"
)

// SortingRule filters creatures. Zero fields match anything; a zero MaxLevel
// leaves the level unbounded above.
type SortingRule struct {
	Element  domain.Element
	MinLevel int
	MaxLevel int
	Mood     domain.Mood
}

// Matches reports whether s passes every populated field of the rule.
func (r SortingRule) Matches(s *Slime) bool {
	switch {
	case s == nil:
		return false
	case r.Element != "" && s.Element() != r.Element:
		return false
	case s.Level() < r.MinLevel:
		return false
	case r.MaxLevel > 0 && s.Level() > r.MaxLevel:
		return false
	case r.Mood != "" && s.Mood() != r.Mood:
		return false
	}
	return true
}

// ApplyRules keeps the creatures that satisfy every rule, in input order.
func ApplyRules(slimes []*Slime, rules ...SortingRule) []*Slime {
	out := make([]*Slime, 0, len(slimes))
next:
	for _, s := range slimes {
		for _, rule := range rules {
			if !rule.Matches(s) {
				continue next
			}
		}
		out = append(out, s)
	}
	return out
}

// GroupByElement buckets creatures by element, preserving input order within
// each bucket.
func GroupByElement(slimes []*Slime) map[domain.Element][]*Slime {
	groups := make(map[domain.Element][]*Slime)
	for _, s := range slimes {
		groups[s.Element()] = append(groups[s.Element()], s)
	}
	return groups
}

// SortByLevel returns a copy ordered from highest to lowest level. Ties keep
// their input order.
func SortByLevel(slimes []*Slime) []*Slime {
	out := slices.Clone(slimes)
	slices.SortStableFunc(out, func(a, b *Slime) int { return b.Level() - a.Level() })
	return out
}

// SortByName returns a copy ordered by name.
func SortByName(slimes []*Slime) []*Slime {
	out := slices.Clone(slimes)
	slices.SortStableFunc(out, func(a, b *Slime) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// TopByLevel returns at most n creatures with the highest levels.
func TopByLevel(slimes []*Slime, n int) []*Slime {
	if n <= 0 {
		return nil
	}
	out := SortByLevel(slimes)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

package core

import (
	"sort"

	"slimelab/pkg/domain"
)

// SpecialEvolution is an outcome gated by environment, time of day or affinity.
type SpecialEvolution struct {
	TargetName string
	Delta      domain.Stats
}

// HourPredicate decides whether an hour of day in [0,23] opens a time window.
type HourPredicate func(hour int) bool

// HourWindow returns a predicate accepting hours in [start, end). A window whose
// end is not after its start wraps past midnight, so HourWindow(20, 6) accepts
// 20:00 through 05:59.
func HourWindow(start, end int) HourPredicate {
	return func(hour int) bool {
		if start < end {
			return hour >= start && hour < end
		}
		return hour >= start || hour < end
	}
}

type envKey struct {
	element     domain.Element
	environment domain.Environment
}

type timedEvolution struct {
	evolution SpecialEvolution
	window    HourPredicate
}

// SpecialEvolutionRegistry keeps the three independent special evolution tables.
type SpecialEvolutionRegistry struct {
	environment map[envKey]SpecialEvolution
	timed       map[string]timedEvolution
	affinity    map[string]SpecialEvolution
}

// NewSpecialEvolutionRegistry returns the registry with default entries.
func NewSpecialEvolutionRegistry() *SpecialEvolutionRegistry {
	r := NewEmptySpecialEvolutionRegistry()
	r.RegisterEnvironment(domain.ElementFire, domain.EnvironmentVolcanic, SpecialEvolution{"Magma Titan", domain.Stats{HP: 60, Attack: 25, Defense: 20, Speed: 15}})
	r.RegisterEnvironment(domain.ElementWater, domain.EnvironmentAquatic, SpecialEvolution{"Oceanic Guardian", domain.Stats{HP: 70, Attack: 20, Defense: 25, Speed: 12}})
	r.RegisterEnvironment(domain.ElementElectric, domain.EnvironmentStorm, SpecialEvolution{"Tempest Sovereign", domain.Stats{HP: 55, Attack: 30, Defense: 15, Speed: 25}})

	r.RegisterTimed("Moon Stone", SpecialEvolution{"Lunar Eclipse", domain.Stats{HP: 65, Attack: 22, Defense: 18, Speed: 20}}, HourWindow(20, 6))
	r.RegisterTimed("Sun Stone", SpecialEvolution{"Solar Flare", domain.Stats{HP: 60, Attack: 28, Defense: 16, Speed: 18}}, HourWindow(6, 20))

	r.RegisterAffinity("Friendship Stone", SpecialEvolution{"Eternal Bond", domain.Stats{HP: 80, Attack: 35, Defense: 30, Speed: 25}})
	return r
}

// NewEmptySpecialEvolutionRegistry returns a registry without entries.
func NewEmptySpecialEvolutionRegistry() *SpecialEvolutionRegistry {
	return &SpecialEvolutionRegistry{
		environment: make(map[envKey]SpecialEvolution),
		timed:       make(map[string]timedEvolution),
		affinity:    make(map[string]SpecialEvolution),
	}
}

// RegisterEnvironment stores an outcome for an (element, environment) pair.
func (r *SpecialEvolutionRegistry) RegisterEnvironment(element domain.Element, env domain.Environment, evo SpecialEvolution) {
	r.environment[envKey{element, env}] = evo
}

// RegisterTimed stores an outcome for an item, available while window holds.
func (r *SpecialEvolutionRegistry) RegisterTimed(item string, evo SpecialEvolution, window HourPredicate) {
	r.timed[item] = timedEvolution{evolution: evo, window: window}
}

// RegisterAffinity stores an affinity-gated outcome for an item.
func (r *SpecialEvolutionRegistry) RegisterAffinity(item string, evo SpecialEvolution) {
	r.affinity[item] = evo
}

// Environment looks up the outcome for an (element, environment) pair.
func (r *SpecialEvolutionRegistry) Environment(element domain.Element, env domain.Environment) (SpecialEvolution, bool) {
	evo, ok := r.environment[envKey{element, env}]
	return evo, ok
}

// HasTimed reports whether the item has a time-gated entry, regardless of hour.
func (r *SpecialEvolutionRegistry) HasTimed(item string) bool {
	_, ok := r.timed[item]
	return ok
}

// Time looks up the item's time-gated outcome and evaluates its window.
func (r *SpecialEvolutionRegistry) Time(item string, hour int) (SpecialEvolution, bool) {
	entry, ok := r.timed[item]
	if !ok || entry.window == nil || !entry.window(hour) {
		return SpecialEvolution{}, false
	}
	return entry.evolution, true
}

// Affinity looks up the item's affinity-gated outcome.
func (r *SpecialEvolutionRegistry) Affinity(item string) (SpecialEvolution, bool) {
	evo, ok := r.affinity[item]
	return evo, ok
}

// ItemNames returns every item name known to the time and affinity tables.
func (r *SpecialEvolutionRegistry) ItemNames() []string {
	seen := make(map[string]struct{}, len(r.timed)+len(r.affinity))
	for name := range r.timed {
		seen[name] = struct{}{}
	}
	for name := range r.affinity {
		seen[name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

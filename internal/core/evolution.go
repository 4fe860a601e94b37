package core

import (
	"fmt"
	"strings"
	"time"

	"slimelab/pkg/domain"
)

const (
	// MinEvolutionLevel is the level every evolution mode requires.
	MinEvolutionLevel = 10
	// AffinityEvolutionThreshold is the affinity the affinity mode requires.
	AffinityEvolutionThreshold = 70

	evolvedNamePrefix = "Evolved "
)

// DefaultEvolutionBoost is applied by the level tree when an element has no paths.
var DefaultEvolutionBoost = domain.Stats{HP: 20, Attack: 10, Defense: 5, Speed: 5}

// EvolutionMode identifies one of the four evolution tables.
type EvolutionMode string

const (
	ModeLevelTree   EvolutionMode = "level"
	ModeEnvironment EvolutionMode = "environment"
	ModeTime        EvolutionMode = "time"
	ModeAffinity    EvolutionMode = "affinity"
)

// ParseEvolutionMode accepts a mode name case-insensitively.
func ParseEvolutionMode(raw string) (EvolutionMode, error) {
	switch mode := EvolutionMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case ModeLevelTree, ModeEnvironment, ModeTime, ModeAffinity:
		return mode, nil
	}
	return "", fmt.Errorf("unknown evolution mode %q", raw)
}

// EvolutionRequest carries the context one evolution mode needs. The set of
// implementations is closed: LevelTree, InEnvironment, AtHour and WithAffinity.
type EvolutionRequest interface {
	Mode() EvolutionMode
	isEvolutionRequest()
}

// LevelTree requests a level-gated evolution from the path catalog.
type LevelTree struct{}

// InEnvironment requests the special evolution for an environment.
type InEnvironment struct {
	Environment domain.Environment
}

// AtHour requests the time-gated evolution for an hour of day in [0,23].
type AtHour struct {
	Hour int
}

// AtTime builds an AtHour request from a clock reading.
func AtTime(t time.Time) AtHour { return AtHour{Hour: t.Hour()} }

// WithAffinity requests the affinity-gated evolution.
type WithAffinity struct{}

func (LevelTree) Mode() EvolutionMode     { return ModeLevelTree }
func (InEnvironment) Mode() EvolutionMode { return ModeEnvironment }
func (AtHour) Mode() EvolutionMode        { return ModeTime }
func (WithAffinity) Mode() EvolutionMode  { return ModeAffinity }

func (LevelTree) isEvolutionRequest()     {}
func (InEnvironment) isEvolutionRequest() {}
func (AtHour) isEvolutionRequest()        {}
func (WithAffinity) isEvolutionRequest()  {}

// Outcome is the evolution a resolver selected.
type Outcome struct {
	Mode       EvolutionMode
	TargetName string
	Delta      domain.Stats
}

// modeRule pairs a mode's eligibility check with its outcome selection.
// check returns an empty reason when the slime qualifies; choose is only
// called after that.
type modeRule struct {
	check  func(r *Resolver, s *domain.Slime, item domain.EvolutionItem, req EvolutionRequest) string
	choose func(r *Resolver, s *domain.Slime, item domain.EvolutionItem, req EvolutionRequest) Outcome
}

var modeRules = map[EvolutionMode]modeRule{
	ModeLevelTree: {
		check: func(*Resolver, *domain.Slime, domain.EvolutionItem, EvolutionRequest) string { return "" },
		choose: func(r *Resolver, s *domain.Slime, _ domain.EvolutionItem, _ EvolutionRequest) Outcome {
			path, ok := r.catalog.Select(s.Element(), s.Level())
			if !ok {
				return Outcome{Mode: ModeLevelTree, TargetName: evolvedNamePrefix + s.Name(), Delta: DefaultEvolutionBoost}
			}
			return Outcome{Mode: ModeLevelTree, TargetName: path.TargetName, Delta: path.Delta}
		},
	},
	ModeEnvironment: {
		check: func(r *Resolver, s *domain.Slime, _ domain.EvolutionItem, req EvolutionRequest) string {
			env := req.(InEnvironment).Environment
			if !env.MatchesElement(s.Element()) {
				return fmt.Sprintf("%s slime does not match %s environment", s.Element(), env)
			}
			if _, ok := r.specials.Environment(s.Element(), env); !ok {
				return fmt.Sprintf("no evolution registered for %s in %s", s.Element(), env)
			}
			return ""
		},
		choose: func(r *Resolver, s *domain.Slime, _ domain.EvolutionItem, req EvolutionRequest) Outcome {
			evo, _ := r.specials.Environment(s.Element(), req.(InEnvironment).Environment)
			return Outcome{Mode: ModeEnvironment, TargetName: evo.TargetName, Delta: evo.Delta}
		},
	},
	ModeTime: {
		check: func(r *Resolver, _ *domain.Slime, item domain.EvolutionItem, req EvolutionRequest) string {
			hour := req.(AtHour).Hour
			if hour < 0 || hour > 23 {
				return fmt.Sprintf("hour %d outside [0,23]", hour)
			}
			if !r.specials.HasTimed(item.Name) {
				return r.unknownItem(item.Name)
			}
			if _, ok := r.specials.Time(item.Name, hour); !ok {
				return fmt.Sprintf("%s has no effect at hour %d", item.Name, hour)
			}
			return ""
		},
		choose: func(r *Resolver, _ *domain.Slime, item domain.EvolutionItem, req EvolutionRequest) Outcome {
			evo, _ := r.specials.Time(item.Name, req.(AtHour).Hour)
			return Outcome{Mode: ModeTime, TargetName: evo.TargetName, Delta: evo.Delta}
		},
	},
	ModeAffinity: {
		check: func(r *Resolver, s *domain.Slime, item domain.EvolutionItem, _ EvolutionRequest) string {
			if s.Affinity() < AffinityEvolutionThreshold {
				return fmt.Sprintf("affinity %d below %d", s.Affinity(), AffinityEvolutionThreshold)
			}
			if _, ok := r.specials.Affinity(item.Name); !ok {
				return r.unknownItem(item.Name)
			}
			return ""
		},
		choose: func(r *Resolver, _ *domain.Slime, item domain.EvolutionItem, _ EvolutionRequest) Outcome {
			evo, _ := r.specials.Affinity(item.Name)
			return Outcome{Mode: ModeAffinity, TargetName: evo.TargetName, Delta: evo.Delta}
		},
	},
}

// Resolver selects and applies evolutions across the four modes.
type Resolver struct {
	catalog  *EvolutionCatalog
	specials *SpecialEvolutionRegistry
}

// NewResolver builds a resolver; nil tables are replaced by the defaults.
func NewResolver(catalog *EvolutionCatalog, specials *SpecialEvolutionRegistry) *Resolver {
	if catalog == nil {
		catalog = NewEvolutionCatalog()
	}
	if specials == nil {
		specials = NewSpecialEvolutionRegistry()
	}
	return &Resolver{catalog: catalog, specials: specials}
}

func (r *Resolver) Catalog() *EvolutionCatalog          { return r.catalog }
func (r *Resolver) Specials() *SpecialEvolutionRegistry { return r.specials }

// CanEvolve reports whether Evolve would succeed.
func (r *Resolver) CanEvolve(s *domain.Slime, item domain.EvolutionItem, req EvolutionRequest) bool {
	_, err := r.Resolve(s, item, req)
	return err == nil
}

// Resolve selects the outcome for the request without touching the slime.
// The item's element does not scale the result.
func (r *Resolver) Resolve(s *domain.Slime, item domain.EvolutionItem, req EvolutionRequest) (Outcome, error) {
	const op = "evolve"
	if s == nil {
		return Outcome{}, domain.NewInvalidOperation(op, "slime is required")
	}
	if req == nil {
		return Outcome{}, domain.NewInvalidOperation(op, "evolution request is required")
	}
	rule, ok := modeRules[req.Mode()]
	if !ok {
		return Outcome{}, domain.NewInvalidOperation(op, fmt.Sprintf("unsupported mode %q", req.Mode()))
	}
	if s.Level() < MinEvolutionLevel {
		return Outcome{}, domain.NewInvalidOperation(op, fmt.Sprintf("level %d below %d", s.Level(), MinEvolutionLevel))
	}
	if why := rule.check(r, s, item, req); why != "" {
		return Outcome{}, domain.NewInvalidOperation(op, why)
	}
	return rule.choose(r, s, item, req), nil
}

// Evolve resolves the request and applies it. The slime is untouched on error.
func (r *Resolver) Evolve(s *domain.Slime, item domain.EvolutionItem, req EvolutionRequest) (Outcome, error) {
	outcome, err := r.Resolve(s, item, req)
	if err != nil {
		return Outcome{}, err
	}
	s.Evolve(outcome.TargetName, outcome.Delta)
	return outcome, nil
}

func (r *Resolver) unknownItem(name string) string {
	msg := fmt.Sprintf("no evolution registered for item %q", name)
	if hint, ok := SuggestName(name, r.specials.ItemNames()); ok {
		msg += fmt.Sprintf(" (did you mean %q?)", hint)
	}
	return msg
}

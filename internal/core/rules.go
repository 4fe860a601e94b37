package core

import "slimelab/pkg/domain"

// DefaultLabCapacity is the roster size the laboratory_capacity rule allows.
const DefaultLabCapacity = 10

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds an engine with the built-in policy set and the
// default laboratory capacity.
func NewDefaultRulesEngine() *RulesEngine {
	return NewRulesEngineWithCapacity(DefaultLabCapacity)
}

// NewRulesEngineWithCapacity builds the built-in policy set for a laboratory
// holding at most capacity slimes.
func NewRulesEngineWithCapacity(capacity int) *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewLaboratoryCapacityRule(capacity))
	engine.Register(NewContainmentOccupancyRule())
	engine.Register(NewGeneIdentityRule())
	engine.Register(NewExpeditionRosterRule())
	engine.Register(NewHungerAlertRule())
	return engine
}

// Package domain defines the core creature entities, value types, and
// rule evaluation primitives used by slimelab.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the laboratory roster.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntitySlime identifies an individual creature record.
	EntitySlime EntityType = "slime"
	// EntityContainmentUnit identifies a containment unit record.
	EntityContainmentUnit EntityType = "containment_unit"
	EntityExpedition      EntityType = "expedition"
)

// Element is the elemental affinity of a creature.
type Element string

// Canonical elements. Every creature carries exactly one.
const (
	ElementFire     Element = "fire"
	ElementWater    Element = "water"
	ElementElectric Element = "electric"
	ElementNeutral  Element = "neutral"
)

// Elements lists the canonical elements in catalog order.
func Elements() []Element {
	return []Element{ElementFire, ElementWater, ElementElectric, ElementNeutral}
}

// ParseElement resolves a case-insensitive element name.
func ParseElement(raw string) (Element, error) {
	e := Element(strings.ToLower(strings.TrimSpace(raw)))
	switch e {
	case ElementFire, ElementWater, ElementElectric, ElementNeutral:
		return e, nil
	default:
		return "", fmt.Errorf("unknown element %q", raw)
	}
}

// Environment classifies the habitat supplied by the containment subsystem.
type Environment string

// Canonical environments.
const (
	// EnvironmentStandard is neutral for every element.
	EnvironmentStandard Environment = "standard"
	EnvironmentVolcanic Environment = "volcanic"
	EnvironmentAquatic  Environment = "aquatic"
	EnvironmentStorm    Environment = "storm"
)

// ParseEnvironment resolves a case-insensitive environment name.
func ParseEnvironment(raw string) (Environment, error) {
	e := Environment(strings.ToLower(strings.TrimSpace(raw)))
	switch e {
	case EnvironmentStandard, EnvironmentVolcanic, EnvironmentAquatic, EnvironmentStorm:
		return e, nil
	default:
		return "", fmt.Errorf("unknown environment %q", raw)
	}
}

// MatchesElement reports whether the environment is the native habitat of the element.
// Neutral creatures and the standard environment never match.
func (env Environment) MatchesElement(element Element) bool {
	switch env {
	case EnvironmentVolcanic:
		return element == ElementFire
	case EnvironmentAquatic:
		return element == ElementWater
	case EnvironmentStorm:
		return element == ElementElectric
	default:
		return false
	}
}

// Mood is derived from hunger and never stored.
type Mood string

// Mood values ordered from best to worst.
const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodUnhappy Mood = "unhappy"
)

// ResourceKind identifies an inventory resource.
type ResourceKind string

// Resource kinds tracked by inventories.
const (
	ResourceFood     ResourceKind = "food"
	ResourceEnergy   ResourceKind = "energy"
	ResourceMaterial ResourceKind = "material"
	ResourceResearch ResourceKind = "research"
)

// EvolutionItem is the catalyst handed to the evolution resolver.
type EvolutionItem struct {
	Name    string  `json:"name"`
	Element Element `json:"element"`
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for stored records other than creatures.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContainmentUnit houses at most one creature in a fixed environment.
type ContainmentUnit struct {
	Base
	Name        string      `json:"name"`
	Environment Environment `json:"environment"`
	SlimeID     *string     `json:"slime_id"`
	Feeder      *AutoFeeder `json:"feeder,omitempty"`
}

// Occupied reports whether a creature is assigned to the unit.
func (u ContainmentUnit) Occupied() bool {
	return u.SlimeID != nil && *u.SlimeID != ""
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return fmt.Sprintf("transaction blocked by rules: %s: %s", v.Rule, v.Message)
		}
	}
	return "transaction blocked by rules"
}

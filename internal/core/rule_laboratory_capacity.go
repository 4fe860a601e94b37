package core

import (
	"context"
	"fmt"

	"slimelab/pkg/domain"
)

// NewLaboratoryCapacityRule blocks transactions that leave more than capacity
// slimes in the roster. Non-positive capacities use DefaultLabCapacity.
func NewLaboratoryCapacityRule(capacity int) domain.Rule {
	if capacity <= 0 {
		capacity = DefaultLabCapacity
	}
	return laboratoryCapacityRule{capacity: capacity}
}

type laboratoryCapacityRule struct {
	capacity int
}

func (laboratoryCapacityRule) Name() string { return "laboratory_capacity" }

func (r laboratoryCapacityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	count := len(view.ListSlimes())
	if count <= r.capacity {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     r.Name(),
		Severity: domain.SeverityBlock,
		Message:  fmt.Sprintf("laboratory over capacity: %d/%d slimes", count, r.capacity),
		Entity:   domain.EntitySlime,
	}}}, nil
}

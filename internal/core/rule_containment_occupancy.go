package core

import (
	"context"
	"fmt"

	"slimelab/pkg/domain"
)

// NewContainmentOccupancyRule blocks units that reference a missing slime and
// slimes housed in more than one unit.
func NewContainmentOccupancyRule() domain.Rule {
	return containmentOccupancyRule{}
}

type containmentOccupancyRule struct{}

func (containmentOccupancyRule) Name() string { return "containment_occupancy" }

func (r containmentOccupancyRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	housedIn := make(map[string]string)
	for _, unit := range view.ListContainmentUnits() {
		if !unit.Occupied() {
			continue
		}
		slimeID := *unit.SlimeID
		if _, ok := view.FindSlime(slimeID); !ok {
			res.Violations = append(res.Violations, r.violation(unit, fmt.Sprintf("unit %s (%s) houses missing slime %s", unit.Name, unit.ID, slimeID)))
			continue
		}
		if other, dup := housedIn[slimeID]; dup {
			res.Violations = append(res.Violations, r.violation(unit, fmt.Sprintf("slime %s housed in both %s and %s", slimeID, other, unit.ID)))
			continue
		}
		housedIn[slimeID] = unit.ID
	}
	return res, nil
}

func (r containmentOccupancyRule) violation(unit domain.ContainmentUnit, msg string) domain.Violation {
	return domain.Violation{
		Rule:     r.Name(),
		Severity: domain.SeverityBlock,
		Message:  msg,
		Entity:   domain.EntityContainmentUnit,
		EntityID: unit.ID,
	}
}

package core

import (
	"context"
	"fmt"

	"slimelab/pkg/domain"
)

// NewExpeditionRosterRule blocks states where a creature is both in the
// roster and travelling with an active expedition, or travels with two.
func NewExpeditionRosterRule() domain.Rule {
	return expeditionRosterRule{}
}

type expeditionRosterRule struct{}

func (expeditionRosterRule) Name() string { return "expedition_roster" }

func (r expeditionRosterRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	travelling := make(map[string]string)
	for _, trip := range view.ListExpeditions() {
		if trip.Status != domain.ExpeditionActive {
			continue
		}
		for _, member := range trip.Members {
			id := member.ID()
			if _, home := view.FindSlime(id); home {
				res.Violations = append(res.Violations, r.violation(trip, fmt.Sprintf("slime %s is in the roster and away on %s", id, trip.ID)))
				continue
			}
			if other, dup := travelling[id]; dup {
				res.Violations = append(res.Violations, r.violation(trip, fmt.Sprintf("slime %s travels with both %s and %s", id, other, trip.ID)))
				continue
			}
			travelling[id] = trip.ID
		}
	}
	return res, nil
}

func (r expeditionRosterRule) violation(trip domain.Expedition, msg string) domain.Violation {
	return domain.Violation{
		Rule:     r.Name(),
		Severity: domain.SeverityBlock,
		Message:  msg,
		Entity:   domain.EntityExpedition,
		EntityID: trip.ID,
	}
}

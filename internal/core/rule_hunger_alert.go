package core

import (
	"context"
	"fmt"

	"slimelab/pkg/domain"
)

// NewHungerAlertRule warns when a slime written by the transaction is unhappy.
func NewHungerAlertRule() domain.Rule {
	return hungerAlertRule{}
}

type hungerAlertRule struct{}

func (hungerAlertRule) Name() string { return "hunger_alert" }

func (r hungerAlertRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntitySlime {
			continue
		}
		slime, ok := change.After.(*domain.Slime)
		if !ok || slime == nil || slime.Mood() != domain.MoodUnhappy {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("slime %s is unhappy (hunger %d)", slime.Name(), slime.Hunger()),
			Entity:   domain.EntitySlime,
			EntityID: slime.ID(),
		})
	}
	return res, nil
}

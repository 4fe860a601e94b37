package core

import (
	"context"
	"errors"
	"testing"

	"slimelab/pkg/domain"
)

func hungrySlime(name string, hunger int) *domain.Slime {
	s := domain.NewSlime(name, domain.ElementWater)
	s.IncreaseHunger(hunger)
	return s
}

func TestServiceFeederLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(nil)
	pond := mustUnit(t, svc, "Pond", domain.EnvironmentAquatic)

	if _, _, err := svc.AttachFeeder(ctx, pond.ID, 0, 10); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected interval error, got %v", err)
	}
	if _, _, err := svc.AttachFeeder(ctx, "missing", 5, 10); !IsNotFound(err) {
		t.Fatalf("expected missing unit, got %v", err)
	}
	if _, _, err := svc.DetachFeeder(ctx, pond.ID); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected no feeder error, got %v", err)
	}

	unit, _, err := svc.AttachFeeder(ctx, pond.ID, 5, 0)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if unit.Feeder == nil || unit.Feeder.Amount != domain.DefaultFeedAmount || !unit.Feeder.Active {
		t.Fatalf("unexpected feeder %+v", unit.Feeder)
	}
	unit, _, err = svc.SetFeederActive(ctx, pond.ID, false)
	if err != nil || unit.Feeder.Active {
		t.Fatalf("pause: %+v %v", unit.Feeder, err)
	}
	unit, _, err = svc.DetachFeeder(ctx, pond.ID)
	if err != nil || unit.Feeder != nil {
		t.Fatalf("detach: %+v %v", unit, err)
	}
	if _, _, err := svc.SetFeederActive(ctx, pond.ID, true); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected no feeder error, got %v", err)
	}

	seeded := domain.NewAutoFeeder(1, 1)
	created, _, err := svc.CreateContainmentUnit(ctx, ContainmentUnit{Name: "Fresh", Feeder: &seeded})
	if err != nil || created.Feeder != nil {
		t.Fatalf("new units start without a feeder: %+v %v", created, err)
	}
}

func TestServiceTickFeeders(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(nil)
	drip := mustCreate(t, svc, hungrySlime("Drip", 60))
	pond := mustUnit(t, svc, "Pond", domain.EnvironmentAquatic)
	empty := mustUnit(t, svc, "Empty", domain.EnvironmentAquatic)
	if _, _, err := svc.AssignToUnit(ctx, pond.ID, drip.ID()); err != nil {
		t.Fatalf("assign: %v", err)
	}
	for _, id := range []string{pond.ID, empty.ID} {
		if _, _, err := svc.AttachFeeder(ctx, id, 10, 20); err != nil {
			t.Fatalf("attach: %v", err)
		}
	}
	inv := stockedInventory(15)

	report, _, err := svc.TickFeeders(ctx, 6, inv)
	if err != nil || len(report.Fed) != 0 {
		t.Fatalf("fed before the interval: %+v %v", report, err)
	}
	report, _, err = svc.TickFeeders(ctx, 4, inv)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(report.Fed) != 1 || report.Fed[0] != drip.ID() || report.FoodUsed != 10 {
		t.Fatalf("unexpected report %+v", report)
	}
	if got, _ := svc.GetSlime(drip.ID()); got.Hunger() != 40 {
		t.Fatalf("expected hunger 40, got %d", got.Hunger())
	}
	if inv.AmountOf(domain.ResourceFood) != 5 {
		t.Fatalf("expected 5 food left, got %d", inv.AmountOf(domain.ResourceFood))
	}
	if unit, _ := svc.GetContainmentUnit(ctx, empty.ID); unit.Feeder.Elapsed != 0 {
		t.Fatalf("feeder on an empty unit advanced to %d", unit.Feeder.Elapsed)
	}

	report, _, err = svc.TickFeeders(ctx, 10, inv)
	if err != nil || len(report.Skipped) != 1 || len(report.Fed) != 0 {
		t.Fatalf("expected skipped feed without food: %+v %v", report, err)
	}
	if got, _ := svc.GetSlime(drip.ID()); got.Hunger() != 40 {
		t.Fatalf("skipped feed changed hunger to %d", got.Hunger())
	}
	if unit, _ := svc.GetContainmentUnit(ctx, pond.ID); unit.Feeder.Elapsed != 0 {
		t.Fatalf("skipped feed should restart the timer, got %d", unit.Feeder.Elapsed)
	}

	report, _, err = svc.TickFeeders(ctx, 10, nil)
	if err != nil || len(report.Fed) != 1 || report.FoodUsed != 0 {
		t.Fatalf("expected free feed without an inventory: %+v %v", report, err)
	}
	if got, _ := svc.GetSlime(drip.ID()); got.Hunger() != 20 {
		t.Fatalf("expected hunger 20, got %d", got.Hunger())
	}

	if _, _, err := svc.SetFeederActive(ctx, pond.ID, false); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if report, _, err := svc.TickFeeders(ctx, 10, nil); err != nil || len(report.Fed) != 0 {
		t.Fatalf("paused feeder fed: %+v %v", report, err)
	}
}

type rejectSlimeUpdates struct{}

func (rejectSlimeUpdates) Name() string { return "reject_feeding" }

func (rejectSlimeUpdates) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	for _, c := range changes {
		if c.Entity == domain.EntitySlime && c.Action == domain.ActionUpdate {
			return domain.Result{Violations: []domain.Violation{{Rule: "reject_feeding", Severity: SeverityBlock, Entity: domain.EntitySlime}}}, nil
		}
	}
	return domain.Result{}, nil
}

func TestServiceTickFeedersRefundsFailedTick(t *testing.T) {
	ctx := context.Background()
	engine := NewDefaultRulesEngine()
	engine.Register(rejectSlimeUpdates{})
	svc := NewInMemoryService(engine)
	drip := mustCreate(t, svc, hungrySlime("Drip", 60))
	pond := mustUnit(t, svc, "Pond", domain.EnvironmentAquatic)
	if _, _, err := svc.AssignToUnit(ctx, pond.ID, drip.ID()); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, _, err := svc.AttachFeeder(ctx, pond.ID, 5, 20); err != nil {
		t.Fatalf("attach: %v", err)
	}
	inv := stockedInventory(30)
	_, _, err := svc.TickFeeders(ctx, 5, inv)
	blockedBy(t, err, "reject_feeding")
	if inv.AmountOf(domain.ResourceFood) != 30 {
		t.Fatalf("expected food refunded, got %d", inv.AmountOf(domain.ResourceFood))
	}
	if got, _ := svc.GetSlime(drip.ID()); got.Hunger() != 60 {
		t.Fatalf("blocked tick changed hunger to %d", got.Hunger())
	}
	if unit, _ := svc.GetContainmentUnit(ctx, pond.ID); unit.Feeder.Elapsed != 0 || unit.Feeder.Interval != 5 {
		t.Fatalf("blocked tick changed the feeder: %+v", unit.Feeder)
	}
}

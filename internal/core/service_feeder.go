package core

import (
	"context"
	"fmt"

	"slimelab/pkg/domain"
)

const (
	opAttachFeeder    = "attach_feeder"
	opDetachFeeder    = "detach_feeder"
	opSetFeederActive = "set_feeder_active"
	opTickFeeders     = "tick_feeders"
)

// FeedReport lists the occupants an auto-feeder tick reached.
type FeedReport struct {
	Fed      []string
	Skipped  []string
	FoodUsed int
}

// refundable inventories can take back food consumed by a failed tick.
type refundable interface {
	Add(kind domain.ResourceKind, amount int)
}

// AttachFeeder fits an active auto-feeder to a unit, replacing any existing
// one. A non-positive amount selects domain.DefaultFeedAmount.
func (s *Service) AttachFeeder(ctx context.Context, unitID string, interval, amount int) (ContainmentUnit, Result, error) {
	if interval <= 0 {
		err := domain.NewInvalidOperation(opAttachFeeder, "interval must be positive")
		_ = s.run(ctx, opAttachFeeder, func(context.Context) (string, Result, error) { return unitID, Result{}, err })
		return ContainmentUnit{}, Result{}, err
	}
	return s.updateFeeder(ctx, opAttachFeeder, unitID, func(u *ContainmentUnit) error {
		feeder := domain.NewAutoFeeder(interval, amount)
		u.Feeder = &feeder
		return nil
	})
}

// DetachFeeder removes a unit's auto-feeder.
func (s *Service) DetachFeeder(ctx context.Context, unitID string) (ContainmentUnit, Result, error) {
	return s.updateFeeder(ctx, opDetachFeeder, unitID, func(u *ContainmentUnit) error {
		if u.Feeder == nil {
			return domain.NewInvalidOperation(opDetachFeeder, fmt.Sprintf("unit %s has no feeder", u.ID))
		}
		u.Feeder = nil
		return nil
	})
}

// SetFeederActive pauses or resumes a unit's auto-feeder.
func (s *Service) SetFeederActive(ctx context.Context, unitID string, active bool) (ContainmentUnit, Result, error) {
	return s.updateFeeder(ctx, opSetFeederActive, unitID, func(u *ContainmentUnit) error {
		if u.Feeder == nil {
			return domain.NewInvalidOperation(opSetFeederActive, fmt.Sprintf("unit %s has no feeder", u.ID))
		}
		u.Feeder.Active = active
		return nil
	})
}

func (s *Service) updateFeeder(ctx context.Context, op, unitID string, mutate func(*ContainmentUnit) error) (ContainmentUnit, Result, error) {
	var updated ContainmentUnit
	var res Result
	err := s.run(ctx, op, func(ctx context.Context) (string, Result, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindContainmentUnit(unitID); !ok {
				return ErrNotFound{Entity: EntityContainmentUnit, ID: unitID}
			}
			updated, err = tx.UpdateContainmentUnit(unitID, mutate)
			return err
		})
		return unitID, res, err
	})
	return updated, res, err
}

// TickFeeders advances every active feeder on an occupied unit by elapsed.
// A due feeder feeds its occupant after paying FoodCost from inv; with a nil
// inv feeding is free, and a feeder that cannot be paid for skips the feed
// and restarts its timer. Empty units do not advance. When the tick cannot
// be stored, food already taken is returned to inv if it supports Add.
func (s *Service) TickFeeders(ctx context.Context, elapsed int, inv domain.ResourceInventory) (FeedReport, Result, error) {
	var report FeedReport
	var res Result
	err := s.run(ctx, opTickFeeders, func(ctx context.Context) (string, Result, error) {
		report = FeedReport{}
		if elapsed <= 0 {
			return "", Result{}, nil
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			for _, unit := range tx.Snapshot().ListContainmentUnits() {
				if !unit.Occupied() || unit.Feeder == nil || !unit.Feeder.Active {
					continue
				}
				feeder := *unit.Feeder
				due := feeder.Advance(elapsed)
				if _, err := tx.UpdateContainmentUnit(unit.ID, func(u *ContainmentUnit) error {
					u.Feeder = &feeder
					return nil
				}); err != nil {
					return err
				}
				if !due {
					continue
				}
				occupant := *unit.SlimeID
				if inv != nil {
					cost := feeder.FoodCost()
					if inv.AmountOf(domain.ResourceFood) < cost || inv.Consume(domain.ResourceFood, cost) != nil {
						report.Skipped = append(report.Skipped, occupant)
						continue
					}
					report.FoodUsed += cost
				}
				if _, err := tx.UpdateSlime(occupant, func(sl *Slime) error {
					sl.Feed(feeder.Amount)
					return nil
				}); err != nil {
					return err
				}
				report.Fed = append(report.Fed, occupant)
			}
			return nil
		})
		if err != nil && report.FoodUsed > 0 {
			if r, ok := inv.(refundable); ok {
				r.Add(domain.ResourceFood, report.FoodUsed)
			}
		}
		return "", res, err
	})
	if err != nil {
		return FeedReport{}, res, err
	}
	if len(report.Fed) > 0 || len(report.Skipped) > 0 {
		s.logger.Debug("auto-feeders ticked", "fed", len(report.Fed), "skipped", len(report.Skipped), "food_used", report.FoodUsed)
	}
	return report, res, nil
}

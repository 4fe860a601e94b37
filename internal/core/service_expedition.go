package core

import (
	"context"
	"fmt"

	"slimelab/pkg/domain"
)

const (
	opPlanExpedition       = "plan_expedition"
	opAddToExpedition      = "add_to_expedition"
	opRemoveFromExpedition = "remove_from_expedition"
	opStartExpedition      = "start_expedition"
	opReturnExpedition     = "return_expedition"
)

// EntityZone names catalog zones in not-found errors. Zones are not stored in
// the roster.
const EntityZone EntityType = "zone"

// PlanExpedition opens a preparing expedition to a registered zone. A
// non-positive maxTeam selects domain.DefaultMaxTeamSize.
func (s *Service) PlanExpedition(ctx context.Context, zoneID string, maxTeam int) (Expedition, Result, error) {
	var created Expedition
	var res Result
	err := s.run(ctx, opPlanExpedition, func(ctx context.Context) (string, Result, error) {
		zone, ok := s.catalog.Zones.Get(zoneID)
		if !ok {
			return "", Result{}, ErrNotFound{Entity: EntityZone, ID: zoneID}
		}
		if maxTeam <= 0 {
			maxTeam = domain.DefaultMaxTeamSize
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			created, err = tx.CreateExpedition(Expedition{
				Zone:        zone,
				MaxTeamSize: maxTeam,
				Status:      domain.ExpeditionPreparing,
			})
			return err
		})
		return created.ID, res, err
	})
	return created, res, err
}

// GetExpedition returns the stored expedition.
func (s *Service) GetExpedition(ctx context.Context, id string) (Expedition, bool) {
	var trip Expedition
	var ok bool
	_ = s.store.View(ctx, func(view TransactionView) error {
		trip, ok = view.FindExpedition(id)
		return nil
	})
	return trip, ok
}

// ListExpeditions returns every expedition ordered by ID.
func (s *Service) ListExpeditions() []Expedition {
	return s.store.ListExpeditions()
}

// AddToExpedition puts a roster slime on a preparing team. The slime must meet
// the zone requirement and may sit on only one preparing team at a time.
func (s *Service) AddToExpedition(ctx context.Context, expeditionID, slimeID string) (Expedition, Result, error) {
	return s.updatePreparing(ctx, opAddToExpedition, expeditionID, func(tx Transaction, trip *Expedition) error {
		if trip.HasMember(slimeID) {
			return domain.NewInvalidOperation(opAddToExpedition, fmt.Sprintf("slime %s is already on the team", slimeID))
		}
		if trip.Full() {
			return domain.NewInvalidOperation(opAddToExpedition, fmt.Sprintf("team is full (%d)", trip.MaxTeamSize))
		}
		slime, ok := tx.FindSlime(slimeID)
		if !ok {
			return ErrNotFound{Entity: EntitySlime, ID: slimeID}
		}
		if !trip.Zone.CanEnter(slime) {
			return domain.NewInvalidOperation(opAddToExpedition, fmt.Sprintf("%s does not meet %s requirement: %s", slime.Name(), trip.Zone.Name, trip.Zone.Requirement))
		}
		for _, other := range tx.Snapshot().ListExpeditions() {
			if other.ID != trip.ID && other.Status == domain.ExpeditionPreparing && other.HasMember(slimeID) {
				return domain.NewInvalidOperation(opAddToExpedition, fmt.Sprintf("slime %s is already preparing for %s", slimeID, other.ID))
			}
		}
		trip.TeamIDs = append(trip.TeamIDs, slimeID)
		return nil
	})
}

// RemoveFromExpedition takes a slime off a preparing team. Removing a slime
// that is not on the team changes nothing.
func (s *Service) RemoveFromExpedition(ctx context.Context, expeditionID, slimeID string) (Expedition, Result, error) {
	return s.updatePreparing(ctx, opRemoveFromExpedition, expeditionID, func(_ Transaction, trip *Expedition) error {
		for i, id := range trip.TeamIDs {
			if id == slimeID {
				trip.TeamIDs = append(trip.TeamIDs[:i], trip.TeamIDs[i+1:]...)
				break
			}
		}
		return nil
	})
}

func (s *Service) updatePreparing(ctx context.Context, op, id string, mutate func(Transaction, *Expedition) error) (Expedition, Result, error) {
	var updated Expedition
	var res Result
	err := s.run(ctx, op, func(ctx context.Context) (string, Result, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			trip, ok := tx.FindExpedition(id)
			if !ok {
				return ErrNotFound{Entity: EntityExpedition, ID: id}
			}
			if trip.Status != domain.ExpeditionPreparing {
				return domain.NewInvalidOperation(op, fmt.Sprintf("expedition %s is %s", id, trip.Status))
			}
			if err := mutate(tx, &trip); err != nil {
				return err
			}
			updated, err = tx.UpdateExpedition(id, func(e *Expedition) error {
				e.TeamIDs = trip.TeamIDs
				return nil
			})
			return err
		})
		return id, res, err
	})
	return updated, res, err
}

// StartExpedition sends the team out. Every member is re-checked against the
// zone requirement, released from its containment unit and removed from the
// roster; the expedition carries the members until it returns.
func (s *Service) StartExpedition(ctx context.Context, id string) (Expedition, Result, error) {
	var started Expedition
	var res Result
	err := s.run(ctx, opStartExpedition, func(ctx context.Context) (string, Result, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			trip, ok := tx.FindExpedition(id)
			if !ok {
				return ErrNotFound{Entity: EntityExpedition, ID: id}
			}
			if trip.Status != domain.ExpeditionPreparing {
				return domain.NewInvalidOperation(opStartExpedition, fmt.Sprintf("expedition %s is %s", id, trip.Status))
			}
			if trip.TeamSize() == 0 {
				return domain.NewInvalidOperation(opStartExpedition, "cannot start an expedition with no team")
			}
			members := make([]*Slime, 0, trip.TeamSize())
			for _, slimeID := range trip.TeamIDs {
				slime, ok := tx.FindSlime(slimeID)
				if !ok {
					return ErrNotFound{Entity: EntitySlime, ID: slimeID}
				}
				if !trip.Zone.CanEnter(slime) {
					return domain.NewInvalidOperation(opStartExpedition, fmt.Sprintf("%s no longer meets %s", slime.Name(), trip.Zone.Requirement))
				}
				if err := releaseHousing(tx, slimeID); err != nil {
					return err
				}
				if err := tx.DeleteSlime(slimeID); err != nil {
					return err
				}
				members = append(members, slime)
			}
			now := s.clock.Now()
			started, err = tx.UpdateExpedition(id, func(e *Expedition) error {
				e.Members = members
				e.Status = domain.ExpeditionActive
				e.StartedAt = &now
				return nil
			})
			return err
		})
		return id, res, err
	})
	return started, res, err
}

// ReturnExpedition closes an active expedition as completed or failed and
// puts every member back in the roster. When the roster cannot take them the
// expedition stays active.
func (s *Service) ReturnExpedition(ctx context.Context, id string, succeeded bool) (Expedition, Result, error) {
	var returned Expedition
	var res Result
	err := s.run(ctx, opReturnExpedition, func(ctx context.Context) (string, Result, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			trip, ok := tx.FindExpedition(id)
			if !ok {
				return ErrNotFound{Entity: EntityExpedition, ID: id}
			}
			if trip.Status != domain.ExpeditionActive {
				return domain.NewInvalidOperation(opReturnExpedition, fmt.Sprintf("expedition %s is %s", id, trip.Status))
			}
			now := s.clock.Now()
			returned, err = tx.UpdateExpedition(id, func(e *Expedition) error {
				e.Members = nil
				e.EndedAt = &now
				e.Status = domain.ExpeditionFailed
				if succeeded {
					e.Status = domain.ExpeditionCompleted
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, member := range trip.Members {
				if _, err := tx.CreateSlime(member); err != nil {
					return err
				}
			}
			return nil
		})
		return id, res, err
	})
	return returned, res, err
}

func releaseHousing(tx Transaction, slimeID string) error {
	for _, unit := range tx.Snapshot().ListContainmentUnits() {
		if !unit.Occupied() || *unit.SlimeID != slimeID {
			continue
		}
		if _, err := tx.UpdateContainmentUnit(unit.ID, func(u *ContainmentUnit) error {
			u.SlimeID = nil
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

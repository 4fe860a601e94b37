package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"slimelab/internal/lineage"
	"slimelab/pkg/domain"
)

const (
	opCreateSlime           = "create_slime"
	opDeleteSlime           = "delete_slime"
	opFeedSlime             = "feed_slime"
	opIncreaseAffinity      = "increase_affinity"
	opGainExperience        = "gain_experience"
	opCreateContainmentUnit = "create_containment_unit"
	opAssignToUnit          = "assign_to_unit"
	opReleaseFromUnit       = "release_from_unit"
	opStartBreeding         = "start_breeding"
	opCompleteBreeding      = "complete_breeding"
	opEvolve                = "evolve"
	opEvolveInUnit          = "evolve_in_unit"
)

// Unit efficiency multipliers.
const (
	EfficiencyEmpty      = 1.0
	EfficiencyStandard   = 0.9
	EfficiencyNeutral    = 0.85
	EfficiencyMatched    = 1.0
	EfficiencyMismatched = 0.7
)

// ErrNotFound is returned when an operation references a missing record.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Service is the laboratory: a transactional roster of slimes and
// containment units plus one breeding chamber and an evolution resolver.
// Every method is safe for concurrent use; chamber and resolver access is
// serialized under one mutex.
type Service struct {
	mu       sync.Mutex
	store    PersistentStore
	catalog  *Catalog
	chamber  *BreedingChamber
	resolver *Resolver
	lineage  LineageExporter

	logger    Logger
	metrics   MetricsRecorder
	tracer    Tracer
	audit     AuditRecorder
	clock     Clock
	wallClock Clock
}

// NewService constructs a service backed by store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cat := o.catalog
	if cat == nil {
		cat = NewCatalog()
	}
	if cat.Zones == nil {
		cat.Zones = NewZoneRegistry()
	}
	chamberOpts := []ChamberOption{WithComboRegistry(cat.Combos)}
	if o.rand != nil {
		chamberOpts = append(chamberOpts, WithChamberRand(o.rand))
	}
	chamberOpts = append(chamberOpts, o.chamberOpts...)
	return &Service{
		store:     store,
		catalog:   cat,
		chamber:   NewBreedingChamber(chamberOpts...),
		resolver:  NewResolver(cat.Paths, cat.Specials),
		lineage:   o.lineage,
		logger:    o.logger,
		metrics:   o.metrics,
		tracer:    o.tracer,
		audit:     o.audit,
		clock:     o.clock,
		wallClock: o.wallClock,
	}
}

// NewInMemoryService creates a service over a fresh in-memory store. A nil
// engine selects NewDefaultRulesEngine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(NewMemoryStore(engine), opts...)
}

// Store exposes the backing store for read helpers and tests.
func (s *Service) Store() PersistentStore { return s.store }

// Catalog returns the lookup tables the service breeds, evolves and plans
// expeditions with.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Resolver returns the evolution resolver. Callers must not use it
// concurrently with Evolve.
func (s *Service) Resolver() *Resolver { return s.resolver }

// run wraps one operation with tracing, metrics, logging and auditing. fn
// returns the ID of the entity it touched.
func (s *Service) run(ctx context.Context, op string, fn func(ctx context.Context) (string, Result, error)) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	entityID, res, err := fn(ctx)
	duration := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	for _, v := range res.Violations {
		if v.Severity == SeverityWarn {
			s.logger.Warn("rule warning", "operation", op, "rule", v.Rule, "entity_id", v.EntityID, "message", v.Message)
		}
	}
	if err != nil {
		s.logger.Error("operation failed", "operation", op, "entity_id", entityID, "error", err)
		s.recordAudit(ctx, op, entityID, AuditStatusError, err, duration)
		return err
	}
	s.logger.Debug("operation completed", "operation", op, "entity_id", entityID, "duration", duration)
	s.recordAudit(ctx, op, entityID, AuditStatusSuccess, nil, duration)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, op, entityID string, status AuditStatus, err error, duration time.Duration) {
	meta, ok := auditedOperations[op]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    status,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

// Slimes ---------------------------------------------------------------------

// CreateSlime adds slime to the roster.
func (s *Service) CreateSlime(ctx context.Context, slime *Slime) (*Slime, Result, error) {
	var created *Slime
	var res Result
	err := s.run(ctx, opCreateSlime, func(ctx context.Context) (string, Result, error) {
		if slime == nil {
			return "", Result{}, domain.NewInvalidOperation(opCreateSlime, "slime is required")
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			created, err = tx.CreateSlime(slime)
			return err
		})
		return slime.ID(), res, err
	})
	return created, res, err
}

// GetSlime returns a copy of the stored slime.
func (s *Service) GetSlime(id string) (*Slime, bool) {
	return s.store.GetSlime(id)
}

// ListSlimes returns copies of every stored slime ordered by ID.
func (s *Service) ListSlimes() []*Slime {
	return s.store.ListSlimes()
}

// DeleteSlime removes a slime that is not housed in a unit.
func (s *Service) DeleteSlime(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.run(ctx, opDeleteSlime, func(ctx context.Context) (string, Result, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindSlime(id); !ok {
				return ErrNotFound{Entity: EntitySlime, ID: id}
			}
			return tx.DeleteSlime(id)
		})
		return id, res, err
	})
	return res, err
}

// FeedSlime lowers hunger by amount and grants the same amount of experience.
func (s *Service) FeedSlime(ctx context.Context, id string, amount int) (*Slime, Result, error) {
	return s.updateSlime(ctx, opFeedSlime, id, func(sl *Slime) error {
		sl.Feed(amount)
		return nil
	})
}

// IncreaseAffinity raises affinity by amount, saturating at domain.MaxAffinity.
func (s *Service) IncreaseAffinity(ctx context.Context, id string, amount int) (*Slime, Result, error) {
	return s.updateSlime(ctx, opIncreaseAffinity, id, func(sl *Slime) error {
		sl.IncreaseAffinity(amount)
		return nil
	})
}

// GainExperience adds experience, levelling up every domain.ExperiencePerLevel.
func (s *Service) GainExperience(ctx context.Context, id string, amount int) (*Slime, Result, error) {
	return s.updateSlime(ctx, opGainExperience, id, func(sl *Slime) error {
		sl.GainExperience(amount)
		return nil
	})
}

func (s *Service) updateSlime(ctx context.Context, op, id string, mutator func(*Slime) error) (*Slime, Result, error) {
	var updated *Slime
	var res Result
	err := s.run(ctx, op, func(ctx context.Context) (string, Result, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindSlime(id); !ok {
				return ErrNotFound{Entity: EntitySlime, ID: id}
			}
			updated, err = tx.UpdateSlime(id, mutator)
			return err
		})
		return id, res, err
	})
	return updated, res, err
}

// Containment units ------------------------------------------------------------

// CreateContainmentUnit adds an empty unit. An empty environment defaults to
// Standard.
func (s *Service) CreateContainmentUnit(ctx context.Context, unit ContainmentUnit) (ContainmentUnit, Result, error) {
	var created ContainmentUnit
	var res Result
	err := s.run(ctx, opCreateContainmentUnit, func(ctx context.Context) (string, Result, error) {
		if unit.Environment != "" {
			if _, err := domain.ParseEnvironment(string(unit.Environment)); err != nil {
				return unit.ID, Result{}, domain.NewInvalidOperation(opCreateContainmentUnit, err.Error())
			}
		}
		unit.SlimeID = nil
		unit.Feeder = nil
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			created, err = tx.CreateContainmentUnit(unit)
			return err
		})
		return created.ID, res, err
	})
	return created, res, err
}

// GetContainmentUnit returns the stored unit.
func (s *Service) GetContainmentUnit(ctx context.Context, id string) (ContainmentUnit, bool) {
	var unit ContainmentUnit
	var ok bool
	_ = s.store.View(ctx, func(view TransactionView) error {
		unit, ok = view.FindContainmentUnit(id)
		return nil
	})
	return unit, ok
}

// ListContainmentUnits returns every unit ordered by ID.
func (s *Service) ListContainmentUnits() []ContainmentUnit {
	return s.store.ListContainmentUnits()
}

// AssignToUnit houses slimeID in an empty unit. A slime lives in at most one
// unit.
func (s *Service) AssignToUnit(ctx context.Context, unitID, slimeID string) (ContainmentUnit, Result, error) {
	var updated ContainmentUnit
	var res Result
	err := s.run(ctx, opAssignToUnit, func(ctx context.Context) (string, Result, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			unit, ok := tx.FindContainmentUnit(unitID)
			if !ok {
				return ErrNotFound{Entity: EntityContainmentUnit, ID: unitID}
			}
			if unit.Occupied() {
				return domain.NewInvalidOperation(opAssignToUnit, fmt.Sprintf("unit %s already houses %s", unitID, *unit.SlimeID))
			}
			if _, ok := tx.FindSlime(slimeID); !ok {
				return ErrNotFound{Entity: EntitySlime, ID: slimeID}
			}
			for _, other := range tx.Snapshot().ListContainmentUnits() {
				if other.Occupied() && *other.SlimeID == slimeID {
					return domain.NewInvalidOperation(opAssignToUnit, fmt.Sprintf("slime %s already housed in %s", slimeID, other.ID))
				}
			}
			updated, err = tx.UpdateContainmentUnit(unitID, func(u *ContainmentUnit) error {
				id := slimeID
				u.SlimeID = &id
				return nil
			})
			return err
		})
		return unitID, res, err
	})
	return updated, res, err
}

// ReleaseFromUnit empties an occupied unit and returns the released slime's ID.
func (s *Service) ReleaseFromUnit(ctx context.Context, unitID string) (string, Result, error) {
	var released string
	var res Result
	err := s.run(ctx, opReleaseFromUnit, func(ctx context.Context) (string, Result, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			unit, ok := tx.FindContainmentUnit(unitID)
			if !ok {
				return ErrNotFound{Entity: EntityContainmentUnit, ID: unitID}
			}
			if !unit.Occupied() {
				return domain.NewInvalidOperation(opReleaseFromUnit, fmt.Sprintf("unit %s is empty", unitID))
			}
			released = *unit.SlimeID
			_, err = tx.UpdateContainmentUnit(unitID, func(u *ContainmentUnit) error {
				u.SlimeID = nil
				return nil
			})
			return err
		})
		return unitID, res, err
	})
	if err != nil {
		return "", res, err
	}
	return released, res, nil
}

// UnitEfficiency rates how well a unit's environment suits its occupant.
func (s *Service) UnitEfficiency(ctx context.Context, unitID string) (float64, error) {
	efficiency := EfficiencyEmpty
	err := s.store.View(ctx, func(view TransactionView) error {
		unit, ok := view.FindContainmentUnit(unitID)
		if !ok {
			return ErrNotFound{Entity: EntityContainmentUnit, ID: unitID}
		}
		if !unit.Occupied() {
			return nil
		}
		occupant, ok := view.FindSlime(*unit.SlimeID)
		if !ok {
			return ErrNotFound{Entity: EntitySlime, ID: *unit.SlimeID}
		}
		efficiency = environmentEfficiency(unit.Environment, occupant.Element())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return efficiency, nil
}

func environmentEfficiency(env domain.Environment, element domain.Element) float64 {
	switch {
	case env == domain.EnvironmentStandard:
		return EfficiencyStandard
	case element == domain.ElementNeutral:
		return EfficiencyNeutral
	case env.MatchesElement(element):
		return EfficiencyMatched
	default:
		return EfficiencyMismatched
	}
}

// Breeding -------------------------------------------------------------------

// ChamberStatus is a point-in-time view of the breeding chamber.
type ChamberStatus struct {
	State    BreedingState
	Progress float64
	Duration float64
}

// BreedingStatus reports the chamber state, accumulated progress and the
// session duration.
func (s *Service) BreedingStatus() ChamberStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ChamberStatus{
		State:    s.chamber.State(),
		Progress: s.chamber.Progress(),
		Duration: s.chamber.Duration(),
	}
}

// StartBreeding loads both parents and starts a session, charging the food
// cost to inv. On error the chamber and inv are unchanged.
func (s *Service) StartBreeding(ctx context.Context, parentAID, parentBID string, inv domain.ResourceInventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, opStartBreeding, func(context.Context) (string, Result, error) {
		if s.chamber.State() == BreedingInProgress {
			return "", Result{}, domain.NewInvalidOperation(opStartBreeding, "a session is already in progress")
		}
		if parentAID == parentBID {
			return parentAID, Result{}, domain.NewInvalidOperation(opStartBreeding, "a slime cannot breed with itself")
		}
		a, ok := s.store.GetSlime(parentAID)
		if !ok {
			return parentAID, Result{}, ErrNotFound{Entity: EntitySlime, ID: parentAID}
		}
		b, ok := s.store.GetSlime(parentBID)
		if !ok {
			return parentBID, Result{}, ErrNotFound{Entity: EntitySlime, ID: parentBID}
		}
		saved := s.chamber.snapshot()
		s.chamber.SetParents(a, b)
		if err := s.chamber.StartBreeding(inv); err != nil {
			s.chamber.restore(saved)
			return parentAID, Result{}, err
		}
		return parentAID, Result{}, nil
	})
}

// AdvanceBreeding adds elapsed progress and reports whether the session can
// be completed.
func (s *Service) AdvanceBreeding(elapsed float64) (progress float64, complete bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chamber.UpdateBreeding(elapsed)
	return s.chamber.Progress(), s.chamber.IsBreedingComplete()
}

// CompleteBreeding synthesizes the offspring, stores it and exports its
// lineage record. When the store rejects the offspring the session stays
// complete so the caller can free capacity and retry. A lineage export
// failure is logged and does not undo the stored offspring.
func (s *Service) CompleteBreeding(ctx context.Context) (*Slime, Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var offspring *Slime
	var res Result
	err := s.run(ctx, opCompleteBreeding, func(ctx context.Context) (string, Result, error) {
		saved := s.chamber.snapshot()
		outcome, err := s.chamber.Complete()
		if err != nil {
			return "", Result{}, err
		}
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			offspring, err = tx.CreateSlime(outcome.Offspring)
			return err
		})
		if err != nil {
			s.chamber.restore(saved)
			return outcome.Offspring.ID(), res, err
		}
		s.exportLineage(ctx, outcome)
		return offspring.ID(), res, nil
	})
	if err != nil {
		return nil, res, err
	}
	return offspring, res, nil
}

func (s *Service) exportLineage(ctx context.Context, outcome BreedingOutcome) {
	if s.lineage == nil {
		return
	}
	child := outcome.Offspring
	rec := lineage.Record{
		OffspringID:   child.ID(),
		OffspringName: child.Name(),
		Element:       child.Element(),
		ParentIDs:     outcome.ParentIDs,
		ParentNames:   outcome.ParentNames,
		Genes:         child.Genes(),
		ComboGene:     outcome.ComboGene,
		MutationGene:  outcome.MutationGene,
		BredAt:        s.clock.Now(),
	}
	if err := s.lineage.Export(ctx, rec); err != nil {
		s.logger.Error("lineage export failed", "offspring_id", child.ID(), "error", err)
	}
}

// Evolution ------------------------------------------------------------------

// CanEvolve reports whether Evolve would succeed for the stored slime. A nil
// req selects the level tree.
func (s *Service) CanEvolve(ctx context.Context, id string, item domain.EvolutionItem, req EvolutionRequest) bool {
	var slime *Slime
	if err := s.store.View(ctx, func(view TransactionView) error {
		found, ok := view.FindSlime(id)
		if !ok {
			return ErrNotFound{Entity: EntitySlime, ID: id}
		}
		slime = found
		return nil
	}); err != nil {
		return false
	}
	if req == nil {
		req = LevelTree{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.CanEvolve(slime, item, req)
}

// Evolve applies the evolution selected by req and stores the result. A nil
// req selects the level tree.
func (s *Service) Evolve(ctx context.Context, id string, item domain.EvolutionItem, req EvolutionRequest) (*Slime, Outcome, Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req == nil {
		req = LevelTree{}
	}
	return s.evolve(ctx, opEvolve, id, item, func(Transaction) (EvolutionRequest, error) { return req, nil })
}

// EvolveInUnit evolves a unit's occupant by the environment of the unit.
func (s *Service) EvolveInUnit(ctx context.Context, unitID string, item domain.EvolutionItem) (*Slime, Outcome, Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var slimeID string
	err := s.store.View(ctx, func(view TransactionView) error {
		unit, ok := view.FindContainmentUnit(unitID)
		if !ok {
			return ErrNotFound{Entity: EntityContainmentUnit, ID: unitID}
		}
		if !unit.Occupied() {
			return domain.NewInvalidOperation(opEvolveInUnit, fmt.Sprintf("unit %s is empty", unitID))
		}
		slimeID = *unit.SlimeID
		return nil
	})
	if err != nil {
		_ = s.run(ctx, opEvolveInUnit, func(context.Context) (string, Result, error) { return unitID, Result{}, err })
		return nil, Outcome{}, Result{}, err
	}
	return s.evolve(ctx, opEvolveInUnit, slimeID, item, func(tx Transaction) (EvolutionRequest, error) {
		unit, ok := tx.FindContainmentUnit(unitID)
		if !ok || !unit.Occupied() || *unit.SlimeID != slimeID {
			return nil, domain.NewInvalidOperation(opEvolveInUnit, fmt.Sprintf("unit %s changed occupant", unitID))
		}
		return InEnvironment{Environment: unit.Environment}, nil
	})
}

func (s *Service) evolve(ctx context.Context, op, id string, item domain.EvolutionItem, request func(Transaction) (EvolutionRequest, error)) (*Slime, Outcome, Result, error) {
	var evolved *Slime
	var outcome Outcome
	var res Result
	err := s.run(ctx, op, func(ctx context.Context) (string, Result, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindSlime(id); !ok {
				return ErrNotFound{Entity: EntitySlime, ID: id}
			}
			req, err := request(tx)
			if err != nil {
				return err
			}
			evolved, err = tx.UpdateSlime(id, func(sl *Slime) error {
				var evoErr error
				outcome, evoErr = s.resolver.Evolve(sl, item, req)
				return evoErr
			})
			return err
		})
		return id, res, err
	})
	if err != nil {
		return nil, Outcome{}, res, err
	}
	s.logger.Info("slime evolved", "slime_id", id, "mode", string(outcome.Mode), "target", outcome.TargetName)
	return evolved, outcome, res, nil
}

// EvolveAtCurrentTime runs the time mode at the local wall-clock hour.
func (s *Service) EvolveAtCurrentTime(ctx context.Context, id string, item domain.EvolutionItem) (*Slime, Outcome, Result, error) {
	return s.Evolve(ctx, id, item, AtTime(s.wallClock.Now()))
}

// IsNotFound reports whether err marks a missing roster record.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

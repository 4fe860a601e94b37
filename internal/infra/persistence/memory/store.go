// Package memory provides an in-memory implementation of the roster
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"slimelab/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Slime aliases domain.Slime for in-memory persistence operations.
	Slime = domain.Slime
	// ContainmentUnit aliases domain.ContainmentUnit.
	ContainmentUnit = domain.ContainmentUnit
	// Expedition aliases domain.Expedition.
	Expedition = domain.Expedition
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	slimes map[string]*Slime
	units  map[string]ContainmentUnit
	trips  map[string]Expedition
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Slimes      map[string]*Slime          `json:"slimes"`
	Units       map[string]ContainmentUnit `json:"containment_units"`
	Expeditions map[string]Expedition      `json:"expeditions"`
}

func newMemoryState() memoryState {
	return memoryState{
		slimes: make(map[string]*Slime),
		units:  make(map[string]ContainmentUnit),
		trips:  make(map[string]Expedition),
	}
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		slimes: make(map[string]*Slime, len(s.slimes)),
		units:  make(map[string]ContainmentUnit, len(s.units)),
		trips:  make(map[string]Expedition, len(s.trips)),
	}
	for k, v := range s.slimes {
		out.slimes[k] = v.Clone()
	}
	for k, v := range s.units {
		out.units[k] = cloneUnit(v)
	}
	for k, v := range s.trips {
		out.trips[k] = v.Clone()
	}
	return out
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	c := state.clone()
	return Snapshot{Slimes: c.slimes, Units: c.units, Expeditions: c.trips}
}

// memoryStateFromSnapshot clones a snapshot into state, dropping nil slimes and
// keying every record by its own ID.
func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for _, v := range s.Slimes {
		if v == nil || v.ID() == "" {
			continue
		}
		state.slimes[v.ID()] = v.Clone()
	}
	for k, v := range s.Units {
		if v.ID == "" {
			v.ID = k
		}
		if v.Environment == "" {
			v.Environment = domain.EnvironmentStandard
		}
		state.units[v.ID] = cloneUnit(v)
	}
	for k, v := range s.Expeditions {
		if v.ID == "" {
			v.ID = k
		}
		state.trips[v.ID] = v.Clone()
	}
	return state
}

func cloneUnit(u ContainmentUnit) ContainmentUnit {
	if u.SlimeID != nil {
		id := *u.SlimeID
		u.SlimeID = &id
	}
	if u.Feeder != nil {
		f := *u.Feeder
		u.Feeder = &f
	}
	return u
}

func sortedSlimes(m map[string]*Slime) []*Slime {
	out := make([]*Slime, 0, len(m))
	for _, v := range m {
		out = append(out, v.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func sortedExpeditions(m map[string]Expedition) []Expedition {
	out := make([]Expedition, 0, len(m))
	for _, v := range m {
		out = append(out, v.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedUnits(m map[string]ContainmentUnit) []ContainmentUnit {
	out := make([]ContainmentUnit, 0, len(m))
	for _, v := range m {
		out = append(out, cloneUnit(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Store provides an in-memory transactional store.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the clock used to stamp records.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.nowFn = fn
	s.mu.Unlock()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListSlimes returns every slime in the snapshot ordered by ID.
func (v transactionView) ListSlimes() []*Slime {
	return sortedSlimes(v.state.slimes)
}

// ListContainmentUnits returns every unit in the snapshot ordered by ID.
func (v transactionView) ListContainmentUnits() []ContainmentUnit {
	return sortedUnits(v.state.units)
}

// FindSlime retrieves a slime by ID from the snapshot.
func (v transactionView) FindSlime(id string) (*Slime, bool) {
	s, ok := v.state.slimes[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// FindContainmentUnit retrieves a unit by ID from the snapshot.
func (v transactionView) FindContainmentUnit(id string) (ContainmentUnit, bool) {
	u, ok := v.state.units[id]
	if !ok {
		return ContainmentUnit{}, false
	}
	return cloneUnit(u), true
}

// ListExpeditions returns every expedition in the snapshot ordered by ID.
func (v transactionView) ListExpeditions() []Expedition {
	return sortedExpeditions(v.state.trips)
}

// FindExpedition retrieves an expedition by ID from the snapshot.
func (v transactionView) FindExpedition(id string) (Expedition, bool) {
	e, ok := v.state.trips[id]
	if !ok {
		return Expedition{}, false
	}
	return e.Clone(), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Rules run against the copy before it replaces committed state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindSlime exposes slime lookup within the transaction scope.
func (tx *transaction) FindSlime(id string) (*Slime, bool) {
	return newTransactionView(&tx.state).FindSlime(id)
}

// FindContainmentUnit exposes unit lookup within the transaction scope.
func (tx *transaction) FindContainmentUnit(id string) (ContainmentUnit, bool) {
	return newTransactionView(&tx.state).FindContainmentUnit(id)
}

// CreateSlime stores a clone of the slime within the transaction.
func (tx *transaction) CreateSlime(s *Slime) (*Slime, error) {
	if s == nil {
		return nil, errors.New("slime is required")
	}
	if s.ID() == "" {
		return nil, errors.New("slime requires an id")
	}
	if _, exists := tx.state.slimes[s.ID()]; exists {
		return nil, fmt.Errorf("slime %q already exists", s.ID())
	}
	tx.state.slimes[s.ID()] = s.Clone()
	tx.recordChange(Change{Entity: domain.EntitySlime, Action: domain.ActionCreate, After: s.Clone()})
	return s.Clone(), nil
}

// UpdateSlime mutates a working copy of the slime and stores it when mutator
// succeeds.
func (tx *transaction) UpdateSlime(id string, mutator func(*Slime) error) (*Slime, error) {
	current, ok := tx.state.slimes[id]
	if !ok {
		return nil, fmt.Errorf("slime %q not found", id)
	}
	before := current.Clone()
	working := current.Clone()
	if err := mutator(working); err != nil {
		return nil, err
	}
	if working.ID() != id {
		return nil, fmt.Errorf("slime %q: id cannot change", id)
	}
	tx.state.slimes[id] = working.Clone()
	tx.recordChange(Change{Entity: domain.EntitySlime, Action: domain.ActionUpdate, Before: before, After: working.Clone()})
	return working, nil
}

// DeleteSlime removes a slime that no containment unit references.
func (tx *transaction) DeleteSlime(id string) error {
	current, ok := tx.state.slimes[id]
	if !ok {
		return fmt.Errorf("slime %q not found", id)
	}
	for _, u := range tx.state.units {
		if u.Occupied() && *u.SlimeID == id {
			return fmt.Errorf("slime %q still housed in containment unit %q", id, u.ID)
		}
	}
	delete(tx.state.slimes, id)
	tx.recordChange(Change{Entity: domain.EntitySlime, Action: domain.ActionDelete, Before: current.Clone()})
	return nil
}

// CreateContainmentUnit stores a new unit.
func (tx *transaction) CreateContainmentUnit(u ContainmentUnit) (ContainmentUnit, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, exists := tx.state.units[u.ID]; exists {
		return ContainmentUnit{}, fmt.Errorf("containment unit %q already exists", u.ID)
	}
	if u.Environment == "" {
		u.Environment = domain.EnvironmentStandard
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.units[u.ID] = cloneUnit(u)
	tx.recordChange(Change{Entity: domain.EntityContainmentUnit, Action: domain.ActionCreate, After: cloneUnit(u)})
	return cloneUnit(u), nil
}

// UpdateContainmentUnit mutates an existing unit.
func (tx *transaction) UpdateContainmentUnit(id string, mutator func(*ContainmentUnit) error) (ContainmentUnit, error) {
	current, ok := tx.state.units[id]
	if !ok {
		return ContainmentUnit{}, fmt.Errorf("containment unit %q not found", id)
	}
	before := cloneUnit(current)
	working := cloneUnit(current)
	if err := mutator(&working); err != nil {
		return ContainmentUnit{}, err
	}
	working.ID = id
	working.CreatedAt = current.CreatedAt
	working.UpdatedAt = tx.now
	tx.state.units[id] = cloneUnit(working)
	tx.recordChange(Change{Entity: domain.EntityContainmentUnit, Action: domain.ActionUpdate, Before: before, After: cloneUnit(working)})
	return cloneUnit(working), nil
}

// DeleteContainmentUnit removes a unit.
func (tx *transaction) DeleteContainmentUnit(id string) error {
	current, ok := tx.state.units[id]
	if !ok {
		return fmt.Errorf("containment unit %q not found", id)
	}
	delete(tx.state.units, id)
	tx.recordChange(Change{Entity: domain.EntityContainmentUnit, Action: domain.ActionDelete, Before: cloneUnit(current)})
	return nil
}

// FindExpedition exposes expedition lookup within the transaction scope.
func (tx *transaction) FindExpedition(id string) (Expedition, bool) {
	return newTransactionView(&tx.state).FindExpedition(id)
}

// CreateExpedition stores a new expedition.
func (tx *transaction) CreateExpedition(e Expedition) (Expedition, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, exists := tx.state.trips[e.ID]; exists {
		return Expedition{}, fmt.Errorf("expedition %q already exists", e.ID)
	}
	if e.Status == "" {
		e.Status = domain.ExpeditionPreparing
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	tx.state.trips[e.ID] = e.Clone()
	tx.recordChange(Change{Entity: domain.EntityExpedition, Action: domain.ActionCreate, After: e.Clone()})
	return e.Clone(), nil
}

// UpdateExpedition mutates an existing expedition.
func (tx *transaction) UpdateExpedition(id string, mutator func(*Expedition) error) (Expedition, error) {
	current, ok := tx.state.trips[id]
	if !ok {
		return Expedition{}, fmt.Errorf("expedition %q not found", id)
	}
	before := current.Clone()
	working := current.Clone()
	if err := mutator(&working); err != nil {
		return Expedition{}, err
	}
	working.ID = id
	working.CreatedAt = current.CreatedAt
	working.UpdatedAt = tx.now
	tx.state.trips[id] = working.Clone()
	tx.recordChange(Change{Entity: domain.EntityExpedition, Action: domain.ActionUpdate, Before: before, After: working.Clone()})
	return working.Clone(), nil
}

// Read helpers ---------------------------------------------------------------

// GetSlime retrieves a slime by ID from committed state.
func (s *Store) GetSlime(id string) (*Slime, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.slimes[id]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// ListSlimes returns all slimes from committed state ordered by ID.
func (s *Store) ListSlimes() []*Slime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedSlimes(s.state.slimes)
}

// GetContainmentUnit retrieves a unit by ID from committed state.
func (s *Store) GetContainmentUnit(id string) (ContainmentUnit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.units[id]
	if !ok {
		return ContainmentUnit{}, false
	}
	return cloneUnit(u), true
}

// ListContainmentUnits returns all units from committed state ordered by ID.
func (s *Store) ListContainmentUnits() []ContainmentUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedUnits(s.state.units)
}

// ListExpeditions returns all expeditions from committed state ordered by ID.
func (s *Store) ListExpeditions() []Expedition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedExpeditions(s.state.trips)
}

package domain

import "context"

// Transaction exposes the roster operations that a persistence implementation
// must support within an atomic scope. Creatures cross the boundary as clones;
// mutating a returned *Slime never changes stored state.
type Transaction interface {
	Snapshot() TransactionView
	CreateSlime(*Slime) (*Slime, error)
	UpdateSlime(id string, mutator func(*Slime) error) (*Slime, error)
	DeleteSlime(id string) error
	CreateContainmentUnit(ContainmentUnit) (ContainmentUnit, error)
	UpdateContainmentUnit(id string, mutator func(*ContainmentUnit) error) (ContainmentUnit, error)
	DeleteContainmentUnit(id string) error
	FindSlime(id string) (*Slime, bool)
	FindContainmentUnit(id string) (ContainmentUnit, bool)
	CreateExpedition(Expedition) (Expedition, error)
	UpdateExpedition(id string, mutator func(*Expedition) error) (Expedition, error)
	FindExpedition(id string) (Expedition, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListSlimes() []*Slime
	ListContainmentUnits() []ContainmentUnit
	FindSlime(id string) (*Slime, bool)
	FindContainmentUnit(id string) (ContainmentUnit, bool)
	ListExpeditions() []Expedition
	FindExpedition(id string) (Expedition, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetSlime(id string) (*Slime, bool)
	ListSlimes() []*Slime
	ListContainmentUnits() []ContainmentUnit
	ListExpeditions() []Expedition
	RulesEngine() *RulesEngine
}

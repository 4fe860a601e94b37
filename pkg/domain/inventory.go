package domain

import "sync"

// ResourceInventory is the capability consumed by the breeding pipeline.
// Consume must check and deduct atomically: on failure nothing is deducted.
type ResourceInventory interface {
	AmountOf(kind ResourceKind) int
	Consume(kind ResourceKind, amount int) error
}

// Inventory is an in-memory ResourceInventory safe for concurrent use.
type Inventory struct {
	mu        sync.Mutex
	resources map[ResourceKind]int
}

var _ ResourceInventory = (*Inventory)(nil)

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{resources: make(map[ResourceKind]int)}
}

// Add deposits amount of kind. Non-positive amounts are ignored.
func (inv *Inventory) Add(kind ResourceKind, amount int) {
	if amount <= 0 {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.resources == nil {
		inv.resources = make(map[ResourceKind]int)
	}
	inv.resources[kind] += amount
}

// AmountOf returns the current balance of kind.
func (inv *Inventory) AmountOf(kind ResourceKind) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.resources[kind]
}

// Consume deducts amount of kind or returns InsufficientResourceError without
// touching the balance.
func (inv *Inventory) Consume(kind ResourceKind, amount int) error {
	if amount < 0 {
		return NewInvalidOperation("consume", "negative amount")
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	available := inv.resources[kind]
	if amount > available {
		return InsufficientResourceError{Kind: kind, Required: amount, Available: available}
	}
	if inv.resources == nil {
		return nil
	}
	inv.resources[kind] = available - amount
	return nil
}

package core

import (
	"fmt"

	"slimelab/pkg/domain"
)

const (
	// DefaultBreedingDuration is the progress a session needs before completion.
	DefaultBreedingDuration = 100.0
	// BreedingFoodCost is deducted from the inventory when a session starts.
	BreedingFoodCost = 50
	// DefaultMutationRate is the chance an offspring receives a mutation gene.
	DefaultMutationRate = 0.05

	dominantPickChance = 0.75
)

var mutationNames = []string{
	"Mutation Alpha",
	"Mutation Beta",
	"Mutation Gamma",
	"Mutation Delta",
	"Mutation Omega",
}

// MutationNames returns the catalog of mutation trait names.
func MutationNames() []string {
	return append([]string(nil), mutationNames...)
}

// BreedingState is the chamber's session state.
type BreedingState int

const (
	// BreedingIdle accepts new parents and a new session.
	BreedingIdle BreedingState = iota
	// BreedingInProgress accumulates progress until the session completes.
	BreedingInProgress
)

func (s BreedingState) String() string {
	if s == BreedingInProgress {
		return "breeding"
	}
	return "idle"
}

// BreedingOutcome describes a completed session.
type BreedingOutcome struct {
	Offspring    *domain.Slime
	ParentIDs    [2]string
	ParentNames  [2]string
	ComboGene    *domain.Gene
	MutationGene *domain.Gene
}

// ChamberOption configures a BreedingChamber.
type ChamberOption func(*BreedingChamber)

// WithChamberRand injects the random source used for offspring synthesis.
func WithChamberRand(r Rand) ChamberOption {
	return func(c *BreedingChamber) {
		if r != nil {
			c.rand = r
		}
	}
}

// WithMutationRate overrides the mutation probability, clamped to [0,1].
func WithMutationRate(rate float64) ChamberOption {
	return func(c *BreedingChamber) {
		c.mutationRate = min(max(rate, 0), 1)
	}
}

// WithComboRegistry replaces the default combo registry.
func WithComboRegistry(r *GeneComboRegistry) ChamberOption {
	return func(c *BreedingChamber) {
		if r != nil {
			c.combos = r
		}
	}
}

// WithBreedingDuration overrides the progress required for completion.
func WithBreedingDuration(d float64) ChamberOption {
	return func(c *BreedingChamber) {
		if d > 0 {
			c.duration = d
		}
	}
}

// BreedingChamber runs one breeding session at a time. It is not safe for
// concurrent use; Service serializes access.
type BreedingChamber struct {
	rand         Rand
	combos       *GeneComboRegistry
	mutationRate float64
	duration     float64

	state    BreedingState
	progress float64
	parentA  *domain.Slime
	parentB  *domain.Slime
}

// NewBreedingChamber constructs an idle chamber.
func NewBreedingChamber(opts ...ChamberOption) *BreedingChamber {
	c := &BreedingChamber{
		mutationRate: DefaultMutationRate,
		duration:     DefaultBreedingDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rand == nil {
		c.rand = newClockSeededRand()
	}
	if c.combos == nil {
		c.combos = NewGeneComboRegistry()
	}
	return c
}

// State returns the session state.
func (c *BreedingChamber) State() BreedingState { return c.state }

// Progress returns the accumulated progress, which may exceed Duration.
func (c *BreedingChamber) Progress() float64 { return c.progress }

// Duration returns the progress a session needs before it can complete.
func (c *BreedingChamber) Duration() float64 { return c.duration }

// Parents returns the currently assigned parents, which may be nil.
func (c *BreedingChamber) Parents() (*domain.Slime, *domain.Slime) {
	return c.parentA, c.parentB
}

// SetParents replaces both parents without validating them.
func (c *BreedingChamber) SetParents(a, b *domain.Slime) {
	c.parentA, c.parentB = a, b
}

// CheckCompatibility reports whether both parents are set and share a gene name.
func (c *BreedingChamber) CheckCompatibility() bool {
	if c.parentA == nil || c.parentB == nil {
		return false
	}
	for _, name := range c.parentA.GeneNames() {
		if c.parentB.HasGeneNamed(name) {
			return true
		}
	}
	return false
}

// StartBreeding validates the parents, charges the food cost and begins a
// session. On any error the chamber state and the inventory are unchanged.
func (c *BreedingChamber) StartBreeding(inv domain.ResourceInventory) error {
	if c.parentA == nil || c.parentB == nil {
		return domain.NewInvalidOperation("start breeding", "both parents must be set")
	}
	if !c.CheckCompatibility() {
		return domain.NewInvalidOperation("start breeding", "parents share no gene names")
	}
	if inv == nil {
		return domain.NewInvalidOperation("start breeding", "inventory is required")
	}
	if err := inv.Consume(domain.ResourceFood, BreedingFoodCost); err != nil {
		return err
	}
	c.state = BreedingInProgress
	c.progress = 0
	return nil
}

// UpdateBreeding accumulates elapsed progress while a session is running.
func (c *BreedingChamber) UpdateBreeding(elapsed float64) {
	if c.state != BreedingInProgress {
		return
	}
	c.progress += elapsed
}

// IsBreedingComplete reports whether the running session reached its duration.
func (c *BreedingChamber) IsBreedingComplete() bool {
	return c.state == BreedingInProgress && c.progress >= c.duration
}

// CompleteBreeding synthesizes the offspring and resets the chamber.
func (c *BreedingChamber) CompleteBreeding() (*domain.Slime, error) {
	out, err := c.Complete()
	if err != nil {
		return nil, err
	}
	return out.Offspring, nil
}

// Complete is CompleteBreeding with the parent and bonus gene details kept for
// lineage records.
func (c *BreedingChamber) Complete() (BreedingOutcome, error) {
	if !c.IsBreedingComplete() {
		return BreedingOutcome{}, domain.NewInvalidOperation("complete breeding", "breeding is not complete")
	}
	out, err := c.synthesize(c.parentA, c.parentB)
	if err != nil {
		return BreedingOutcome{}, err
	}
	c.state = BreedingIdle
	c.progress = 0
	c.parentA, c.parentB = nil, nil
	return out, nil
}

func (c *BreedingChamber) synthesize(a, b *domain.Slime) (BreedingOutcome, error) {
	element := a.Element()
	if !coinFlip(c.rand) {
		element = b.Element()
	}
	child := domain.NewSlime(fmt.Sprintf("Offspring of %s & %s", a.Name(), b.Name()), element)
	out := BreedingOutcome{
		Offspring:   child,
		ParentIDs:   [2]string{a.ID(), b.ID()},
		ParentNames: [2]string{a.Name(), b.Name()},
	}

	for _, group := range groupGenesByName(append(a.Genes(), b.Genes()...)) {
		if err := child.AddGene(c.pickInherited(group).Copy()); err != nil {
			return BreedingOutcome{}, err
		}
	}

	if combo, ok := c.combos.CheckForCombo(child.Genes()); ok {
		if err := child.AddGene(combo); err != nil {
			return BreedingOutcome{}, err
		}
		out.ComboGene = &combo
	}

	if c.rand.Float64() < c.mutationRate {
		dominance := domain.Recessive
		if coinFlip(c.rand) {
			dominance = domain.Dominant
		}
		mutation := domain.NewGene(mutationNames[c.rand.IntN(len(mutationNames))], dominance)
		if err := child.AddGene(mutation); err != nil {
			return BreedingOutcome{}, err
		}
		out.MutationGene = &mutation
	}
	return out, nil
}

func (c *BreedingChamber) pickInherited(group []domain.Gene) domain.Gene {
	var dominant []domain.Gene
	for _, g := range group {
		if g.IsDominant() {
			dominant = append(dominant, g)
		}
	}
	if len(dominant) > 0 && c.rand.Float64() < dominantPickChance {
		return dominant[c.rand.IntN(len(dominant))]
	}
	return group[c.rand.IntN(len(group))]
}

// groupGenesByName buckets genes by name, keeping the order in which each name
// first appears.
func groupGenesByName(genes []domain.Gene) [][]domain.Gene {
	index := make(map[string]int, len(genes))
	var groups [][]domain.Gene
	for _, g := range genes {
		i, ok := index[g.Name()]
		if !ok {
			i = len(groups)
			index[g.Name()] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], g)
	}
	return groups
}

type chamberSnapshot struct {
	state    BreedingState
	progress float64
	parentA  *domain.Slime
	parentB  *domain.Slime
}

func (c *BreedingChamber) snapshot() chamberSnapshot {
	return chamberSnapshot{state: c.state, progress: c.progress, parentA: c.parentA, parentB: c.parentB}
}

func (c *BreedingChamber) restore(s chamberSnapshot) {
	c.state, c.progress = s.state, s.progress
	c.parentA, c.parentB = s.parentA, s.parentB
}

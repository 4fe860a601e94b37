package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const (
	// DefaultSlimeName is used when a creature is constructed without a name.
	DefaultSlimeName = "Unnamed Slime"
	// MaxHunger and MaxAffinity bound the closed [0, max] ranges.
	MaxHunger   = 100
	MaxAffinity = 100
	// ExperiencePerLevel is consumed for each level gained through experience.
	ExperiencePerLevel = 100

	sadHunger     = 70
	unhappyHunger = 90
)

// Slime is the mutable creature aggregate. Every mutator keeps hunger,
// affinity, level and stats inside their ranges; callers never clamp.
type Slime struct {
	id         string
	name       string
	element    Element
	level      int
	experience int
	stats      Stats
	hunger     int
	affinity   int
	genes      []Gene
}

// NewSlime constructs a level 1 creature with default stats and no genes.
func NewSlime(name string, element Element) *Slime {
	if name == "" {
		name = DefaultSlimeName
	}
	if element == "" {
		element = ElementNeutral
	}
	return &Slime{
		id:      uuid.NewString(),
		name:    name,
		element: element,
		level:   1,
		stats:   DefaultStats,
	}
}

// ID returns the identifier assigned at construction.
func (s *Slime) ID() string { return s.id }

// Name returns the display name; evolution replaces it with the target name.
func (s *Slime) Name() string { return s.name }

// Element returns the creature's element. It never changes after construction.
func (s *Slime) Element() Element { return s.element }

// Level returns the current level, always at least 1.
func (s *Slime) Level() int { return s.level }

// Experience returns the experience carried toward the next level.
func (s *Slime) Experience() int { return s.experience }

// Stats returns a copy of the combat stats.
func (s *Slime) Stats() Stats { return s.stats }

// Hunger returns hunger in [0, MaxHunger].
func (s *Slime) Hunger() int { return s.hunger }

// Affinity returns affinity in [0, MaxAffinity].
func (s *Slime) Affinity() int { return s.affinity }

// GeneCount returns the number of genes carried.
func (s *Slime) GeneCount() int { return len(s.genes) }

func (s *Slime) String() string { return fmt.Sprintf("%s[%s lv%d]", s.name, s.element, s.level) }

// Rename replaces the display name.
func (s *Slime) Rename(name string) { s.name = name }

// Mood derives the creature's mood from its hunger.
func (s *Slime) Mood() Mood {
	switch {
	case s.hunger >= unhappyHunger:
		return MoodUnhappy
	case s.hunger >= sadHunger:
		return MoodSad
	default:
		return MoodHappy
	}
}

// Genes returns a copy of the gene set in insertion order.
func (s *Slime) Genes() []Gene {
	out := make([]Gene, len(s.genes))
	copy(out, s.genes)
	return out
}

// GeneNames returns the gene names in insertion order, duplicates included.
func (s *Slime) GeneNames() []string {
	out := make([]string, len(s.genes))
	for i, g := range s.genes {
		out[i] = g.Name()
	}
	return out
}

// AddGene appends g to the gene set. A gene whose identifier is already present
// is rejected.
func (s *Slime) AddGene(g Gene) error {
	if g.ID() == "" {
		return NewInvalidOperation("add gene", "gene has no identifier")
	}
	if s.HasGene(g.ID()) {
		return NewInvalidOperation("add gene", fmt.Sprintf("gene %s already present on %s", g.ID(), s.id))
	}
	s.genes = append(s.genes, g)
	return nil
}

// Gene looks up a gene by identifier.
func (s *Slime) Gene(id string) (Gene, bool) {
	for _, g := range s.genes {
		if g.ID() == id {
			return g, true
		}
	}
	return Gene{}, false
}

// HasGene reports whether a gene with the identifier is present.
func (s *Slime) HasGene(id string) bool {
	_, ok := s.Gene(id)
	return ok
}

// HasGeneNamed reports whether any gene carries the trait name.
func (s *Slime) HasGeneNamed(name string) bool {
	for _, g := range s.genes {
		if g.Name() == name {
			return true
		}
	}
	return false
}

// IncreaseHunger raises hunger, saturating at MaxHunger.
func (s *Slime) IncreaseHunger(amount int) {
	if amount <= 0 {
		return
	}
	s.hunger = clamp(s.hunger+amount, 0, MaxHunger)
}

// Feed lowers hunger, saturating at zero, and grants experience equal to the
// amount fed.
func (s *Slime) Feed(amount int) {
	if amount <= 0 {
		return
	}
	s.hunger = clamp(s.hunger-amount, 0, MaxHunger)
	s.GainExperience(amount)
}

// GainExperience adds experience and converts every ExperiencePerLevel into a level.
func (s *Slime) GainExperience(amount int) {
	if amount <= 0 {
		return
	}
	s.experience += amount
	for s.experience >= ExperiencePerLevel {
		s.experience -= ExperiencePerLevel
		s.level++
	}
}

// SetLevel forces the level; values below one are raised to one.
func (s *Slime) SetLevel(level int) {
	s.level = max(level, 1)
}

// SetAffinity forces affinity inside [0, MaxAffinity].
func (s *Slime) SetAffinity(affinity int) {
	s.affinity = clamp(affinity, 0, MaxAffinity)
}

// IncreaseAffinity raises affinity, saturating at MaxAffinity.
func (s *Slime) IncreaseAffinity(amount int) {
	if amount <= 0 {
		return
	}
	s.affinity = clamp(s.affinity+amount, 0, MaxAffinity)
}

// Evolve applies an evolution outcome: the name is replaced, the level rises by
// exactly one and delta is added to the stats once.
func (s *Slime) Evolve(targetName string, delta Stats) {
	s.name = targetName
	s.level++
	s.stats = s.stats.Boost(delta)
}

// Clone returns a deep copy of the creature. Gene identifiers are preserved
// because the clone represents the same creature.
func (s *Slime) Clone() *Slime {
	if s == nil {
		return nil
	}
	cp := *s
	cp.genes = s.Genes()
	return &cp
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

type slimeRecord struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Element    Element `json:"element"`
	Level      int     `json:"level"`
	Experience int     `json:"experience"`
	Stats      Stats   `json:"stats"`
	Hunger     int     `json:"hunger"`
	Affinity   int     `json:"affinity"`
	Genes      []Gene  `json:"genes"`
}

// MarshalJSON encodes the full aggregate.
func (s *Slime) MarshalJSON() ([]byte, error) {
	genes := s.genes
	if genes == nil {
		genes = []Gene{}
	}
	return json.Marshal(slimeRecord{
		ID:         s.id,
		Name:       s.name,
		Element:    s.element,
		Level:      s.level,
		Experience: s.experience,
		Stats:      s.stats,
		Hunger:     s.hunger,
		Affinity:   s.affinity,
		Genes:      genes,
	})
}

// UnmarshalJSON restores a persisted aggregate, re-applying every range
// invariant so a hand-edited payload cannot smuggle in out-of-range values.
func (s *Slime) UnmarshalJSON(data []byte) error {
	var rec slimeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if rec.ID == "" {
		return fmt.Errorf("slime %q missing id", rec.Name)
	}
	element := rec.Element
	if element == "" {
		element = ElementNeutral
	}
	if _, err := ParseElement(string(element)); err != nil {
		return err
	}
	restored := Slime{
		id:         rec.ID,
		name:       rec.Name,
		element:    element,
		level:      max(rec.Level, 1),
		experience: max(rec.Experience, 0),
		stats:      Stats{}.Boost(rec.Stats),
		hunger:     clamp(rec.Hunger, 0, MaxHunger),
		affinity:   clamp(rec.Affinity, 0, MaxAffinity),
	}
	for _, g := range rec.Genes {
		if err := restored.AddGene(g); err != nil {
			return err
		}
	}
	*s = restored
	return nil
}

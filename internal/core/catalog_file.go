package core

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"slimelab/pkg/domain"
)

// Catalog bundles the lookup tables shared by breeding, evolution and
// expedition planning.
type Catalog struct {
	Combos   *GeneComboRegistry
	Paths    *EvolutionCatalog
	Specials *SpecialEvolutionRegistry
	Zones    *ZoneRegistry
}

// NewCatalog returns the built-in tables. No zones are built in.
func NewCatalog() *Catalog {
	return &Catalog{
		Combos:   NewGeneComboRegistry(),
		Paths:    NewEvolutionCatalog(),
		Specials: NewSpecialEvolutionRegistry(),
		Zones:    NewZoneRegistry(),
	}
}

// CatalogFile is the YAML shape of a catalog overlay. Every entry is added on
// top of the built-in tables.
type CatalogFile struct {
	Combos      []ComboEntry       `yaml:"combos"`
	Paths       []PathEntry        `yaml:"paths"`
	Environment []EnvironmentEntry `yaml:"environment"`
	Timed       []TimedEntry       `yaml:"timed"`
	Affinity    []AffinityEntry    `yaml:"affinity"`
	Zones       []ZoneEntry        `yaml:"zones"`
}

// ComboEntry registers Result for the gene name set Genes.
type ComboEntry struct {
	Genes     []string `yaml:"genes"`
	Result    string   `yaml:"result"`
	Dominance string   `yaml:"dominance"`
}

// PathEntry adds a level-tree evolution for Element.
type PathEntry struct {
	Element       string       `yaml:"element"`
	Target        string       `yaml:"target"`
	RequiredLevel int          `yaml:"required_level"`
	Delta         domain.Stats `yaml:"delta"`
}

// EnvironmentEntry adds the special evolution for an element raised in an
// environment.
type EnvironmentEntry struct {
	Element     string       `yaml:"element"`
	Environment string       `yaml:"environment"`
	Target      string       `yaml:"target"`
	Delta       domain.Stats `yaml:"delta"`
}

// TimedEntry adds an item evolution that only works between StartHour and
// EndHour. A window whose start is after its end wraps past midnight.
type TimedEntry struct {
	Item      string       `yaml:"item"`
	Target    string       `yaml:"target"`
	StartHour int          `yaml:"start_hour"`
	EndHour   int          `yaml:"end_hour"`
	Delta     domain.Stats `yaml:"delta"`
}

// AffinityEntry adds an item evolution gated on affinity.
type AffinityEntry struct {
	Item   string       `yaml:"item"`
	Target string       `yaml:"target"`
	Delta  domain.Stats `yaml:"delta"`
}

// ZoneEntry registers an expedition zone. MinLevel and Element are optional
// entry requirements.
type ZoneEntry struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Difficulty int    `yaml:"difficulty"`
	MinLevel   int    `yaml:"min_level"`
	Element    string `yaml:"element"`
}

// LoadCatalog reads a YAML overlay from path and applies it to the defaults.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path) // #nosec G304 -- operator supplied path
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadCatalog(f)
}

// ReadCatalog decodes an overlay and applies it to a fresh default catalog.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	var file CatalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	cat := NewCatalog()
	if err := file.Apply(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Apply validates every entry before registering any of them, so a bad file
// leaves cat unchanged.
func (f CatalogFile) Apply(cat *Catalog) error {
	var steps []func()

	for i, c := range f.Combos {
		if len(c.Genes) < 2 || c.Result == "" {
			return fmt.Errorf("combos[%d]: need at least two genes and a result", i)
		}
		dominance, err := domain.ParseDominance(c.Dominance)
		if err != nil {
			return fmt.Errorf("combos[%d]: %w", i, err)
		}
		names, gene := c.Genes, domain.NewGene(c.Result, dominance)
		steps = append(steps, func() { cat.Combos.Register(names, gene) })
	}

	for i, p := range f.Paths {
		element, err := domain.ParseElement(p.Element)
		if err != nil {
			return fmt.Errorf("paths[%d]: %w", i, err)
		}
		if p.Target == "" || p.RequiredLevel < 1 {
			return fmt.Errorf("paths[%d]: target and a positive required_level are required", i)
		}
		path := EvolutionPath{TargetName: p.Target, RequiredLevel: p.RequiredLevel, Element: element, Delta: p.Delta}
		steps = append(steps, func() { cat.Paths.Register(path) })
	}

	for i, e := range f.Environment {
		element, err := domain.ParseElement(e.Element)
		if err != nil {
			return fmt.Errorf("environment[%d]: %w", i, err)
		}
		env, err := domain.ParseEnvironment(e.Environment)
		if err != nil {
			return fmt.Errorf("environment[%d]: %w", i, err)
		}
		if e.Target == "" {
			return fmt.Errorf("environment[%d]: target is required", i)
		}
		evo := SpecialEvolution{TargetName: e.Target, Delta: e.Delta}
		steps = append(steps, func() { cat.Specials.RegisterEnvironment(element, env, evo) })
	}

	for i, t := range f.Timed {
		if t.Item == "" || t.Target == "" {
			return fmt.Errorf("timed[%d]: item and target are required", i)
		}
		if !validHour(t.StartHour) || !validHour(t.EndHour) {
			return fmt.Errorf("timed[%d]: hours must be in [0,23]", i)
		}
		item, evo, window := t.Item, SpecialEvolution{TargetName: t.Target, Delta: t.Delta}, HourWindow(t.StartHour, t.EndHour)
		steps = append(steps, func() { cat.Specials.RegisterTimed(item, evo, window) })
	}

	for i, a := range f.Affinity {
		if a.Item == "" || a.Target == "" {
			return fmt.Errorf("affinity[%d]: item and target are required", i)
		}
		item, evo := a.Item, SpecialEvolution{TargetName: a.Target, Delta: a.Delta}
		steps = append(steps, func() { cat.Specials.RegisterAffinity(item, evo) })
	}

	for i, z := range f.Zones {
		if z.Name == "" {
			return fmt.Errorf("zones[%d]: name is required", i)
		}
		if z.Difficulty < 0 || z.MinLevel < 0 {
			return fmt.Errorf("zones[%d]: difficulty and min_level must not be negative", i)
		}
		var element domain.Element
		if z.Element != "" {
			var err error
			if element, err = domain.ParseElement(z.Element); err != nil {
				return fmt.Errorf("zones[%d]: %w", i, err)
			}
		}
		zone := domain.Zone{
			ID:          z.ID,
			Name:        z.Name,
			Difficulty:  z.Difficulty,
			Requirement: domain.ZoneRequirement{MinLevel: z.MinLevel, Element: element},
		}
		steps = append(steps, func() { cat.Zones.Register(zone) })
	}

	for _, step := range steps {
		step()
	}
	return nil
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

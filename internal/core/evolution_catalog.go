package core

import (
	"slices"

	"slimelab/pkg/domain"
)

// EvolutionPath is a level-gated evolution outcome for one element.
type EvolutionPath struct {
	TargetName    string
	RequiredLevel int
	Element       domain.Element
	Delta         domain.Stats
}

// EvolutionCatalog holds the level-tree evolution paths per element, in
// registration order.
type EvolutionCatalog struct {
	paths map[domain.Element][]EvolutionPath
}

// NewEvolutionCatalog returns the catalog with the default two-tier tree for
// every element.
func NewEvolutionCatalog() *EvolutionCatalog {
	c := NewEmptyEvolutionCatalog()
	c.Register(EvolutionPath{"Inferno Slime", 10, domain.ElementFire, domain.Stats{HP: 30, Attack: 15, Defense: 5, Speed: 5}})
	c.Register(EvolutionPath{"Flame Lord", 20, domain.ElementFire, domain.Stats{HP: 60, Attack: 30, Defense: 10, Speed: 10}})
	c.Register(EvolutionPath{"Aqua Slime", 10, domain.ElementWater, domain.Stats{HP: 40, Attack: 10, Defense: 10, Speed: 5}})
	c.Register(EvolutionPath{"Ocean King", 20, domain.ElementWater, domain.Stats{HP: 80, Attack: 20, Defense: 20, Speed: 10}})
	c.Register(EvolutionPath{"Thunder Slime", 10, domain.ElementElectric, domain.Stats{HP: 25, Attack: 12, Defense: 5, Speed: 15}})
	c.Register(EvolutionPath{"Storm Emperor", 20, domain.ElementElectric, domain.Stats{HP: 50, Attack: 24, Defense: 10, Speed: 30}})
	c.Register(EvolutionPath{"Balanced Slime", 10, domain.ElementNeutral, domain.Stats{HP: 30, Attack: 12, Defense: 8, Speed: 8}})
	c.Register(EvolutionPath{"Harmonious Master", 20, domain.ElementNeutral, domain.Stats{HP: 60, Attack: 24, Defense: 16, Speed: 16}})
	return c
}

// NewEmptyEvolutionCatalog returns a catalog without any paths.
func NewEmptyEvolutionCatalog() *EvolutionCatalog {
	return &EvolutionCatalog{paths: make(map[domain.Element][]EvolutionPath)}
}

// Register appends a path to its element's list.
func (c *EvolutionCatalog) Register(path EvolutionPath) {
	c.paths[path.Element] = append(c.paths[path.Element], path)
}

// PathsFor returns a copy of the element's paths in registration order.
func (c *EvolutionCatalog) PathsFor(element domain.Element) []EvolutionPath {
	return slices.Clone(c.paths[element])
}

// Select picks the path with the highest RequiredLevel the level satisfies.
// When none qualifies the element's first registered path is returned; the
// second value is false only when the element has no paths at all.
func (c *EvolutionCatalog) Select(element domain.Element, level int) (EvolutionPath, bool) {
	paths := c.paths[element]
	if len(paths) == 0 {
		return EvolutionPath{}, false
	}
	best := -1
	for i, p := range paths {
		if level < p.RequiredLevel {
			continue
		}
		if best < 0 || p.RequiredLevel > paths[best].RequiredLevel {
			best = i
		}
	}
	if best < 0 {
		return paths[0], true
	}
	return paths[best], true
}

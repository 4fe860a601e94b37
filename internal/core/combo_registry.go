package core

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"slimelab/pkg/domain"
)

const comboKeySeparator = "|"

// GeneCombo is a registered combination, reported by Combos.
type GeneCombo struct {
	Names  []string
	Result domain.Gene
}

// GeneComboRegistry maps an unordered set of gene names to a bonus gene.
type GeneComboRegistry struct {
	mu     sync.RWMutex
	combos map[string]GeneCombo
}

// NewGeneComboRegistry returns a registry pre-populated with the default combos.
func NewGeneComboRegistry() *GeneComboRegistry {
	r := NewEmptyGeneComboRegistry()
	r.Register([]string{"Fire Gene", "Speed Gene"}, domain.NewGene("Blazing Speed", domain.Dominant))
	r.Register([]string{"Water Gene", "Defense Gene"}, domain.NewGene("Aqua Shield", domain.Dominant))
	r.Register([]string{"Electric Gene", "Speed Gene"}, domain.NewGene("Lightning Dash", domain.Dominant))
	r.Register([]string{"Fire Gene", "Water Gene", "Electric Gene"}, domain.NewGene("Tri-Element Master", domain.Dominant))
	r.Register([]string{"Fire Gene", "Water Gene"}, domain.NewGene("Steam Power", domain.Dominant))
	return r
}

// NewEmptyGeneComboRegistry returns a registry without default combos.
func NewEmptyGeneComboRegistry() *GeneComboRegistry {
	return &GeneComboRegistry{combos: make(map[string]GeneCombo)}
}

// Register stores result under the canonical key of names, replacing any
// previous entry for the same set.
func (r *GeneComboRegistry) Register(names []string, result domain.Gene) {
	key := comboKey(names)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.combos[key] = GeneCombo{Names: strings.Split(key, comboKeySeparator), Result: result}
}

// Has reports whether a combo is registered for names.
func (r *GeneComboRegistry) Has(names []string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.combos[comboKey(names)]
	return ok
}

// CheckForCombo returns a fresh copy of the bonus gene registered for the exact
// name set carried by genes. Fewer than two genes never match.
func (r *GeneComboRegistry) CheckForCombo(genes []domain.Gene) (domain.Gene, bool) {
	if len(genes) < 2 {
		return domain.Gene{}, false
	}
	names := make([]string, len(genes))
	for i, g := range genes {
		names[i] = g.Name()
	}
	r.mu.RLock()
	combo, ok := r.combos[comboKey(names)]
	r.mu.RUnlock()
	if !ok {
		return domain.Gene{}, false
	}
	return combo.Result.Copy(), true
}

// Combos lists the registered combos sorted by key.
func (r *GeneComboRegistry) Combos() []GeneCombo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.combos))
	for k := range r.combos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]GeneCombo, 0, len(keys))
	for _, k := range keys {
		c := r.combos[k]
		out = append(out, GeneCombo{Names: slices.Clone(c.Names), Result: c.Result})
	}
	return out
}

// comboKey sorts and de-duplicates names so neither order nor repetition
// changes the key.
func comboKey(names []string) string {
	sorted := slices.Clone(names)
	sort.Strings(sorted)
	sorted = slices.Compact(sorted)
	return strings.Join(sorted, comboKeySeparator)
}

package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Dominance classifies a gene for inheritance.
type Dominance string

// Dominance classifications.
const (
	Dominant  Dominance = "dominant"
	Recessive Dominance = "recessive"
)

// ParseDominance resolves a case-insensitive dominance name.
func ParseDominance(raw string) (Dominance, error) {
	d := Dominance(strings.ToLower(strings.TrimSpace(raw)))
	switch d {
	case Dominant, Recessive:
		return d, nil
	case "":
		return Recessive, nil
	default:
		return "", fmt.Errorf("unknown dominance %q", raw)
	}
}

// Gene is an immutable inherited trait. Genes are plain values: moving a trait
// between creatures goes through Copy so identifiers are never shared.
type Gene struct {
	id        string
	name      string
	dominance Dominance
}

// NewGene creates a gene with a freshly generated identifier. An empty dominance
// defaults to Recessive.
func NewGene(name string, dominance Dominance) Gene {
	if dominance == "" {
		dominance = Recessive
	}
	return Gene{id: uuid.NewString(), name: name, dominance: dominance}
}

// ID returns the unique gene identifier.
func (g Gene) ID() string { return g.id }

// Name returns the trait name shared by genes of the same kind.
func (g Gene) Name() string { return g.name }

// Dominance returns the fixed dominance classification.
func (g Gene) Dominance() Dominance { return g.dominance }

// IsDominant reports whether the gene is classified Dominant.
func (g Gene) IsDominant() bool { return g.dominance == Dominant }

// Copy returns a new gene with the same name and dominance and a fresh identifier.
func (g Gene) Copy() Gene {
	return NewGene(g.name, g.dominance)
}

// IsZero reports whether g is the zero value.
func (g Gene) IsZero() bool { return g.id == "" && g.name == "" }

func (g Gene) String() string {
	return fmt.Sprintf("%s(%s)", g.name, g.dominance)
}

type geneRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Dominance Dominance `json:"dominance"`
}

// MarshalJSON encodes the gene for persistence.
func (g Gene) MarshalJSON() ([]byte, error) {
	return json.Marshal(geneRecord{ID: g.id, Name: g.name, Dominance: g.dominance})
}

// UnmarshalJSON restores a persisted gene, keeping its identifier.
func (g *Gene) UnmarshalJSON(data []byte) error {
	var rec geneRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if rec.ID == "" {
		return fmt.Errorf("gene %q missing id", rec.Name)
	}
	dominance, err := ParseDominance(string(rec.Dominance))
	if err != nil {
		return err
	}
	*g = Gene{id: rec.ID, name: rec.Name, dominance: dominance}
	return nil
}

// Package lineage writes one JSON record per bred offspring to a blob store
// and reads them back.
package lineage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"slimelab/internal/blob"
	"slimelab/pkg/domain"
)

// KeyPrefix is the blob key prefix every record is stored under.
const KeyPrefix = "lineage/"

const contentType = "application/json"

// Record captures the parents and inherited genes of one offspring.
type Record struct {
	OffspringID   string         `json:"offspring_id"`
	OffspringName string         `json:"offspring_name"`
	Element       domain.Element `json:"element"`
	ParentIDs     [2]string      `json:"parent_ids"`
	ParentNames   [2]string      `json:"parent_names"`
	Genes         []domain.Gene  `json:"genes"`
	ComboGene     *domain.Gene   `json:"combo_gene,omitempty"`
	MutationGene  *domain.Gene   `json:"mutation_gene,omitempty"`
	BredAt        time.Time      `json:"bred_at"`
}

// Key returns the blob key for an offspring ID.
func Key(offspringID string) string {
	return KeyPrefix + offspringID + ".json"
}

// Exporter persists records through a blob.Store.
type Exporter struct {
	store blob.Store
}

// NewExporter wraps store.
func NewExporter(store blob.Store) *Exporter {
	return &Exporter{store: store}
}

// Store returns the underlying blob store.
func (e *Exporter) Store() blob.Store { return e.store }

// Export writes rec. Records are write-once: exporting the same offspring
// twice fails with blob.ErrExists.
func (e *Exporter) Export(ctx context.Context, rec Record) error {
	if rec.OffspringID == "" {
		return fmt.Errorf("lineage record requires an offspring id")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode lineage %s: %w", rec.OffspringID, err)
	}
	meta := map[string]string{
		"element": string(rec.Element),
		"parents": rec.ParentIDs[0] + "," + rec.ParentIDs[1],
	}
	if _, err := e.store.Put(ctx, Key(rec.OffspringID), bytes.NewReader(payload), blob.PutOptions{ContentType: contentType, Metadata: meta}); err != nil {
		return fmt.Errorf("store lineage %s: %w", rec.OffspringID, err)
	}
	return nil
}

// Load reads the record for offspringID.
func (e *Exporter) Load(ctx context.Context, offspringID string) (Record, error) {
	_, body, err := e.store.Get(ctx, Key(offspringID))
	if err != nil {
		return Record{}, fmt.Errorf("load lineage %s: %w", offspringID, err)
	}
	defer func() { _ = body.Close() }()
	var rec Record
	if err := json.NewDecoder(body).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("decode lineage %s: %w", offspringID, err)
	}
	return rec, nil
}

// List returns every stored record ordered by key.
func (e *Exporter) List(ctx context.Context) ([]Record, error) {
	infos, err := e.store.List(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list lineage: %w", err)
	}
	out := make([]Record, 0, len(infos))
	for _, info := range infos {
		id, ok := offspringIDFromKey(info.Key)
		if !ok {
			continue
		}
		rec, err := e.Load(ctx, id)
		if errors.Is(err, blob.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Ancestors walks parent links starting at offspringID and returns the
// records found, nearest generation first. Parents without a record (for
// example founders created directly) end the walk on that branch.
func (e *Exporter) Ancestors(ctx context.Context, offspringID string) ([]Record, error) {
	var out []Record
	seen := map[string]bool{offspringID: true}
	queue := []string{offspringID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		rec, err := e.Load(ctx, id)
		if errors.Is(err, blob.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if id != offspringID {
			out = append(out, rec)
		}
		for _, parent := range rec.ParentIDs {
			if parent != "" && !seen[parent] {
				seen[parent] = true
				queue = append(queue, parent)
			}
		}
	}
	return out, nil
}

func offspringIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, KeyPrefix) || path.Ext(key) != ".json" {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(key, KeyPrefix), ".json"), true
}

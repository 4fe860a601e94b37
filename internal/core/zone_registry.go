package core

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"slimelab/pkg/domain"
)

// ZoneRegistry holds the expedition destinations known to the laboratory.
// It starts empty; zones come from a catalog overlay or Register.
type ZoneRegistry struct {
	mu    sync.RWMutex
	zones map[string]domain.Zone
}

// NewZoneRegistry returns an empty registry.
func NewZoneRegistry() *ZoneRegistry {
	return &ZoneRegistry{zones: make(map[string]domain.Zone)}
}

// Register stores zone, assigning an identifier when it has none, and returns
// the stored value. A zone with an existing identifier is replaced.
func (r *ZoneRegistry) Register(zone domain.Zone) domain.Zone {
	if zone.ID == "" {
		zone.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[zone.ID] = zone
	return zone
}

// Get looks a zone up by identifier.
func (r *ZoneRegistry) Get(id string) (domain.Zone, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	zone, ok := r.zones[id]
	return zone, ok
}

// List returns every zone ordered by difficulty, then name.
func (r *ZoneRegistry) List() []domain.Zone {
	r.mu.RLock()
	out := make([]domain.Zone, 0, len(r.zones))
	for _, zone := range r.zones {
		out = append(out, zone)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Difficulty != out[j].Difficulty {
			return out[i].Difficulty < out[j].Difficulty
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

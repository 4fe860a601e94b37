package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMaxTeamSize bounds an expedition team when none is configured.
const DefaultMaxTeamSize = 4

// ZoneRequirement gates which creatures may join an expedition to a zone.
// A zero MinLevel or an empty Element imposes nothing.
type ZoneRequirement struct {
	MinLevel int     `json:"min_level,omitempty"`
	Element  Element `json:"element,omitempty"`
}

// IsMet reports whether s satisfies the requirement.
func (r ZoneRequirement) IsMet(s *Slime) bool {
	if s == nil {
		return false
	}
	if s.Level() < r.MinLevel {
		return false
	}
	return r.Element == "" || s.Element() == r.Element
}

func (r ZoneRequirement) String() string {
	parts := make([]string, 0, 2)
	if r.MinLevel > 1 {
		parts = append(parts, fmt.Sprintf("level %d+", r.MinLevel))
	}
	if r.Element != "" {
		parts = append(parts, string(r.Element)+" only")
	}
	if len(parts) == 0 {
		return "open"
	}
	return strings.Join(parts, ", ")
}

// Zone is an expedition destination.
type Zone struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Difficulty  int             `json:"difficulty"`
	Requirement ZoneRequirement `json:"requirement"`
}

// CanEnter reports whether s meets the zone requirement.
func (z Zone) CanEnter(s *Slime) bool { return z.Requirement.IsMet(s) }

// ExpeditionStatus tracks an expedition through its lifecycle.
type ExpeditionStatus string

// Expedition statuses. Preparing is the only status that accepts team changes.
const (
	ExpeditionPreparing ExpeditionStatus = "preparing"
	ExpeditionActive    ExpeditionStatus = "active"
	ExpeditionCompleted ExpeditionStatus = "completed"
	ExpeditionFailed    ExpeditionStatus = "failed"
)

// Expedition sends a team of creatures to a zone. While preparing the team is
// a list of roster IDs; once started the members leave the roster and travel
// inside the expedition record until it returns.
type Expedition struct {
	Base
	Zone        Zone             `json:"zone"`
	MaxTeamSize int              `json:"max_team_size"`
	Status      ExpeditionStatus `json:"status"`
	TeamIDs     []string         `json:"team_ids"`
	Members     []*Slime         `json:"members,omitempty"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	EndedAt     *time.Time       `json:"ended_at,omitempty"`
}

// HasMember reports whether id is on the team.
func (e Expedition) HasMember(id string) bool {
	for _, member := range e.TeamIDs {
		if member == id {
			return true
		}
	}
	return false
}

// TeamSize returns the number of creatures on the team.
func (e Expedition) TeamSize() int { return len(e.TeamIDs) }

// Full reports whether the team has reached MaxTeamSize.
func (e Expedition) Full() bool { return len(e.TeamIDs) >= e.MaxTeamSize }

// Clone deep-copies the team and the travelling members.
func (e Expedition) Clone() Expedition {
	out := e
	out.TeamIDs = append([]string(nil), e.TeamIDs...)
	if e.Members != nil {
		out.Members = make([]*Slime, len(e.Members))
		for i, m := range e.Members {
			out.Members[i] = m.Clone()
		}
	}
	if e.StartedAt != nil {
		t := *e.StartedAt
		out.StartedAt = &t
	}
	if e.EndedAt != nil {
		t := *e.EndedAt
		out.EndedAt = &t
	}
	return out
}

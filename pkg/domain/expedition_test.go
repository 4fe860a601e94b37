package domain

import "testing"

func TestZoneRequirement(t *testing.T) {
	fire := NewSlime("Ember", ElementFire)
	fire.SetLevel(5)
	water := NewSlime("Drip", ElementWater)

	cases := []struct {
		name string
		req  ZoneRequirement
		s    *Slime
		want bool
		text string
	}{
		{"open", ZoneRequirement{}, water, true, "open"},
		{"level met", ZoneRequirement{MinLevel: 5}, fire, true, "level 5+"},
		{"level short", ZoneRequirement{MinLevel: 5}, water, false, "level 5+"},
		{"element", ZoneRequirement{Element: ElementFire}, water, false, "fire only"},
		{"both", ZoneRequirement{MinLevel: 3, Element: ElementFire}, fire, true, "level 3+, fire only"},
		{"nil slime", ZoneRequirement{}, nil, false, "open"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.req.IsMet(tc.s); got != tc.want {
				t.Fatalf("IsMet = %v, want %v", got, tc.want)
			}
			if got := tc.req.String(); got != tc.text {
				t.Fatalf("String = %q, want %q", got, tc.text)
			}
		})
	}
}

func TestExpeditionTeamHelpersAndClone(t *testing.T) {
	scout := NewSlime("Scout", ElementElectric)
	trip := Expedition{MaxTeamSize: 2, TeamIDs: []string{scout.ID()}, Members: []*Slime{scout}}
	if !trip.HasMember(scout.ID()) || trip.HasMember("other") {
		t.Fatalf("unexpected membership")
	}
	if trip.Full() || trip.TeamSize() != 1 {
		t.Fatalf("expected room on the team")
	}

	cp := trip.Clone()
	cp.TeamIDs[0] = "changed"
	cp.Members[0].Rename("Changed")
	if trip.TeamIDs[0] != scout.ID() || trip.Members[0].Name() != "Scout" {
		t.Fatalf("clone shares state with the original")
	}
	cp.TeamIDs = append(cp.TeamIDs, "x")
	if !cp.Full() {
		t.Fatalf("expected full team")
	}
}

func TestAutoFeederAdvance(t *testing.T) {
	f := NewAutoFeeder(10, 0)
	if f.Amount != DefaultFeedAmount || !f.Active || f.FoodCost() != 10 {
		t.Fatalf("unexpected defaults %+v cost %d", f, f.FoodCost())
	}
	if NewAutoFeeder(10, 15).FoodCost() != 8 {
		t.Fatalf("expected cost rounded up")
	}
	if f.Advance(6) || f.Elapsed != 6 {
		t.Fatalf("fed too early: %+v", f)
	}
	if !f.Advance(4) || f.Elapsed != 0 {
		t.Fatalf("expected feed at interval: %+v", f)
	}
	if f.Advance(0) || f.Advance(-3) {
		t.Fatalf("non-positive elapsed must not advance")
	}
	f.Active = false
	if f.Advance(50) || f.Elapsed != 0 {
		t.Fatalf("inactive feeder advanced: %+v", f)
	}
}

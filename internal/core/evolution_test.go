package core

import (
	"errors"
	"strings"
	"testing"

	"slimelab/pkg/domain"
)

func levelled(name string, element domain.Element, level int) *domain.Slime {
	s := domain.NewSlime(name, element)
	s.SetLevel(level)
	return s
}

func TestLevelTreeEvolution(t *testing.T) {
	cases := []struct {
		name       string
		element    domain.Element
		level      int
		wantTarget string
		wantStats  domain.Stats
	}{
		{"fire tier one", domain.ElementFire, 10, "Inferno Slime", domain.Stats{HP: 130, Attack: 25, Defense: 15, Speed: 15}},
		{"fire tier two", domain.ElementFire, 25, "Flame Lord", domain.Stats{HP: 160, Attack: 40, Defense: 20, Speed: 20}},
		{"water tier one", domain.ElementWater, 19, "Aqua Slime", domain.Stats{HP: 140, Attack: 20, Defense: 20, Speed: 15}},
		{"neutral tier two", domain.ElementNeutral, 20, "Harmonious Master", domain.Stats{HP: 160, Attack: 34, Defense: 26, Speed: 26}},
	}
	r := NewResolver(nil, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := levelled("Blob", tc.element, tc.level)
			out, err := r.Evolve(s, domain.EvolutionItem{Name: "Evo Crystal", Element: tc.element}, LevelTree{})
			if err != nil {
				t.Fatalf("evolve: %v", err)
			}
			if out.Mode != ModeLevelTree || out.TargetName != tc.wantTarget {
				t.Fatalf("unexpected outcome %+v", out)
			}
			if s.Name() != tc.wantTarget || s.Level() != tc.level+1 || s.Stats() != tc.wantStats {
				t.Fatalf("unexpected slime %s %+v", s, s.Stats())
			}
		})
	}
}

func TestLevelTreeFallsBackToDefaultBoost(t *testing.T) {
	r := NewResolver(NewEmptyEvolutionCatalog(), nil)
	s := levelled("Goo", domain.ElementWater, 12)
	out, err := r.Evolve(s, domain.EvolutionItem{Name: "Evo Crystal"}, LevelTree{})
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if out.TargetName != "Evolved Goo" || out.Delta != DefaultEvolutionBoost {
		t.Fatalf("unexpected fallback outcome %+v", out)
	}
	if s.Stats() != domain.DefaultStats.Boost(DefaultEvolutionBoost) {
		t.Fatalf("unexpected stats %+v", s.Stats())
	}
}

func TestEvolutionBelowMinimumLevelLeavesSlime(t *testing.T) {
	r := NewResolver(nil, nil)
	requests := []EvolutionRequest{
		LevelTree{},
		InEnvironment{Environment: domain.EnvironmentVolcanic},
		AtHour{Hour: 22},
		WithAffinity{},
	}
	for _, req := range requests {
		s := levelled("Ember", domain.ElementFire, MinEvolutionLevel-1)
		s.SetAffinity(100)
		before := s.Clone()
		item := domain.EvolutionItem{Name: "Moon Stone"}
		if req.Mode() == ModeAffinity {
			item.Name = "Friendship Stone"
		}
		if r.CanEvolve(s, item, req) {
			t.Fatalf("%s: expected CanEvolve false", req.Mode())
		}
		if _, err := r.Evolve(s, item, req); !errors.Is(err, domain.ErrInvalidOperation) {
			t.Fatalf("%s: expected invalid operation, got %v", req.Mode(), err)
		}
		if s.Name() != before.Name() || s.Level() != before.Level() || s.Stats() != before.Stats() {
			t.Fatalf("%s: slime changed on failure", req.Mode())
		}
	}
}

func TestEnvironmentEvolution(t *testing.T) {
	r := NewResolver(nil, nil)
	s := levelled("Ember", domain.ElementFire, 10)
	out, err := r.Evolve(s, domain.EvolutionItem{Name: "Evo Crystal", Element: domain.ElementWater}, InEnvironment{Environment: domain.EnvironmentVolcanic})
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if out.TargetName != "Magma Titan" || s.Name() != "Magma Titan" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	want := domain.Stats{HP: 160, Attack: 35, Defense: 30, Speed: 25}
	if s.Stats() != want || s.Level() != 11 {
		t.Fatalf("unexpected slime %s %+v", s, s.Stats())
	}

	for _, env := range []domain.Environment{domain.EnvironmentAquatic, domain.EnvironmentStandard} {
		other := levelled("Ember", domain.ElementFire, 10)
		if r.CanEvolve(other, domain.EvolutionItem{}, InEnvironment{Environment: env}) {
			t.Fatalf("fire slime should not evolve in %s", env)
		}
	}
	neutral := levelled("Plain", domain.ElementNeutral, 15)
	if r.CanEvolve(neutral, domain.EvolutionItem{}, InEnvironment{Environment: domain.EnvironmentStandard}) {
		t.Fatalf("neutral slime has no environment evolution")
	}
}

func TestTimeEvolution(t *testing.T) {
	r := NewResolver(nil, nil)
	moon := domain.EvolutionItem{Name: "Moon Stone"}
	sun := domain.EvolutionItem{Name: "Sun Stone"}
	cases := []struct {
		item   domain.EvolutionItem
		hour   int
		target string
	}{
		{moon, 22, "Lunar Eclipse"},
		{moon, 0, "Lunar Eclipse"},
		{moon, 5, "Lunar Eclipse"},
		{moon, 6, ""},
		{moon, 19, ""},
		{sun, 6, "Solar Flare"},
		{sun, 19, "Solar Flare"},
		{sun, 20, ""},
		{moon, 24, ""},
		{moon, -1, ""},
	}
	for _, tc := range cases {
		s := levelled("Spark", domain.ElementElectric, 10)
		out, err := r.Evolve(s, tc.item, AtHour{Hour: tc.hour})
		if tc.target == "" {
			if err == nil {
				t.Fatalf("%s at %d: expected failure", tc.item.Name, tc.hour)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s at %d: %v", tc.item.Name, tc.hour, err)
		}
		if out.TargetName != tc.target || out.Mode != ModeTime {
			t.Fatalf("%s at %d: unexpected outcome %+v", tc.item.Name, tc.hour, out)
		}
	}
}

func TestAffinityEvolution(t *testing.T) {
	r := NewResolver(nil, nil)
	item := domain.EvolutionItem{Name: "Friendship Stone", Element: domain.ElementFire}
	s := levelled("Buddy", domain.ElementWater, 10)
	s.SetAffinity(AffinityEvolutionThreshold - 1)
	if r.CanEvolve(s, item, WithAffinity{}) {
		t.Fatalf("expected affinity gate")
	}
	s.IncreaseAffinity(1)
	out, err := r.Evolve(s, item, WithAffinity{})
	if err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if out.TargetName != "Eternal Bond" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if s.Stats() != (domain.Stats{HP: 180, Attack: 45, Defense: 40, Speed: 35}) {
		t.Fatalf("unexpected stats %+v", s.Stats())
	}
}

func TestUnknownItemSuggestsName(t *testing.T) {
	r := NewResolver(nil, nil)
	s := levelled("Spark", domain.ElementElectric, 10)
	_, err := r.Evolve(s, domain.EvolutionItem{Name: "Moon Ston"}, AtHour{Hour: 22})
	if err == nil || !strings.Contains(err.Error(), `did you mean "Moon Stone"`) {
		t.Fatalf("expected suggestion, got %v", err)
	}
	_, err = r.Evolve(s, domain.EvolutionItem{Name: "Pebble"}, WithAffinity{})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("expected plain unknown item error, got %v", err)
	}
}

func TestResolveRejectsMissingInputs(t *testing.T) {
	r := NewResolver(nil, nil)
	if _, err := r.Resolve(nil, domain.EvolutionItem{}, LevelTree{}); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected nil slime error, got %v", err)
	}
	if _, err := r.Resolve(levelled("x", domain.ElementFire, 10), domain.EvolutionItem{}, nil); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("expected nil request error, got %v", err)
	}
}

func TestParseEvolutionMode(t *testing.T) {
	for raw, want := range map[string]EvolutionMode{
		"level":        ModeLevelTree,
		" Environment": ModeEnvironment,
		"TIME":         ModeTime,
		"affinity":     ModeAffinity,
	} {
		got, err := ParseEvolutionMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseEvolutionMode(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseEvolutionMode("moon"); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestEvolutionCatalogSelect(t *testing.T) {
	c := NewEvolutionCatalog()
	cases := []struct {
		level int
		want  string
	}{
		{1, "Inferno Slime"},
		{10, "Inferno Slime"},
		{20, "Flame Lord"},
		{99, "Flame Lord"},
	}
	for _, tc := range cases {
		got, ok := c.Select(domain.ElementFire, tc.level)
		if !ok || got.TargetName != tc.want {
			t.Fatalf("Select(fire, %d) = %q, %v", tc.level, got.TargetName, ok)
		}
	}
	if _, ok := NewEmptyEvolutionCatalog().Select(domain.ElementFire, 10); ok {
		t.Fatalf("empty catalog should not select")
	}
	paths := c.PathsFor(domain.ElementWater)
	paths[0].TargetName = "mutated"
	if c.PathsFor(domain.ElementWater)[0].TargetName != "Aqua Slime" {
		t.Fatalf("PathsFor leaked internal slice")
	}
}

func TestHourWindow(t *testing.T) {
	night := HourWindow(20, 6)
	day := HourWindow(6, 20)
	for hour := 0; hour < 24; hour++ {
		isNight := hour >= 20 || hour < 6
		if night(hour) != isNight {
			t.Fatalf("night(%d) = %v", hour, night(hour))
		}
		if day(hour) == isNight {
			t.Fatalf("day(%d) = %v", hour, day(hour))
		}
	}
}

func TestComboRegistry(t *testing.T) {
	r := NewGeneComboRegistry()
	genes := func(names ...string) []domain.Gene {
		out := make([]domain.Gene, len(names))
		for i, n := range names {
			out[i] = domain.NewGene(n, domain.Recessive)
		}
		return out
	}
	cases := []struct {
		names []string
		want  string
	}{
		{[]string{"Speed Gene", "Fire Gene"}, "Blazing Speed"},
		{[]string{"Fire Gene", "Speed Gene"}, "Blazing Speed"},
		{[]string{"Electric Gene", "Water Gene", "Fire Gene"}, "Tri-Element Master"},
		{[]string{"Fire Gene", "Water Gene"}, "Steam Power"},
		{[]string{"Fire Gene", "Water Gene", "Speed Gene"}, ""},
		{[]string{"Fire Gene"}, ""},
		{nil, ""},
	}
	for _, tc := range cases {
		got, ok := r.CheckForCombo(genes(tc.names...))
		if tc.want == "" {
			if ok {
				t.Fatalf("%v: unexpected combo %s", tc.names, got.Name())
			}
			continue
		}
		if !ok || got.Name() != tc.want || !got.IsDominant() {
			t.Fatalf("%v: got %v %v, want %s", tc.names, got, ok, tc.want)
		}
	}

	first, _ := r.CheckForCombo(genes("Fire Gene", "Water Gene"))
	second, _ := r.CheckForCombo(genes("Fire Gene", "Water Gene"))
	if first.ID() == second.ID() {
		t.Fatalf("expected a fresh bonus gene per lookup")
	}
	if !r.Has([]string{"Water Gene", "Fire Gene"}) || r.Has([]string{"Water Gene"}) {
		t.Fatalf("unexpected Has results")
	}
	if len(r.Combos()) != 5 {
		t.Fatalf("expected 5 default combos, got %d", len(r.Combos()))
	}

	r.Register([]string{"Water Gene", "Fire Gene"}, domain.NewGene("Geyser", domain.Recessive))
	if got, _ := r.CheckForCombo(genes("Fire Gene", "Water Gene")); got.Name() != "Geyser" {
		t.Fatalf("expected re-registration to replace combo, got %s", got.Name())
	}
	if len(r.Combos()) != 5 {
		t.Fatalf("re-registration should not add a combo")
	}
}

func TestSuggestName(t *testing.T) {
	candidates := []string{"Moon Stone", "Sun Stone", "Friendship Stone"}
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"moon stone", "Moon Stone", true},
		{"Sun Stoen", "Sun Stone", true},
		{"Friendship Ston", "Friendship Stone", true},
		{"xy", "", false},
		{"Dragon Scale", "", false},
	}
	for _, tc := range cases {
		got, ok := SuggestName(tc.input, candidates)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("SuggestName(%q) = %q, %v", tc.input, got, ok)
		}
	}
}

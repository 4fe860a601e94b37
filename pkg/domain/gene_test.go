package domain

import (
	"encoding/json"
	"testing"
)

func TestGeneHasIDNameAndDominance(t *testing.T) {
	g := NewGene("Fire Affinity", "")
	if g.ID() == "" {
		t.Fatalf("expected generated id")
	}
	if g.Name() != "Fire Affinity" {
		t.Fatalf("unexpected name %q", g.Name())
	}
	if g.Dominance() != Recessive {
		t.Fatalf("expected recessive default, got %s", g.Dominance())
	}
	if !NewGene("Strong Gene", Dominant).IsDominant() {
		t.Fatalf("expected dominant gene")
	}
}

func TestGeneCopyGetsFreshIdentity(t *testing.T) {
	g := NewGene("Speed Gene", Dominant)
	cp := g.Copy()
	if cp.ID() == g.ID() {
		t.Fatalf("copy must not share identifier")
	}
	if cp.Name() != g.Name() || cp.Dominance() != g.Dominance() {
		t.Fatalf("copy must keep name and dominance: %s vs %s", cp, g)
	}
}

func TestGeneJSONRoundTrip(t *testing.T) {
	g := NewGene("Water Gene", Dominant)
	payload, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored Gene
	if err := json.Unmarshal(payload, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored != g {
		t.Fatalf("round trip mismatch: %+v vs %+v", restored, g)
	}
}

func TestGeneUnmarshalRejectsBadPayloads(t *testing.T) {
	for _, raw := range []string{
		`{"name":"No ID","dominance":"dominant"}`,
		`{"id":"x","name":"Bad","dominance":"sideways"}`,
	} {
		var g Gene
		if err := json.Unmarshal([]byte(raw), &g); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if e, err := ParseElement(" Fire "); err != nil || e != ElementFire {
		t.Fatalf("parse element: %v %v", e, err)
	}
	if _, err := ParseElement("plasma"); err == nil {
		t.Fatalf("expected unknown element error")
	}
	if env, err := ParseEnvironment("STORM"); err != nil || env != EnvironmentStorm {
		t.Fatalf("parse environment: %v %v", env, err)
	}
	if _, err := ParseEnvironment("desert"); err == nil {
		t.Fatalf("expected unknown environment error")
	}
	if d, err := ParseDominance(""); err != nil || d != Recessive {
		t.Fatalf("parse dominance: %v %v", d, err)
	}
}

func TestEnvironmentMatchesElement(t *testing.T) {
	cases := []struct {
		env     Environment
		element Element
		want    bool
	}{
		{EnvironmentVolcanic, ElementFire, true},
		{EnvironmentAquatic, ElementWater, true},
		{EnvironmentStorm, ElementElectric, true},
		{EnvironmentAquatic, ElementFire, false},
		{EnvironmentStandard, ElementFire, false},
		{EnvironmentVolcanic, ElementNeutral, false},
		{EnvironmentStorm, ElementNeutral, false},
	}
	for _, tc := range cases {
		if got := tc.env.MatchesElement(tc.element); got != tc.want {
			t.Fatalf("%s/%s: got %v want %v", tc.env, tc.element, got, tc.want)
		}
	}
}

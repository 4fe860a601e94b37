package lineage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"slimelab/internal/blob"
	"slimelab/pkg/domain"
)

func sampleRecord(id string, parents [2]string) Record {
	combo := domain.NewGene("Inferno", domain.Dominant)
	return Record{
		OffspringID:   id,
		OffspringName: "Offspring of A & B",
		Element:       domain.ElementFire,
		ParentIDs:     parents,
		ParentNames:   [2]string{"A", "B"},
		Genes:         []domain.Gene{domain.NewGene("Fire Affinity", domain.Dominant), combo},
		ComboGene:     &combo,
		BredAt:        time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestExportAndLoad(t *testing.T) {
	store := blob.NewMemory()
	exp := NewExporter(store)
	ctx := context.Background()
	rec := sampleRecord("child", [2]string{"pa", "pb"})
	if err := exp.Export(ctx, rec); err != nil {
		t.Fatalf("export: %v", err)
	}
	info, err := store.Head(ctx, Key("child"))
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if info.ContentType != "application/json" || info.Metadata["parents"] != "pa,pb" {
		t.Fatalf("unexpected blob info %+v", info)
	}
	got, err := exp.Load(ctx, "child")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.OffspringName != rec.OffspringName || got.Element != domain.ElementFire || !got.BredAt.Equal(rec.BredAt) {
		t.Fatalf("unexpected record %+v", got)
	}
	if len(got.Genes) != 2 || got.Genes[1].ID() != rec.Genes[1].ID() {
		t.Fatalf("genes not preserved: %+v", got.Genes)
	}
	if got.ComboGene == nil || got.ComboGene.Name() != "Inferno" || got.MutationGene != nil {
		t.Fatalf("unexpected bonus genes %+v %+v", got.ComboGene, got.MutationGene)
	}
}

func TestExportIsWriteOnce(t *testing.T) {
	exp := NewExporter(blob.NewMemory())
	ctx := context.Background()
	rec := sampleRecord("child", [2]string{"a", "b"})
	if err := exp.Export(ctx, rec); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := exp.Export(ctx, rec); !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if err := exp.Export(ctx, Record{}); err == nil {
		t.Fatalf("expected missing id error")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := NewExporter(blob.NewMemory()).Load(context.Background(), "ghost")
	if !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSkipsForeignKeys(t *testing.T) {
	store := blob.NewMemory()
	exp := NewExporter(store)
	ctx := context.Background()
	for _, id := range []string{"b", "a"} {
		if err := exp.Export(ctx, sampleRecord(id, [2]string{"x", "y"})); err != nil {
			t.Fatalf("export %s: %v", id, err)
		}
	}
	if _, err := store.Put(ctx, "lineage/notes.txt", strings.NewReader("x"), blob.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	recs, err := exp.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 || recs[0].OffspringID != "a" || recs[1].OffspringID != "b" {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestAncestorsWalksGenerations(t *testing.T) {
	exp := NewExporter(blob.NewMemory())
	ctx := context.Background()
	for _, rec := range []Record{
		sampleRecord("parent-a", [2]string{"founder-1", "founder-2"}),
		sampleRecord("parent-b", [2]string{"founder-2", "founder-3"}),
		sampleRecord("child", [2]string{"parent-a", "parent-b"}),
	} {
		if err := exp.Export(ctx, rec); err != nil {
			t.Fatalf("export %s: %v", rec.OffspringID, err)
		}
	}
	got, err := exp.Ancestors(ctx, "child")
	if err != nil {
		t.Fatalf("ancestors: %v", err)
	}
	if len(got) != 2 || got[0].OffspringID != "parent-a" || got[1].OffspringID != "parent-b" {
		t.Fatalf("unexpected ancestors %+v", got)
	}
	none, err := exp.Ancestors(ctx, "founder-1")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no ancestors for founder, got %v %v", none, err)
	}
}

func TestExporterWorksOverFilesystem(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	exp := NewExporter(store)
	ctx := context.Background()
	if err := exp.Export(ctx, sampleRecord("disk", [2]string{"a", "b"})); err != nil {
		t.Fatalf("export: %v", err)
	}
	recs, err := exp.List(ctx)
	if err != nil || len(recs) != 1 || recs[0].OffspringID != "disk" {
		t.Fatalf("unexpected list %v %v", recs, err)
	}
}

package core

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"slimelab/internal/config"
	"slimelab/internal/infra/persistence/memory"
	"slimelab/internal/infra/persistence/postgres"
	"slimelab/internal/infra/persistence/postgres/testutil"
	"slimelab/internal/infra/persistence/sqlite"
	"slimelab/pkg/domain"
)

func TestOpenPersistentStoreDrivers(t *testing.T) {
	ctx := context.Background()

	store, err := OpenPersistentStore(ctx, config.Storage{Driver: "MEMORY"}, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	path := filepath.Join(t.TempDir(), "lab.db")
	store, err = OpenPersistentStore(ctx, config.Storage{SQLitePath: path}, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	sq, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store for empty driver, got %T", store)
	}
	t.Cleanup(func() { _ = sq.Close() })
	if sq.Path() != path {
		t.Fatalf("expected path %s, got %s", path, sq.Path())
	}

	db, _ := testutil.NewStubDB()
	restore := postgres.OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	store, err = OpenPersistentStore(ctx, config.Storage{Driver: "postgres", PostgresDSN: "postgres://lab"}, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("postgres: %v", err)
	}
	if _, ok := store.(*postgres.Store); !ok {
		t.Fatalf("expected postgres store, got %T", store)
	}

	if _, err := OpenPersistentStore(ctx, config.Storage{Driver: "cassandra"}, nil); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestServiceOverSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lab.db")
	first, err := NewSQLiteStore(path, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	svc := NewService(first)
	created := mustCreate(t, svc, levelled("Durable", domain.ElementElectric, 10))
	if _, _, _, err := svc.Evolve(ctx, created.ID(), domain.EvolutionItem{}, LevelTree{}); err != nil {
		t.Fatalf("evolve: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewSQLiteStore(path, NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })
	got, ok := NewService(second).GetSlime(created.ID())
	if !ok || got.Name() != "Thunder Slime" || got.Level() != 11 {
		t.Fatalf("expected evolved slime after reopen, got %v %v", got, ok)
	}
}

func TestServiceOverPostgresRetriesAfterFailedCommit(t *testing.T) {
	ctx := context.Background()
	db, conn := testutil.NewStubDB()
	restore := postgres.OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	store, err := NewPostgresStore(ctx, "postgres://lab", NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	svc := NewService(store, WithRand(NewSeededRand(11)))
	a, b := breedingPair(t)
	mustCreate(t, svc, a)
	mustCreate(t, svc, b)
	elder := mustCreate(t, svc, levelled("Elder", domain.ElementFire, 10))
	if err := svc.StartBreeding(ctx, a.ID(), b.ID(), stockedInventory(BreedingFoodCost)); err != nil {
		t.Fatalf("start: %v", err)
	}
	svc.AdvanceBreeding(DefaultBreedingDuration)

	conn.FailCommit = true
	if _, _, err := svc.CompleteBreeding(ctx); err == nil {
		t.Fatalf("expected commit failure")
	}
	if got := len(svc.ListSlimes()); got != 3 {
		t.Fatalf("offspring left in memory after failed commit: %d slimes", got)
	}
	if status := svc.BreedingStatus(); status.State != BreedingInProgress {
		t.Fatalf("expected session kept for retry, got %s", status.State)
	}
	if _, _, _, err := svc.Evolve(ctx, elder.ID(), domain.EvolutionItem{}, nil); err == nil {
		t.Fatalf("expected evolve commit failure")
	}
	if got, _ := svc.GetSlime(elder.ID()); got.Level() != 10 || got.Name() != "Elder" {
		t.Fatalf("failed evolve leaked into memory: %s level %d", got.Name(), got.Level())
	}

	conn.FailCommit = false
	if _, _, err := svc.CompleteBreeding(ctx); err != nil {
		t.Fatalf("retry complete: %v", err)
	}
	if _, _, _, err := svc.Evolve(ctx, elder.ID(), domain.EvolutionItem{}, nil); err != nil {
		t.Fatalf("retry evolve: %v", err)
	}
	if got := len(svc.ListSlimes()); got != 4 {
		t.Fatalf("expected one offspring after retry, got %d slimes", got)
	}
	if got, _ := svc.GetSlime(elder.ID()); got.Level() != 11 {
		t.Fatalf("expected a single level gained, got %d", got.Level())
	}
}

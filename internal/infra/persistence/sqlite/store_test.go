package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"slimelab/pkg/domain"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	slime := domain.NewSlime("Persist", domain.ElementElectric)
	if err := slime.AddGene(domain.NewGene("Speed Gene", domain.Dominant)); err != nil {
		t.Fatalf("add gene: %v", err)
	}
	id := slime.ID()
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, e := tx.CreateSlime(slime); e != nil {
			return e
		}
		_, e := tx.CreateContainmentUnit(domain.ContainmentUnit{Name: "Storm Pen", Environment: domain.EnvironmentStorm, SlimeID: &id})
		return e
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	got, ok := reloaded.GetSlime(id)
	if !ok {
		t.Fatalf("expected slime after reload")
	}
	if got.Name() != "Persist" || got.Element() != domain.ElementElectric {
		t.Fatalf("unexpected slime %s", got)
	}
	if genes := got.GeneNames(); len(genes) != 1 || genes[0] != "Speed Gene" {
		t.Fatalf("expected gene to survive reload, got %v", genes)
	}
	units := reloaded.ListContainmentUnits()
	if len(units) != 1 || !units[0].Occupied() || *units[0].SlimeID != id {
		t.Fatalf("expected occupied unit, got %+v", units)
	}
	if reloaded.Path() != path {
		t.Fatalf("unexpected path %s", reloaded.Path())
	}
}

func TestSQLiteStoreCreatesStateTable(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	var tableName string
	if err := store.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", "state").Scan(&tableName); err != nil {
		t.Fatalf("lookup state table: %v", err)
	}
	if tableName != "state" {
		t.Fatalf("expected state table, got %s", tableName)
	}
}

func TestSQLiteStoreFailedTransactionDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteSlime("missing")
	}); err == nil {
		t.Fatalf("expected missing delete error")
	}
	var count int
	if err := store.DB().QueryRow("SELECT COUNT(*) FROM state").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no snapshot rows, got %d", count)
	}
}

func TestSQLiteStoreSnapshotFailureRestoresMemory(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	ctx := context.Background()
	kept := domain.NewSlime("Kept", domain.ElementWater)
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, e := tx.CreateSlime(kept)
		return e
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.DB().Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, e := tx.CreateSlime(domain.NewSlime("Orphan", domain.ElementFire))
		return e
	}); err == nil {
		t.Fatalf("expected snapshot failure on closed database")
	}
	slimes := store.ListSlimes()
	if len(slimes) != 1 || slimes[0].ID() != kept.ID() {
		t.Fatalf("expected only the committed slime, got %v", slimes)
	}
}

func TestSQLiteStoreReloadsExpeditionsAndFeeders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	traveller := domain.NewSlime("Scout", domain.ElementElectric)
	feeder := domain.NewAutoFeeder(10, 0)
	var tripID, unitID string
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		trip, e := tx.CreateExpedition(domain.Expedition{
			Zone:        domain.Zone{ID: "z1", Name: "Storm Peaks", Difficulty: 2},
			MaxTeamSize: domain.DefaultMaxTeamSize,
			Status:      domain.ExpeditionActive,
			TeamIDs:     []string{traveller.ID()},
			Members:     []*domain.Slime{traveller},
		})
		tripID = trip.ID
		if e != nil {
			return e
		}
		unit, e := tx.CreateContainmentUnit(domain.ContainmentUnit{Name: "Fed", Feeder: &feeder})
		unitID = unit.ID
		return e
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = store.Close()

	reloaded, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	var trip domain.Expedition
	var unit domain.ContainmentUnit
	_ = reloaded.View(context.Background(), func(v domain.TransactionView) error {
		trip, _ = v.FindExpedition(tripID)
		unit, _ = v.FindContainmentUnit(unitID)
		return nil
	})
	if trip.Status != domain.ExpeditionActive || len(trip.Members) != 1 || trip.Members[0].Name() != "Scout" {
		t.Fatalf("unexpected expedition after reload: %+v", trip)
	}
	if unit.Feeder == nil || unit.Feeder.Interval != 10 || unit.Feeder.Amount != domain.DefaultFeedAmount {
		t.Fatalf("unexpected feeder after reload: %+v", unit.Feeder)
	}
}

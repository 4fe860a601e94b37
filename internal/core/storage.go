package core

import (
	"context"
	"fmt"
	"strings"

	"slimelab/internal/config"
	"slimelab/internal/infra/persistence/memory"
	"slimelab/internal/infra/persistence/postgres"
	"slimelab/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = config.StorageMemory
	StorageSQLite   StorageDriver = config.StorageSQLite
	StoragePostgres StorageDriver = config.StoragePostgres
)

// NewMemoryStore returns the in-memory roster store.
func NewMemoryStore(engine *RulesEngine) *memory.Store {
	return memory.NewStore(engine)
}

// NewSQLiteStore opens a SQLite-backed store at path; empty selects sqlite.DefaultPath.
func NewSQLiteStore(path string, engine *RulesEngine) (*sqlite.Store, error) {
	return sqlite.NewStore(path, engine)
}

// NewPostgresStore opens a Postgres-backed store; empty dsn selects postgres.DefaultDSN.
func NewPostgresStore(ctx context.Context, dsn string, engine *RulesEngine) (*postgres.Store, error) {
	return postgres.NewStore(ctx, dsn, engine)
}

// OpenPersistentStore selects a backend from the storage configuration. An
// empty driver selects sqlite.
func OpenPersistentStore(ctx context.Context, cfg config.Storage, engine *RulesEngine) (PersistentStore, error) {
	driver := StorageDriver(strings.ToLower(cfg.Driver))
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return NewMemoryStore(engine), nil
	case StorageSQLite:
		return NewSQLiteStore(cfg.SQLitePath, engine)
	case StoragePostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}

// Package sqlite persists the roster to an embedded SQLite database by
// snapshotting the in-memory store after every committed transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"slimelab/internal/infra/persistence/memory"
	"slimelab/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

type (
	// RulesEngine is an alias of domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Transaction is an alias of domain.Transaction.
	Transaction = domain.Transaction
	// Result is an alias of domain.Result.
	Result = domain.Result
)

const (
	bucketSlimes = "slimes"
	bucketUnits  = "containment_units"
	bucketTrips  = "expeditions"

	// DefaultPath is used when no database path is configured.
	DefaultPath = "slimelab.db"
)

// Store persists the in-memory state to a single SQLite table as JSON blobs.
// It snapshots the full state after every successful transaction.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore constructs a snapshotting SQLite-backed persistent store.
func NewStore(path string, engine *RulesEngine) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(engine), db: db, path: path}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	snapshot := memory.Snapshot{}
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		found = true
		switch bucket {
		case bucketSlimes:
			if err := json.Unmarshal(payload, &snapshot.Slimes); err != nil {
				return fmt.Errorf("decode slimes: %w", err)
			}
		case bucketUnits:
			if err := json.Unmarshal(payload, &snapshot.Units); err != nil {
				return fmt.Errorf("decode containment units: %w", err)
			}
		case bucketTrips:
			if err := json.Unmarshal(payload, &snapshot.Expeditions); err != nil {
				return fmt.Errorf("decode expeditions: %w", err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if found {
		s.ImportState(snapshot)
	}
	return nil
}

// persist writes the current state; callers hold s.mu.
func (s *Store) persist(ctx context.Context) (retErr error) {
	snapshot := s.ExportState()
	buckets := map[string]any{
		bucketSlimes: snapshot.Slimes,
		bucketUnits:  snapshot.Units,
		bucketTrips:  snapshot.Expeditions,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range []string{bucketSlimes, bucketUnits, bucketTrips} {
		data, err := json.Marshal(buckets[bucket])
		if err != nil {
			return fmt.Errorf("encode %s: %w", bucket, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}

// RunInTransaction applies fn within a transaction, then snapshots state to
// SQLite. A failed snapshot restores the state held before fn ran.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.ExportState()
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(ctx); pErr != nil {
		s.ImportState(prev)
		return res, fmt.Errorf("persist snapshot: %w", pErr)
	}
	return res, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Package testutil provides a stub database/sql driver that speaks only the
// snapshot dialect of the postgres store: one DDL statement, a bucket upsert
// and a full-table select on state(bucket, payload).
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync/atomic"
)

var stubSeq atomic.Uint64

// StubConn keeps committed bucket payloads. Upserts issued inside a
// transaction are staged and only land in Buckets on commit.
type StubConn struct {
	Execs      []string
	Buckets    map[string][]byte
	FailPing   bool
	FailCommit bool

	staged map[string][]byte
}

// NewStubDB registers a fresh driver and returns a sql.DB backed by its connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Buckets: make(map[string][]byte)}
	name := fmt.Sprintf("slimelab-stubpg-%d", stubSeq.Add(1))
	sql.Register(name, stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	db.SetMaxOpenConns(1)
	return db, conn
}

type stubDriver struct{ conn *StubConn }

func (d stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("stub: prepare unsupported") }
func (c *StubConn) Close() error                        { return nil }
func (c *StubConn) Begin() (driver.Tx, error)           { return c.BeginTx(context.Background(), driver.TxOptions{}) }

// Ping fails while FailPing is set.
func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return errors.New("ping fail")
	}
	return nil
}

// BeginTx opens a staging area for upserts.
func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	c.staged = make(map[string][]byte)
	return stubTx{conn: c}, nil
}

// ExecContext accepts the state DDL and the bucket upsert.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	upper := strings.ToUpper(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		return driver.RowsAffected(0), nil
	case strings.HasPrefix(upper, "INSERT INTO STATE"):
		if len(args) != 2 {
			return nil, fmt.Errorf("stub: upsert wants 2 args, got %d", len(args))
		}
		bucket, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		target := c.Buckets
		if c.staged != nil {
			target = c.staged
		}
		target[bucket] = slices.Clone(payload)
		return driver.RowsAffected(1), nil
	default:
		return nil, fmt.Errorf("stub: unsupported statement %q", query)
	}
}

// QueryContext answers the snapshot select in bucket order.
func (c *StubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT BUCKET, PAYLOAD FROM STATE") {
		return nil, fmt.Errorf("stub: unsupported query %q", query)
	}
	keys := make([]string, 0, len(c.Buckets))
	for k := range c.Buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	rows := &stubRows{}
	for _, k := range keys {
		rows.rows = append(rows.rows, []driver.Value{k, slices.Clone(c.Buckets[k])})
	}
	return rows, nil
}

type stubTx struct{ conn *StubConn }

func (t stubTx) Commit() error {
	staged := t.conn.staged
	t.conn.staged = nil
	if t.conn.FailCommit {
		return errors.New("commit fail")
	}
	for k, v := range staged {
		t.conn.Buckets[k] = v
	}
	return nil
}

func (t stubTx) Rollback() error {
	t.conn.staged = nil
	return nil
}

type stubRows struct {
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}

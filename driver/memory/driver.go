// Package memory provides an in-process driver for artifactpg. It keeps
// artifacts in memory and is meant for tests, demos and the CLI's one-shot
// commands. Nothing survives a restart.
//
// Usage:
//
//	drv := memory.New()
//	client, _ := artifactpg.NewClient(drv, artifactpg.DefaultClientConfig())
package memory

import (
	"context"
	"errors"

	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/storage"
)

// ErrSQLNotSupported is returned by the executor's SQL methods.
var ErrSQLNotSupported = errors.New("memory: SQL is not supported")

// Driver implements driver.Driver without a database.
type Driver struct {
	store *Store
	hub   *hub
}

// New creates an empty in-memory driver.
func New() *Driver {
	h := newHub()
	return &Driver{store: newStore(h), hub: h}
}

// GetExecutor returns an executor that can only begin transactions.
func (d *Driver) GetExecutor() driver.Executor {
	return &Executor{store: d.store}
}

// UnwrapExecutor returns tx itself.
func (d *Driver) UnwrapExecutor(tx *Tx) driver.ExecutorTx {
	return tx
}

// Begin starts a transaction that stages saves until Commit.
func (d *Driver) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	return d.store.begin(nil), nil
}

// PoolIsSet always returns true.
func (d *Driver) PoolIsSet() bool {
	return true
}

// GetStore returns the artifact store.
func (d *Driver) GetStore() storage.Store {
	return d.store
}

// SupportsListener always returns true; notifications are delivered
// in-process.
func (d *Driver) SupportsListener() bool {
	return true
}

// GetListener returns a new in-process listener.
func (d *Driver) GetListener(ctx context.Context) (driver.Listener, error) {
	return d.hub.subscribe(), nil
}

// Executor is the pool-level executor.
type Executor struct {
	store *Store
}

func (e *Executor) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	return e.store.begin(nil), nil
}

func (e *Executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return 0, ErrSQLNotSupported
}

func (e *Executor) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	return nil, ErrSQLNotSupported
}

func (e *Executor) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	return errRow{ErrSQLNotSupported}
}

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

var _ driver.Driver[*Tx] = (*Driver)(nil)

// Package driver provides the database driver abstraction for artifactpg.
//
// A Driver hands out executors (pool or transaction), a storage.Store built
// on them, and, where the backend supports it, a Listener for artifact
// notifications. Implementations:
//   - github.com/youssefsiam38/artifactpg/driver/pgxv5.New(pool)
//   - github.com/youssefsiam38/artifactpg/driver/databasesql.New(db, connStr)
//   - github.com/youssefsiam38/artifactpg/driver/memory.New()
package driver

import (
	"context"
	"errors"

	"github.com/youssefsiam38/artifactpg/storage"
)

// ErrListenerNotSupported is returned by GetListener when the driver cannot
// receive notifications.
var ErrListenerNotSupported = errors.New("driver: listener not supported")

// Driver provides database operations for artifactpg.
// TTx is the native transaction type (pgx.Tx, *sql.Tx, ...).
type Driver[TTx any] interface {
	// GetExecutor returns an executor backed by the connection pool.
	GetExecutor() Executor

	// UnwrapExecutor converts a native transaction to an ExecutorTx so store
	// calls can join a caller's transaction through WithExecutor.
	UnwrapExecutor(tx TTx) ExecutorTx

	// Begin starts a new transaction.
	Begin(ctx context.Context) (ExecutorTx, error)

	// PoolIsSet reports whether the driver has a database configured.
	PoolIsSet() bool

	// GetStore returns the artifact store for this driver.
	GetStore() storage.Store

	// SupportsListener reports whether GetListener can succeed.
	SupportsListener() bool

	// GetListener returns a Listener on a dedicated connection. The caller
	// must close it.
	GetListener(ctx context.Context) (Listener, error)
}

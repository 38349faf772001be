// Package databasesql provides the database/sql driver for artifactpg,
// backed by lib/pq.
//
// Usage:
//
//	db, _ := sql.Open("postgres", databaseURL)
//	drv := databasesql.New(db, databaseURL)
package databasesql

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/lib/pq"

	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/driver/sqlstore"
	"github.com/youssefsiam38/artifactpg/storage"
)

// Driver implements driver.Driver using database/sql.
type Driver struct {
	db      *sql.DB
	connStr string
	store   *sqlstore.Store
}

// New creates a database/sql driver. connStr is used to open the dedicated
// connection of a Listener; pass "" to disable listening.
func New(db *sql.DB, connStr string) *Driver {
	d := &Driver{db: db, connStr: connStr}
	d.store = sqlstore.New(d, sqlstore.IsNoRowsFunc(sql.ErrNoRows))
	return d
}

// GetExecutor returns an executor for non-transactional operations.
func (d *Driver) GetExecutor() driver.Executor {
	return &Executor{db: d.db}
}

// UnwrapExecutor converts a *sql.Tx to an ExecutorTx.
func (d *Driver) UnwrapExecutor(tx *sql.Tx) driver.ExecutorTx {
	return &ExecutorTx{tx: tx}
}

// Begin starts a new transaction.
func (d *Driver) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &ExecutorTx{tx: tx}, nil
}

// PoolIsSet returns true if the driver has a database configured.
func (d *Driver) PoolIsSet() bool {
	return d.db != nil
}

// GetStore returns the artifact store.
func (d *Driver) GetStore() storage.Store {
	return d.store
}

// DB returns the underlying database handle.
func (d *Driver) DB() *sql.DB {
	return d.db
}

// SupportsListener reports whether a connection string was provided.
func (d *Driver) SupportsListener() bool {
	return d.connStr != ""
}

// GetListener opens a lib/pq listener connection.
func (d *Driver) GetListener(ctx context.Context) (driver.Listener, error) {
	if !d.SupportsListener() {
		return nil, driver.ErrListenerNotSupported
	}
	return NewListener(d.connStr), nil
}

// Executor wraps *sql.DB.
type Executor struct {
	db *sql.DB
}

func (e *Executor) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &ExecutorTx{tx: tx}, nil
}

func (e *Executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return rowsAffected(e.db.ExecContext(ctx, query, args...))
}

func (e *Executor) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &rowsWrapper{rows}, nil
}

func (e *Executor) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	return e.db.QueryRowContext(ctx, query, args...)
}

var savepointSeq atomic.Int64

// ExecutorTx wraps *sql.Tx. Nested Begin calls become savepoints.
type ExecutorTx struct {
	tx        *sql.Tx
	savepoint string
}

// Begin creates a savepoint inside the transaction.
func (e *ExecutorTx) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	name := fmt.Sprintf("artifactpg_sp_%d", savepointSeq.Add(1))
	if _, err := e.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return nil, err
	}
	return &ExecutorTx{tx: e.tx, savepoint: name}, nil
}

func (e *ExecutorTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return rowsAffected(e.tx.ExecContext(ctx, query, args...))
}

func (e *ExecutorTx) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	rows, err := e.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &rowsWrapper{rows}, nil
}

func (e *ExecutorTx) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	return e.tx.QueryRowContext(ctx, query, args...)
}

// Commit commits the transaction, or releases the savepoint.
func (e *ExecutorTx) Commit(ctx context.Context) error {
	if e.savepoint != "" {
		_, err := e.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+e.savepoint)
		return err
	}
	return e.tx.Commit()
}

// Rollback rolls back the transaction, or to the savepoint.
func (e *ExecutorTx) Rollback(ctx context.Context) error {
	if e.savepoint != "" {
		_, err := e.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+e.savepoint)
		return err
	}
	return e.tx.Rollback()
}

// Tx returns the underlying *sql.Tx.
func (e *ExecutorTx) Tx() *sql.Tx {
	return e.tx
}

func rowsAffected(result sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// rowsWrapper adapts *sql.Rows to driver.Rows.
type rowsWrapper struct {
	*sql.Rows
}

func (r *rowsWrapper) Close() {
	_ = r.Rows.Close()
}

var _ driver.Driver[*sql.Tx] = (*Driver)(nil)

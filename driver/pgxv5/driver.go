// Package pgxv5 provides the pgx/v5 driver for artifactpg. It is the
// recommended driver: native batching, savepoint transactions and
// LISTEN-based artifact notifications.
//
// Usage:
//
//	pool, _ := pgxpool.New(ctx, databaseURL)
//	drv := pgxv5.New(pool)
//	client, _ := artifactpg.NewClient(drv, artifactpg.DefaultClientConfig())
package pgxv5

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/driver/sqlstore"
	"github.com/youssefsiam38/artifactpg/storage"
)

// Driver implements driver.Driver for pgx/v5.
type Driver struct {
	pool  *pgxpool.Pool
	store *sqlstore.Store
}

// New creates a pgx/v5 driver with the given connection pool.
func New(pool *pgxpool.Pool) *Driver {
	d := &Driver{pool: pool}
	d.store = sqlstore.New(d, sqlstore.IsNoRowsFunc(pgx.ErrNoRows))
	return d
}

// GetExecutor returns an executor for non-transactional operations.
func (d *Driver) GetExecutor() driver.Executor {
	return &Executor{pool: d.pool}
}

// UnwrapExecutor converts a pgx.Tx to an ExecutorTx.
func (d *Driver) UnwrapExecutor(tx pgx.Tx) driver.ExecutorTx {
	return &ExecutorTx{tx: tx}
}

// Begin starts a new transaction.
func (d *Driver) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &ExecutorTx{tx: tx}, nil
}

// PoolIsSet returns true if the driver has a pool configured.
func (d *Driver) PoolIsSet() bool {
	return d.pool != nil
}

// GetStore returns the artifact store.
func (d *Driver) GetStore() storage.Store {
	return d.store
}

// Pool returns the underlying pool.
func (d *Driver) Pool() *pgxpool.Pool {
	return d.pool
}

// SupportsListener returns true; pgx can hold a dedicated LISTEN connection.
func (d *Driver) SupportsListener() bool {
	return true
}

// GetListener acquires a dedicated connection for LISTEN. Close releases it
// back to the pool.
func (d *Driver) GetListener(ctx context.Context) (driver.Listener, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &Listener{conn: conn}, nil
}

// Executor wraps pgxpool.Pool for non-transactional operations.
type Executor struct {
	pool *pgxpool.Pool
}

func (e *Executor) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &ExecutorTx{tx: tx}, nil
}

func (e *Executor) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	result, err := e.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (e *Executor) Query(ctx context.Context, sql string, args ...any) (driver.Rows, error) {
	rows, err := e.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &rowsWrapper{rows}, nil
}

func (e *Executor) QueryRow(ctx context.Context, sql string, args ...any) driver.Row {
	return e.pool.QueryRow(ctx, sql, args...)
}

// SendBatch sends all items in a single round trip.
func (e *Executor) SendBatch(ctx context.Context, items []driver.BatchItem) ([]int64, error) {
	return sendBatch(ctx, e.pool.SendBatch, items)
}

// ExecutorTx wraps pgx.Tx for transactional operations.
type ExecutorTx struct {
	tx pgx.Tx
}

// Begin starts a savepoint.
func (e *ExecutorTx) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	tx, err := e.tx.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &ExecutorTx{tx: tx}, nil
}

func (e *ExecutorTx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	result, err := e.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (e *ExecutorTx) Query(ctx context.Context, sql string, args ...any) (driver.Rows, error) {
	rows, err := e.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &rowsWrapper{rows}, nil
}

func (e *ExecutorTx) QueryRow(ctx context.Context, sql string, args ...any) driver.Row {
	return e.tx.QueryRow(ctx, sql, args...)
}

func (e *ExecutorTx) Commit(ctx context.Context) error {
	return e.tx.Commit(ctx)
}

func (e *ExecutorTx) Rollback(ctx context.Context) error {
	return e.tx.Rollback(ctx)
}

// SendBatch sends all items in a single round trip within the transaction.
func (e *ExecutorTx) SendBatch(ctx context.Context, items []driver.BatchItem) ([]int64, error) {
	return sendBatch(ctx, e.tx.SendBatch, items)
}

// Tx returns the underlying pgx.Tx.
func (e *ExecutorTx) Tx() pgx.Tx {
	return e.tx
}

func sendBatch(
	ctx context.Context,
	send func(context.Context, *pgx.Batch) pgx.BatchResults,
	items []driver.BatchItem,
) (affected []int64, err error) {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(item.Query, item.Args...)
	}

	results := send(ctx, batch)
	defer func() {
		if closeErr := results.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	affected = make([]int64, len(items))
	for i := range items {
		result, execErr := results.Exec()
		if execErr != nil {
			return nil, execErr
		}
		affected[i] = result.RowsAffected()
	}
	return affected, nil
}

// rowsWrapper narrows pgx.Rows to driver.Rows.
type rowsWrapper struct {
	pgx.Rows
}

var (
	_ driver.Driver[pgx.Tx] = (*Driver)(nil)
	_ driver.BatchExecutor  = (*Executor)(nil)
	_ driver.BatchExecutor  = (*ExecutorTx)(nil)
)

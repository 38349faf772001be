package driver

import "context"

// Row is compatible with pgx.Row and *sql.Row.
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result set, compatible with pgx.Rows and *sql.Rows after
// wrapping.
type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// Executor provides database operations.
// It can represent either a connection pool or a transaction.
type Executor interface {
	// Begin starts a transaction, or a savepoint when called on a
	// transaction.
	Begin(ctx context.Context) (ExecutorTx, error)

	// Exec executes a statement and returns the number of rows affected.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// ExecutorTx is an Executor inside an active transaction.
type ExecutorTx interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BatchItem is a single statement in a batch.
type BatchItem struct {
	Query string
	Args  []any
}

// BatchExecutor is implemented by executors with native batching (pgx/v5).
// Stores fall back to sequential Exec calls otherwise.
type BatchExecutor interface {
	Executor
	SendBatch(ctx context.Context, items []BatchItem) ([]int64, error)
}

// ExecBatch runs items through SendBatch when exec supports it, and one by
// one otherwise.
func ExecBatch(ctx context.Context, exec Executor, items []BatchItem) error {
	if len(items) == 0 {
		return nil
	}
	if b, ok := exec.(BatchExecutor); ok {
		_, err := b.SendBatch(ctx, items)
		return err
	}
	for _, item := range items {
		if _, err := exec.Exec(ctx, item.Query, item.Args...); err != nil {
			return err
		}
	}
	return nil
}

package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/driver"
)

// ErrTxDone is returned when a finished transaction is used.
var ErrTxDone = errors.New("memory: transaction already committed or rolled back")

// Tx stages artifact saves. A root Tx applies them to the store on Commit;
// a nested Tx hands them to its parent.
type Tx struct {
	store  *Store
	parent *Tx

	mu      sync.Mutex
	pending []*artifact.Artifact
	done    bool
}

// Begin starts a nested transaction.
func (tx *Tx) Begin(ctx context.Context) (driver.ExecutorTx, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return nil, ErrTxDone
	}
	return tx.store.begin(tx), nil
}

func (tx *Tx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return 0, ErrSQLNotSupported
}

func (tx *Tx) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	return nil, ErrSQLNotSupported
}

func (tx *Tx) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	return errRow{ErrSQLNotSupported}
}

// Commit applies the staged saves.
func (tx *Tx) Commit(ctx context.Context) error {
	tx.mu.Lock()
	if tx.done {
		tx.mu.Unlock()
		return ErrTxDone
	}
	tx.done = true
	pending := tx.pending
	tx.pending = nil
	tx.mu.Unlock()

	if tx.parent != nil {
		return tx.parent.stage(pending)
	}
	tx.store.apply(pending)
	return nil
}

// Rollback discards the staged saves. Rolling back a finished transaction
// is a no-op.
func (tx *Tx) Rollback(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.done = true
	tx.pending = nil
	return nil
}

func (tx *Tx) stage(artifacts []*artifact.Artifact) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return ErrTxDone
	}
	tx.pending = append(tx.pending, artifacts...)
	return nil
}

// lookup finds a staged artifact in tx or its ancestors.
func (tx *Tx) lookup(id uuid.UUID) *artifact.Artifact {
	for t := tx; t != nil; t = t.parent {
		t.mu.Lock()
		for _, a := range t.pending {
			if a.ID == id {
				t.mu.Unlock()
				return a
			}
		}
		t.mu.Unlock()
	}
	return nil
}

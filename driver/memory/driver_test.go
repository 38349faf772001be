package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/driver/memory"
	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return memory.New().GetStore()
	})
}

func TestTx_CommitAndRollback(t *testing.T) {
	drv := memory.New()
	store := drv.GetStore()
	ctx := context.Background()

	tx, err := drv.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	txCtx := driver.WithExecutor(ctx, tx)

	a := storagetest.NewTableArtifact(t, "s", "staged")
	if err := store.SaveArtifacts(txCtx, []*artifact.Artifact{a}); err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}
	if _, err := store.GetArtifact(txCtx, a.ID); err != nil {
		t.Errorf("staged artifact not visible in tx: %v", err)
	}
	if _, err := store.GetArtifact(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("staged artifact visible outside tx: %v", err)
	}

	nested, err := tx.Begin(ctx)
	if err != nil {
		t.Fatalf("nested Begin: %v", err)
	}
	dropped := storagetest.NewTableArtifact(t, "s", "dropped")
	if err := store.SaveArtifacts(driver.WithExecutor(ctx, nested), []*artifact.Artifact{dropped}); err != nil {
		t.Fatalf("nested SaveArtifacts: %v", err)
	}
	if err := nested.Rollback(ctx); err != nil {
		t.Fatalf("nested Rollback: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := store.GetArtifact(ctx, a.ID); err != nil {
		t.Errorf("committed artifact missing: %v", err)
	}
	if _, err := store.GetArtifact(ctx, dropped.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("rolled back artifact present: %v", err)
	}
	if err := tx.Commit(ctx); !errors.Is(err, memory.ErrTxDone) {
		t.Errorf("second Commit err = %v", err)
	}
}

func TestExecutor_SQLNotSupported(t *testing.T) {
	exec := memory.New().GetExecutor()
	if _, err := exec.Exec(context.Background(), "SELECT 1"); !errors.Is(err, memory.ErrSQLNotSupported) {
		t.Errorf("err = %v", err)
	}
	var n int
	if err := exec.QueryRow(context.Background(), "SELECT 1").Scan(&n); !errors.Is(err, memory.ErrSQLNotSupported) {
		t.Errorf("err = %v", err)
	}
}

func TestListener(t *testing.T) {
	drv := memory.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l, err := drv.GetListener(ctx)
	if err != nil {
		t.Fatalf("GetListener: %v", err)
	}
	if err := l.Listen(ctx, driver.ChannelArtifactCreated); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	other, _ := drv.GetListener(ctx)
	defer other.Close(ctx)

	// Saves inside a transaction notify only on commit.
	tx, _ := drv.Begin(ctx)
	a := storagetest.NewTableArtifact(t, "s1", "hello")
	if err := drv.GetStore().SaveArtifacts(driver.WithExecutor(ctx, tx), []*artifact.Artifact{a}); err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, 20*time.Millisecond)
	if _, err := l.WaitForNotification(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("notified before commit: %v", err)
	}
	waitCancel()

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	n, err := l.WaitForNotification(ctx)
	if err != nil {
		t.Fatalf("WaitForNotification: %v", err)
	}
	event, err := driver.DecodeArtifactEvent(n.Payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.ID != a.ID.String() || event.Title != "hello" {
		t.Errorf("event = %+v", event)
	}

	// A listener that never called Listen receives nothing.
	waitCtx, waitCancel = context.WithTimeout(ctx, 20*time.Millisecond)
	defer waitCancel()
	if _, err := other.WaitForNotification(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("unsubscribed listener got: %v", err)
	}

	if err := l.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := l.WaitForNotification(ctx); err == nil {
		t.Error("expected error after Close")
	}
}

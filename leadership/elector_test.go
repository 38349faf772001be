package leadership

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/youssefsiam38/artifactpg/driver/memory"
	"github.com/youssefsiam38/artifactpg/storage"
)

func fastConfig() *Config {
	return &Config{
		LeaderTTL:       200 * time.Millisecond,
		ElectionPeriod:  20 * time.Millisecond,
		ReelectionDelay: 10 * time.Millisecond,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// failingStore counts calls and fails renewals once failRenew is set.
type failingStore struct {
	elect, reelect, resign atomic.Int32
	failRenew              atomic.Bool
}

func (s *failingStore) LeaderAttemptElect(ctx context.Context, p *storage.LeaderElectParams) (bool, error) {
	s.elect.Add(1)
	return true, nil
}

func (s *failingStore) LeaderAttemptReelect(ctx context.Context, p *storage.LeaderElectParams) (bool, error) {
	s.reelect.Add(1)
	if s.failRenew.Load() {
		return false, errors.New("connection reset")
	}
	return true, nil
}

func (s *failingStore) LeaderResign(ctx context.Context, leaderID string) error {
	s.resign.Add(1)
	return nil
}

func TestElector_StartStop(t *testing.T) {
	e := NewElector(memory.New().GetStore(), "a", fastConfig(), Callbacks{})
	ctx := context.Background()

	if err := e.Stop(ctx); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("Stop() before Start error = %v, want ErrNotStarted", err)
	}
	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := e.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
	waitFor(t, "leadership", e.IsLeader)

	if err := e.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if e.IsLeader() || e.IsRunning() {
		t.Error("elector still leading or running after Stop")
	}

	// A stopped elector can be started again.
	if err := e.Start(ctx); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	if err := e.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestElector_SingleLeaderAndFailover(t *testing.T) {
	store := memory.New().GetStore()
	ctx := context.Background()

	var aBecame, bBecame atomic.Int32
	a := NewElector(store, "a", fastConfig(), Callbacks{
		OnBecameLeader: func(context.Context) { aBecame.Add(1) },
	})
	b := NewElector(store, "b", fastConfig(), Callbacks{
		OnBecameLeader: func(context.Context) { bBecame.Add(1) },
	})

	if err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "a to lead", a.IsLeader)
	if err := b.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer b.Stop(ctx)

	time.Sleep(100 * time.Millisecond)
	if b.IsLeader() {
		t.Fatal("b took the lease while a renews it")
	}

	// Stopping a resigns, so b wins on its next attempt.
	if err := a.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "b to lead", b.IsLeader)

	if aBecame.Load() != 1 || bBecame.Load() != 1 {
		t.Errorf("OnBecameLeader calls a=%d b=%d, want 1 each", aBecame.Load(), bBecame.Load())
	}
}

func TestElector_Resign(t *testing.T) {
	store := &failingStore{}
	var lost atomic.Int32
	e := NewElector(store, "a", &Config{
		LeaderTTL:       time.Minute,
		ElectionPeriod:  time.Hour,
		ReelectionDelay: time.Hour,
	}, Callbacks{
		OnLostLeadership: func(context.Context) { lost.Add(1) },
	})
	ctx := context.Background()

	if err := e.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "leadership", e.IsLeader)

	if err := e.Resign(ctx); err != nil {
		t.Fatalf("Resign() error = %v", err)
	}
	if e.IsLeader() {
		t.Error("still leader after Resign")
	}
	if err := e.Resign(ctx); err != nil {
		t.Fatalf("second Resign() error = %v", err)
	}
	if err := e.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	if lost.Load() != 1 {
		t.Errorf("OnLostLeadership called %d times, want 1", lost.Load())
	}
	if store.resign.Load() != 1 {
		t.Errorf("LeaderResign called %d times, want 1", store.resign.Load())
	}
}

func TestElector_LosesLeadershipWhenRenewalFails(t *testing.T) {
	store := &failingStore{}
	var lost atomic.Int32
	e := NewElector(store, "a", fastConfig(), Callbacks{
		OnLostLeadership: func(context.Context) { lost.Add(1) },
	})
	ctx := context.Background()

	if err := e.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer e.Stop(ctx)
	waitFor(t, "leadership", e.IsLeader)
	waitFor(t, "a renewal", func() bool { return store.reelect.Load() > 0 })

	store.failRenew.Store(true)
	waitFor(t, "lost leadership", func() bool { return lost.Load() > 0 })
}

func TestNewElector_Defaults(t *testing.T) {
	e := NewElector(&failingStore{}, "a", &Config{LeaderTTL: time.Second}, Callbacks{})

	if e.config.LeaderTTL != time.Second {
		t.Errorf("LeaderTTL = %v, want 1s", e.config.LeaderTTL)
	}
	if e.config.ElectionPeriod != DefaultElectionPeriod {
		t.Errorf("ElectionPeriod = %v, want %v", e.config.ElectionPeriod, DefaultElectionPeriod)
	}
	if e.config.ReelectionDelay != DefaultReelectionDelay {
		t.Errorf("ReelectionDelay = %v, want %v", e.config.ReelectionDelay, DefaultReelectionDelay)
	}
}

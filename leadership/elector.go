// Package leadership elects one artifactpg instance to run shared
// background work such as the retention sweep.
//
// The lease lives in PostgreSQL (artifactpg_leader). A leader renews it every
// ReelectionDelay; if it stops renewing for longer than LeaderTTL another
// instance takes over on its next election attempt.
package leadership

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/youssefsiam38/artifactpg/storage"
)

// Default configuration values
const (
	DefaultLeaderTTL       = 30 * time.Second
	DefaultElectionPeriod  = 10 * time.Second
	DefaultReelectionDelay = 5 * time.Second
)

// LeaseStore is the part of storage.Store the elector uses.
type LeaseStore interface {
	LeaderAttemptElect(ctx context.Context, params *storage.LeaderElectParams) (bool, error)
	LeaderAttemptReelect(ctx context.Context, params *storage.LeaderElectParams) (bool, error)
	LeaderResign(ctx context.Context, leaderID string) error
}

// Logger receives election failures. *slog.Logger satisfies it.
type Logger interface {
	Warn(msg string, args ...any)
}

// Config holds configuration for the elector.
type Config struct {
	// LeaderTTL is how long a lease is valid without renewal.
	// Default: 30 seconds
	LeaderTTL time.Duration

	// ElectionPeriod is how often a follower tries to take the lease.
	// Default: 10 seconds
	ElectionPeriod time.Duration

	// ReelectionDelay is how often the leader renews. Keep it below LeaderTTL.
	// Default: 5 seconds
	ReelectionDelay time.Duration

	// Logger for election errors (optional).
	Logger Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LeaderTTL:       DefaultLeaderTTL,
		ElectionPeriod:  DefaultElectionPeriod,
		ReelectionDelay: DefaultReelectionDelay,
	}
}

func (c *Config) applyDefaults() {
	if c.LeaderTTL <= 0 {
		c.LeaderTTL = DefaultLeaderTTL
	}
	if c.ElectionPeriod <= 0 {
		c.ElectionPeriod = DefaultElectionPeriod
	}
	if c.ReelectionDelay <= 0 {
		c.ReelectionDelay = DefaultReelectionDelay
	}
}

// Callbacks run on leadership changes, on the election goroutine.
type Callbacks struct {
	// OnBecameLeader receives the context passed to Start.
	OnBecameLeader func(ctx context.Context)

	// OnLostLeadership runs when renewal fails, on Resign and on Stop.
	OnLostLeadership func(ctx context.Context)
}

// Elector campaigns for the lease on behalf of one instance.
type Elector struct {
	store      LeaseStore
	instanceID string
	config     Config
	callbacks  Callbacks

	mu       sync.RWMutex
	isLeader bool

	started atomic.Bool
	done    chan struct{}
	cancel  context.CancelFunc
}

// NewElector creates an elector for instanceID.
func NewElector(store LeaseStore, instanceID string, config *Config, callbacks Callbacks) *Elector {
	cfg := DefaultConfig()
	if config != nil {
		cfg = config
	}
	cfg.applyDefaults()

	return &Elector{
		store:      store,
		instanceID: instanceID,
		config:     *cfg,
		callbacks:  callbacks,
	}
}

// Start launches the election loop and returns immediately.
func (e *Elector) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	e.done = make(chan struct{})
	ctx, e.cancel = context.WithCancel(ctx)
	go e.run(ctx)
	return nil
}

// Stop ends the loop and resigns the lease if held.
func (e *Elector) Stop(ctx context.Context) error {
	if !e.started.Load() {
		return ErrNotStarted
	}

	e.cancel()
	<-e.done

	if e.setLeader(false) {
		resignCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := e.store.LeaderResign(resignCtx, e.instanceID); err != nil {
			e.warn("failed to resign leadership", err)
		}
		if e.callbacks.OnLostLeadership != nil {
			e.callbacks.OnLostLeadership(ctx)
		}
	}

	e.started.Store(false)
	return nil
}

// IsLeader reports whether this instance holds the lease.
func (e *Elector) IsLeader() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isLeader
}

// IsRunning reports whether the election loop is running.
func (e *Elector) IsRunning() bool {
	return e.started.Load()
}

// Resign gives up the lease. The loop keeps running and may win it back.
func (e *Elector) Resign(ctx context.Context) error {
	if !e.setLeader(false) {
		return nil
	}
	if err := e.store.LeaderResign(ctx, e.instanceID); err != nil {
		return err
	}
	if e.callbacks.OnLostLeadership != nil {
		e.callbacks.OnLostLeadership(ctx)
	}
	return nil
}

// setLeader updates the flag and returns the previous value.
func (e *Elector) setLeader(v bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	was := e.isLeader
	e.isLeader = v
	return was
}

func (e *Elector) run(ctx context.Context) {
	defer close(e.done)

	e.elect(ctx)
	for {
		delay := e.config.ElectionPeriod
		if e.IsLeader() {
			delay = e.config.ReelectionDelay
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if e.IsLeader() {
			e.renew(ctx)
		} else {
			e.elect(ctx)
		}
	}
}

func (e *Elector) params() *storage.LeaderElectParams {
	return &storage.LeaderElectParams{LeaderID: e.instanceID, TTL: e.config.LeaderTTL}
}

func (e *Elector) elect(ctx context.Context) {
	elected, err := e.store.LeaderAttemptElect(ctx, e.params())
	if err != nil {
		if ctx.Err() == nil {
			e.warn("leader election failed", err)
		}
		return
	}
	if elected && !e.setLeader(true) && e.callbacks.OnBecameLeader != nil {
		e.callbacks.OnBecameLeader(ctx)
	}
}

func (e *Elector) renew(ctx context.Context) {
	renewed, err := e.store.LeaderAttemptReelect(ctx, e.params())
	if err == nil && renewed {
		return
	}
	if err != nil && ctx.Err() == nil {
		e.warn("leader renewal failed", err)
	}
	if e.setLeader(false) && e.callbacks.OnLostLeadership != nil {
		e.callbacks.OnLostLeadership(ctx)
	}
}

func (e *Elector) warn(msg string, err error) {
	if e.config.Logger != nil {
		e.config.Logger.Warn(msg, "instance_id", e.instanceID, "error", err)
	}
}

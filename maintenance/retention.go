// Package maintenance runs the artifact retention sweep. Only the instance
// holding the leadership lease should run it.
package maintenance

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultSweepInterval is how often expired artifacts are removed.
const DefaultSweepInterval = 10 * time.Minute

// SweepStore is the part of storage.Store the sweeper uses.
type SweepStore interface {
	DeleteArtifactsBefore(ctx context.Context, before time.Time) (int, error)
	LeaderDeleteExpired(ctx context.Context) (int, error)
}

// RetentionConfig holds configuration for the sweeper.
type RetentionConfig struct {
	// MaxAge is how long artifacts are kept. Required.
	MaxAge time.Duration

	// Interval is the time between sweeps.
	// Default: 10 minutes
	Interval time.Duration

	// OnSweep is called after each sweep that removed something.
	OnSweep func(result *SweepResult)

	// OnError is called for every failed step of a sweep.
	OnError func(err error)
}

// SweepResult counts what one sweep removed.
type SweepResult struct {
	ArtifactsDeleted      int
	ExpiredLeadersCleaned int
	Errors                []error
}

// Sweeper periodically deletes artifacts older than MaxAge.
type Sweeper struct {
	store  SweepStore
	config RetentionConfig
	now    func() time.Time

	started atomic.Bool
	done    chan struct{}
	cancel  context.CancelFunc
}

// NewSweeper creates a sweeper. MaxAge must be positive.
func NewSweeper(store SweepStore, config RetentionConfig) (*Sweeper, error) {
	if config.MaxAge <= 0 {
		return nil, ErrInvalidConfig
	}
	if config.Interval <= 0 {
		config.Interval = DefaultSweepInterval
	}
	return &Sweeper{
		store:  store,
		config: config,
		now:    time.Now,
	}, nil
}

// Start sweeps once, then every Interval until Stop.
func (s *Sweeper) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	s.done = make(chan struct{})
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
	return nil
}

// Stop ends the sweep loop and waits for an in-flight sweep.
func (s *Sweeper) Stop(ctx context.Context) error {
	if !s.started.Load() {
		return ErrNotStarted
	}

	s.cancel()
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.started.Store(false)
	return nil
}

// IsRunning reports whether the sweep loop is running.
func (s *Sweeper) IsRunning() bool {
	return s.started.Load()
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	result := s.RunOnce(ctx)

	if s.config.OnSweep != nil && (result.ArtifactsDeleted > 0 || result.ExpiredLeadersCleaned > 0) {
		s.config.OnSweep(result)
	}
	if s.config.OnError != nil && ctx.Err() == nil {
		for _, err := range result.Errors {
			s.config.OnError(err)
		}
	}
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) *SweepResult {
	result := &SweepResult{}

	cutoff := s.now().Add(-s.config.MaxAge)
	n, err := s.store.DeleteArtifactsBefore(ctx, cutoff)
	if err != nil {
		result.Errors = append(result.Errors, err)
	} else {
		result.ArtifactsDeleted = n
	}

	n, err = s.store.LeaderDeleteExpired(ctx)
	if err != nil {
		result.Errors = append(result.Errors, err)
	} else {
		result.ExpiredLeadersCleaned = n
	}

	return result
}

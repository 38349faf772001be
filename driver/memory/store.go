package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/storage"
)

// Store implements storage.Store in memory.
type Store struct {
	hub *hub
	now func() time.Time

	mu        sync.RWMutex
	artifacts map[uuid.UUID]*artifact.Artifact
	leader    *lease
}

type lease struct {
	leaderID  string
	expiresAt time.Time
}

func newStore(h *hub) *Store {
	return &Store{
		hub:       h,
		now:       func() time.Time { return time.Now().UTC() },
		artifacts: make(map[uuid.UUID]*artifact.Artifact),
	}
}

func (s *Store) begin(parent *Tx) *Tx {
	return &Tx{store: s, parent: parent}
}

// txFromContext returns the memory transaction joined through
// driver.WithExecutor, if it belongs to this store.
func (s *Store) txFromContext(ctx context.Context) *Tx {
	if tx, ok := driver.ExecutorFromContext(ctx).(*Tx); ok && tx.store == s {
		return tx
	}
	return nil
}

// Migrate is a no-op.
func (s *Store) Migrate(ctx context.Context) error {
	return nil
}

// SaveArtifacts stores copies of artifacts, or stages them when ctx carries
// a transaction.
func (s *Store) SaveArtifacts(ctx context.Context, artifacts []*artifact.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	if err := storage.Prepare(artifacts, s.now()); err != nil {
		return err
	}

	copies := make([]*artifact.Artifact, len(artifacts))
	seen := make(map[uuid.UUID]bool, len(artifacts))
	s.mu.RLock()
	for i, a := range artifacts {
		if _, exists := s.artifacts[a.ID]; exists || seen[a.ID] {
			s.mu.RUnlock()
			return errors.New("memory: duplicate artifact id " + a.ID.String())
		}
		seen[a.ID] = true
		copies[i] = clone(a)
	}
	s.mu.RUnlock()

	if tx := s.txFromContext(ctx); tx != nil {
		return tx.stage(copies)
	}
	s.apply(copies)
	return nil
}

func (s *Store) apply(artifacts []*artifact.Artifact) {
	if len(artifacts) == 0 {
		return
	}
	s.mu.Lock()
	for _, a := range artifacts {
		s.artifacts[a.ID] = a
	}
	s.mu.Unlock()

	for _, a := range artifacts {
		s.hub.publish(driver.Notification{
			Channel: driver.ChannelArtifactCreated,
			Payload: driver.ArtifactEvent{
				ID:        a.ID.String(),
				SessionID: a.SessionID,
				Kind:      string(a.Kind),
				Title:     a.Title,
			}.Encode(),
		})
	}
}

// GetArtifact retrieves an artifact by ID.
func (s *Store) GetArtifact(ctx context.Context, id uuid.UUID) (*artifact.Artifact, error) {
	if tx := s.txFromContext(ctx); tx != nil {
		if a := tx.lookup(id); a != nil {
			return clone(a), nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(a), nil
}

// ListArtifacts filters, orders and pages the committed artifacts.
func (s *Store) ListArtifacts(ctx context.Context, params storage.ListParams) ([]*artifact.Artifact, int, error) {
	params = params.Normalize()
	search := strings.ToLower(params.Search)

	s.mu.RLock()
	var matched []*artifact.Artifact
	for _, a := range s.artifacts {
		if params.SessionID != "" && a.SessionID != params.SessionID {
			continue
		}
		if params.Kind != "" && a.Kind != params.Kind {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Title), search) {
			continue
		}
		matched = append(matched, a)
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *artifact.Artifact) int {
		var c int
		switch params.OrderBy {
		case storage.OrderByTitle:
			c = cmp.Compare(a.Title, b.Title)
		case storage.OrderByKind:
			c = cmp.Compare(a.Kind, b.Kind)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if params.OrderDir == "desc" {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.ID.String(), b.ID.String())
		}
		return c
	})

	total := len(matched)
	start := min(params.Offset, total)
	end := min(start+params.Limit, total)
	out := make([]*artifact.Artifact, 0, end-start)
	for _, a := range matched[start:end] {
		out = append(out, clone(a))
	}
	return out, total, nil
}

// DeleteArtifact removes an artifact.
func (s *Store) DeleteArtifact(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.artifacts, id)
	return nil
}

// ListSessions summarizes artifacts per session, most recent first.
func (s *Store) ListSessions(ctx context.Context) ([]storage.SessionSummary, error) {
	s.mu.RLock()
	bySession := make(map[string]*storage.SessionSummary)
	for _, a := range s.artifacts {
		ss, ok := bySession[a.SessionID]
		if !ok {
			ss = &storage.SessionSummary{SessionID: a.SessionID}
			bySession[a.SessionID] = ss
		}
		ss.ArtifactCount++
		if a.CreatedAt.After(ss.LastCreatedAt) {
			ss.LastCreatedAt = a.CreatedAt
		}
	}
	s.mu.RUnlock()

	out := make([]storage.SessionSummary, 0, len(bySession))
	for _, ss := range bySession {
		out = append(out, *ss)
	}
	slices.SortFunc(out, func(a, b storage.SessionSummary) int {
		if c := b.LastCreatedAt.Compare(a.LastCreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.SessionID, b.SessionID)
	})
	return out, nil
}

// DeleteArtifactsBefore removes artifacts created before the cutoff.
func (s *Store) DeleteArtifactsBefore(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, a := range s.artifacts {
		if a.CreatedAt.Before(before) {
			delete(s.artifacts, id)
			n++
		}
	}
	return n, nil
}

// LeaderAttemptElect takes the lease if it is free or expired.
func (s *Store) LeaderAttemptElect(ctx context.Context, params *storage.LeaderElectParams) (bool, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leader != nil && !s.leader.expiresAt.Before(now) {
		return false, nil
	}
	s.leader = &lease{leaderID: params.LeaderID, expiresAt: now.Add(params.TTL)}
	return true, nil
}

// LeaderAttemptReelect extends the lease held by params.LeaderID.
func (s *Store) LeaderAttemptReelect(ctx context.Context, params *storage.LeaderElectParams) (bool, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leader == nil || s.leader.leaderID != params.LeaderID {
		return false, nil
	}
	s.leader.expiresAt = now.Add(params.TTL)
	return true, nil
}

// LeaderResign releases the lease if leaderID holds it.
func (s *Store) LeaderResign(ctx context.Context, leaderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leader != nil && s.leader.leaderID == leaderID {
		s.leader = nil
	}
	return nil
}

// LeaderDeleteExpired removes an expired lease.
func (s *Store) LeaderDeleteExpired(ctx context.Context) (int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leader != nil && s.leader.expiresAt.Before(now) {
		s.leader = nil
		return 1, nil
	}
	return 0, nil
}

func clone(a *artifact.Artifact) *artifact.Artifact {
	c := *a
	c.Payload = slices.Clone(a.Payload)
	return &c
}

var _ storage.Store = (*Store)(nil)

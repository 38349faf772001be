// Package storage defines the persistence contract for artifacts. Drivers in
// the driver/ tree implement it for pgx/v5, database/sql and in-process use.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
)

// ErrNotFound is returned when an artifact does not exist.
var ErrNotFound = errors.New("storage: artifact not found")

// Store persists artifacts.
type Store interface {
	// Migrate creates the artifact table and indexes if they are missing.
	Migrate(ctx context.Context) error

	// SaveArtifacts inserts artifacts atomically. Missing IDs and creation
	// times are filled in place.
	SaveArtifacts(ctx context.Context, artifacts []*artifact.Artifact) error

	GetArtifact(ctx context.Context, id uuid.UUID) (*artifact.Artifact, error)

	// ListArtifacts returns one page of artifacts and the total number
	// matching the filters.
	ListArtifacts(ctx context.Context, params ListParams) ([]*artifact.Artifact, int, error)

	DeleteArtifact(ctx context.Context, id uuid.UUID) error

	// ListSessions summarizes the sessions that produced artifacts, most
	// recent first.
	ListSessions(ctx context.Context) ([]SessionSummary, error)

	// DeleteArtifactsBefore removes artifacts created before the cutoff and
	// returns how many were removed.
	DeleteArtifactsBefore(ctx context.Context, before time.Time) (int, error)

	// Leader election for the retention sweeper. Only one instance holds
	// the lease at a time.

	// LeaderAttemptElect takes the lease if it is free or expired.
	LeaderAttemptElect(ctx context.Context, params *LeaderElectParams) (bool, error)

	// LeaderAttemptReelect extends the lease if params.LeaderID still holds it.
	LeaderAttemptReelect(ctx context.Context, params *LeaderElectParams) (bool, error)

	LeaderResign(ctx context.Context, leaderID string) error

	// LeaderDeleteExpired removes an expired lease.
	LeaderDeleteExpired(ctx context.Context) (int, error)
}

// LeaderElectParams identifies the candidate and the lease length.
type LeaderElectParams struct {
	LeaderID string
	TTL      time.Duration
}

// ListParams filters and pages ListArtifacts.
type ListParams struct {
	SessionID string
	Kind      artifact.Kind
	// Search matches titles case-insensitively.
	Search   string
	Limit    int
	Offset   int
	OrderBy  string
	OrderDir string
}

// Sortable columns for ListParams.OrderBy.
const (
	OrderByCreatedAt = "created_at"
	OrderByTitle     = "title"
	OrderByKind      = "kind"
)

// DefaultListLimit applies when ListParams.Limit is not positive.
const DefaultListLimit = 50

// Normalize applies defaults and drops unknown ordering.
func (p ListParams) Normalize() ListParams {
	if p.Limit <= 0 {
		p.Limit = DefaultListLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	switch p.OrderBy {
	case OrderByCreatedAt, OrderByTitle, OrderByKind:
	default:
		p.OrderBy = OrderByCreatedAt
	}
	if p.OrderDir != "asc" {
		p.OrderDir = "desc"
	}
	return p
}

// SessionSummary describes one session's artifacts.
type SessionSummary struct {
	SessionID     string    `json:"session_id"`
	ArtifactCount int       `json:"artifact_count"`
	LastCreatedAt time.Time `json:"last_created_at"`
}

// Schema is the PostgreSQL DDL used by Migrate.
const Schema = `
CREATE TABLE IF NOT EXISTS artifactpg_artifacts (
	id          UUID PRIMARY KEY,
	session_id  TEXT NOT NULL,
	message_id  TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL CHECK (kind IN ('chart', 'table', 'mermaid')),
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS artifactpg_artifacts_session_idx
	ON artifactpg_artifacts (session_id, created_at DESC);

CREATE INDEX IF NOT EXISTS artifactpg_artifacts_kind_idx
	ON artifactpg_artifacts (kind, created_at DESC);

CREATE INDEX IF NOT EXISTS artifactpg_artifacts_created_idx
	ON artifactpg_artifacts (created_at);

CREATE TABLE IF NOT EXISTS artifactpg_leader (
	name       TEXT PRIMARY KEY DEFAULT 'default',
	leader_id  TEXT NOT NULL,
	elected_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
`

// Prepare fills in IDs and creation times before a save.
func Prepare(artifacts []*artifact.Artifact, now time.Time) error {
	for _, a := range artifacts {
		if a == nil {
			return errors.New("storage: nil artifact")
		}
		if !a.Kind.Valid() {
			return errors.New("storage: invalid artifact kind " + string(a.Kind))
		}
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
	}
	return nil
}

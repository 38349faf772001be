// Package sqlstore implements storage.Store in PostgreSQL over any
// driver.Executor. The pgxv5 and databasesql drivers both build their stores
// from it.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/storage"
)

// Source is the part of a driver the store needs.
type Source interface {
	GetExecutor() driver.Executor
}

// Store implements storage.Store.
type Store struct {
	src Source

	// isNoRows reports the driver's "no rows" error (pgx.ErrNoRows,
	// sql.ErrNoRows).
	isNoRows func(error) bool
	now      func() time.Time
}

// New creates a Store.
func New(src Source, isNoRows func(error) bool) *Store {
	return &Store{
		src:      src,
		isNoRows: isNoRows,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// getExecutor returns the transaction from ctx if present, otherwise the pool.
func (s *Store) getExecutor(ctx context.Context) driver.Executor {
	if exec := driver.ExecutorFromContext(ctx); exec != nil {
		return exec
	}
	return s.src.GetExecutor()
}

// Migrate creates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.getExecutor(ctx).Exec(ctx, storage.Schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

const insertArtifact = `
	INSERT INTO artifactpg_artifacts
		(id, session_id, message_id, kind, title, description, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
`

const notifyArtifact = `SELECT pg_notify($1, $2)`

// SaveArtifacts inserts artifacts in one transaction. pg_notify runs inside
// the same transaction, so listeners hear about artifacts only after commit.
func (s *Store) SaveArtifacts(ctx context.Context, artifacts []*artifact.Artifact) (err error) {
	if len(artifacts) == 0 {
		return nil
	}
	if err := storage.Prepare(artifacts, s.now()); err != nil {
		return err
	}

	tx, err := s.getExecutor(ctx).Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	items := make([]driver.BatchItem, 0, len(artifacts)*2)
	for _, a := range artifacts {
		items = append(items, driver.BatchItem{
			Query: insertArtifact,
			Args: []any{
				a.ID, a.SessionID, a.MessageID, string(a.Kind),
				a.Title, a.Description, string(a.Payload), a.CreatedAt,
			},
		})
	}
	for _, a := range artifacts {
		event := driver.ArtifactEvent{
			ID:        a.ID.String(),
			SessionID: a.SessionID,
			Kind:      string(a.Kind),
			Title:     a.Title,
		}
		items = append(items, driver.BatchItem{
			Query: notifyArtifact,
			Args:  []any{driver.ChannelArtifactCreated, event.Encode()},
		})
	}

	if err = driver.ExecBatch(ctx, tx, items); err != nil {
		return fmt.Errorf("failed to save artifacts: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit artifacts: %w", err)
	}
	return nil
}

const artifactColumns = `id, session_id, message_id, kind, title, description, payload, created_at`

// GetArtifact retrieves an artifact by ID.
func (s *Store) GetArtifact(ctx context.Context, id uuid.UUID) (*artifact.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifactpg_artifacts WHERE id = $1`

	a, err := scanArtifact(s.getExecutor(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if s.isNoRows(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return a, nil
}

// ListArtifacts returns a filtered page of artifacts and the total count.
func (s *Store) ListArtifacts(ctx context.Context, params storage.ListParams) ([]*artifact.Artifact, int, error) {
	params = params.Normalize()
	where, args := buildWhere(params)
	exec := s.getExecutor(ctx)

	var total int
	countQuery := `SELECT COUNT(*) FROM artifactpg_artifacts` + where
	if err := exec.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count artifacts: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM artifactpg_artifacts%s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		artifactColumns, where, params.OrderBy, strings.ToUpper(params.OrderDir),
		len(args)+1, len(args)+2,
	)
	rows, err := exec.Query(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var out []*artifact.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan artifact: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate artifacts: %w", err)
	}
	return out, total, nil
}

func buildWhere(p storage.ListParams) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if p.SessionID != "" {
		args = append(args, p.SessionID)
		conds = append(conds, fmt.Sprintf("session_id = $%d", len(args)))
	}
	if p.Kind != "" {
		args = append(args, string(p.Kind))
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if p.Search != "" {
		args = append(args, p.Search)
		conds = append(conds, fmt.Sprintf("title ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// DeleteArtifact removes an artifact.
func (s *Store) DeleteArtifact(ctx context.Context, id uuid.UUID) error {
	n, err := s.getExecutor(ctx).Exec(ctx, `DELETE FROM artifactpg_artifacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListSessions summarizes artifacts per session.
func (s *Store) ListSessions(ctx context.Context) ([]storage.SessionSummary, error) {
	query := `
		SELECT session_id, COUNT(*), MAX(created_at)
		FROM artifactpg_artifacts
		GROUP BY session_id
		ORDER BY MAX(created_at) DESC
	`
	rows, err := s.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []storage.SessionSummary
	for rows.Next() {
		var ss storage.SessionSummary
		if err := rows.Scan(&ss.SessionID, &ss.ArtifactCount, &ss.LastCreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return out, nil
}

// DeleteArtifactsBefore removes artifacts created before the cutoff.
func (s *Store) DeleteArtifactsBefore(ctx context.Context, before time.Time) (int, error) {
	n, err := s.getExecutor(ctx).Exec(ctx, `DELETE FROM artifactpg_artifacts WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old artifacts: %w", err)
	}
	return int(n), nil
}

// LeaderAttemptElect takes the lease when no row exists or the current one
// has expired.
func (s *Store) LeaderAttemptElect(ctx context.Context, params *storage.LeaderElectParams) (bool, error) {
	now := s.now()
	query := `
		INSERT INTO artifactpg_leader (name, leader_id, elected_at, expires_at)
		VALUES ('default', $1, $2, $3)
		ON CONFLICT (name) DO UPDATE
			SET leader_id = EXCLUDED.leader_id,
				elected_at = EXCLUDED.elected_at,
				expires_at = EXCLUDED.expires_at
			WHERE artifactpg_leader.expires_at < EXCLUDED.elected_at
	`
	n, err := s.getExecutor(ctx).Exec(ctx, query, params.LeaderID, now, now.Add(params.TTL))
	if err != nil {
		return false, fmt.Errorf("failed to attempt election: %w", err)
	}
	return n > 0, nil
}

// LeaderAttemptReelect extends the lease held by params.LeaderID.
func (s *Store) LeaderAttemptReelect(ctx context.Context, params *storage.LeaderElectParams) (bool, error) {
	now := s.now()
	query := `
		UPDATE artifactpg_leader
		SET elected_at = $2, expires_at = $3
		WHERE name = 'default' AND leader_id = $1
	`
	n, err := s.getExecutor(ctx).Exec(ctx, query, params.LeaderID, now, now.Add(params.TTL))
	if err != nil {
		return false, fmt.Errorf("failed to attempt reelection: %w", err)
	}
	return n > 0, nil
}

// LeaderResign releases the lease if leaderID holds it.
func (s *Store) LeaderResign(ctx context.Context, leaderID string) error {
	_, err := s.getExecutor(ctx).Exec(ctx, `DELETE FROM artifactpg_leader WHERE name = 'default' AND leader_id = $1`, leaderID)
	if err != nil {
		return fmt.Errorf("failed to resign leadership: %w", err)
	}
	return nil
}

// LeaderDeleteExpired removes an expired lease.
func (s *Store) LeaderDeleteExpired(ctx context.Context) (int, error) {
	n, err := s.getExecutor(ctx).Exec(ctx, `DELETE FROM artifactpg_leader WHERE expires_at < $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired leader: %w", err)
	}
	return int(n), nil
}

func scanArtifact(row driver.Row) (*artifact.Artifact, error) {
	var (
		a       artifact.Artifact
		kind    string
		payload []byte
	)
	if err := row.Scan(&a.ID, &a.SessionID, &a.MessageID, &kind, &a.Title, &a.Description, &payload, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Kind = artifact.Kind(kind)
	a.Payload = payload
	return &a, nil
}

// IsNoRowsFunc adapts a sentinel "no rows" error to the matcher New expects.
func IsNoRowsFunc(sentinel error) func(error) bool {
	return func(err error) bool {
		return errors.Is(err, sentinel)
	}
}

var _ storage.Store = (*Store)(nil)

// Package storagetest runs a shared behavioral suite against storage.Store
// implementations.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/diagram"
	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/table"
)

// Factory returns an empty, migrated store for one subtest.
type Factory func(t *testing.T) storage.Store

// NewTableArtifact builds a small table artifact for sessionID.
func NewTableArtifact(t *testing.T, sessionID, title string) *artifact.Artifact {
	t.Helper()
	a, err := artifact.NewTable(&table.Payload{
		Title: title,
		Data: []table.Row{
			table.NewRow("name", "a", "value", 3),
			table.NewRow("name", "b", "value", 1),
		},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	a.SessionID = sessionID
	return a
}

// NewDiagramArtifact builds a mermaid artifact for sessionID.
func NewDiagramArtifact(t *testing.T, sessionID, title string) *artifact.Artifact {
	t.Helper()
	a, err := artifact.NewDiagram(&diagram.Diagram{Title: title, Source: "graph TD\n  A --> B"})
	if err != nil {
		t.Fatalf("NewDiagram: %v", err)
	}
	a.SessionID = sessionID
	return a
}

// Run executes the suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("SaveAndGet", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		a := NewTableArtifact(t, "session-1", "Quarterly Sales")
		a.MessageID = "msg-1"
		if err := store.SaveArtifacts(ctx, []*artifact.Artifact{a}); err != nil {
			t.Fatalf("SaveArtifacts: %v", err)
		}
		if a.CreatedAt.IsZero() {
			t.Error("CreatedAt was not filled")
		}

		got, err := store.GetArtifact(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetArtifact: %v", err)
		}
		if got.Title != "Quarterly Sales" || got.Kind != artifact.KindTable {
			t.Errorf("got %q/%s", got.Title, got.Kind)
		}
		if got.SessionID != "session-1" || got.MessageID != "msg-1" {
			t.Errorf("got session %q message %q", got.SessionID, got.MessageID)
		}
		p, err := got.Table()
		if err != nil {
			t.Fatalf("Table: %v", err)
		}
		if len(p.Data) != 2 {
			t.Errorf("rows = %d, want 2", len(p.Data))
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetArtifact(context.Background(), uuid.New())
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("SaveRejectsInvalidKind", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		good := NewTableArtifact(t, "s", "good")
		bad := NewTableArtifact(t, "s", "bad")
		bad.Kind = "video"
		if err := store.SaveArtifacts(ctx, []*artifact.Artifact{good, bad}); err == nil {
			t.Fatal("expected error for invalid kind")
		}
		if _, total, _ := store.ListArtifacts(ctx, storage.ListParams{}); total != 0 {
			t.Errorf("total = %d after failed save, want 0", total)
		}
	})

	t.Run("ListFilters", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		arts := []*artifact.Artifact{
			NewTableArtifact(t, "s1", "Revenue by region"),
			NewDiagramArtifact(t, "s1", "Service map"),
			NewTableArtifact(t, "s2", "Headcount"),
		}
		for i, a := range arts {
			a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		}
		if err := store.SaveArtifacts(ctx, arts); err != nil {
			t.Fatalf("SaveArtifacts: %v", err)
		}

		tests := []struct {
			name   string
			params storage.ListParams
			want   []string
			total  int
		}{
			{"all newest first", storage.ListParams{}, []string{"Headcount", "Service map", "Revenue by region"}, 3},
			{"oldest first", storage.ListParams{OrderDir: "asc"}, []string{"Revenue by region", "Service map", "Headcount"}, 3},
			{"session", storage.ListParams{SessionID: "s1"}, []string{"Service map", "Revenue by region"}, 2},
			{"kind", storage.ListParams{Kind: artifact.KindTable}, []string{"Headcount", "Revenue by region"}, 2},
			{"search", storage.ListParams{Search: "REVENUE"}, []string{"Revenue by region"}, 1},
			{"by title", storage.ListParams{OrderBy: storage.OrderByTitle, OrderDir: "asc"}, []string{"Headcount", "Revenue by region", "Service map"}, 3},
			{"paged", storage.ListParams{Limit: 1, Offset: 1}, []string{"Service map"}, 3},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, total, err := store.ListArtifacts(ctx, tt.params)
				if err != nil {
					t.Fatalf("ListArtifacts: %v", err)
				}
				if total != tt.total {
					t.Errorf("total = %d, want %d", total, tt.total)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("len = %d, want %d", len(got), len(tt.want))
				}
				for i, a := range got {
					if a.Title != tt.want[i] {
						t.Errorf("[%d] = %q, want %q", i, a.Title, tt.want[i])
					}
				}
			})
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		a := NewTableArtifact(t, "s", "doomed")
		if err := store.SaveArtifacts(ctx, []*artifact.Artifact{a}); err != nil {
			t.Fatalf("SaveArtifacts: %v", err)
		}
		if err := store.DeleteArtifact(ctx, a.ID); err != nil {
			t.Fatalf("DeleteArtifact: %v", err)
		}
		if err := store.DeleteArtifact(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListSessions", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		a1 := NewTableArtifact(t, "old", "one")
		a1.CreatedAt = base
		a2 := NewTableArtifact(t, "new", "two")
		a2.CreatedAt = base.Add(time.Hour)
		a3 := NewDiagramArtifact(t, "new", "three")
		a3.CreatedAt = base.Add(2 * time.Hour)
		if err := store.SaveArtifacts(ctx, []*artifact.Artifact{a1, a2, a3}); err != nil {
			t.Fatalf("SaveArtifacts: %v", err)
		}

		sessions, err := store.ListSessions(ctx)
		if err != nil {
			t.Fatalf("ListSessions: %v", err)
		}
		if len(sessions) != 2 {
			t.Fatalf("len = %d, want 2", len(sessions))
		}
		if sessions[0].SessionID != "new" || sessions[0].ArtifactCount != 2 {
			t.Errorf("first = %+v", sessions[0])
		}
		if !sessions[0].LastCreatedAt.Equal(a3.CreatedAt) {
			t.Errorf("LastCreatedAt = %v, want %v", sessions[0].LastCreatedAt, a3.CreatedAt)
		}
	})

	t.Run("DeleteArtifactsBefore", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		old := NewTableArtifact(t, "s", "old")
		old.CreatedAt = cutoff.Add(-time.Hour)
		fresh := NewTableArtifact(t, "s", "fresh")
		fresh.CreatedAt = cutoff.Add(time.Hour)
		if err := store.SaveArtifacts(ctx, []*artifact.Artifact{old, fresh}); err != nil {
			t.Fatalf("SaveArtifacts: %v", err)
		}

		n, err := store.DeleteArtifactsBefore(ctx, cutoff)
		if err != nil {
			t.Fatalf("DeleteArtifactsBefore: %v", err)
		}
		if n != 1 {
			t.Errorf("deleted %d, want 1", n)
		}
		if _, err := store.GetArtifact(ctx, old.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("old artifact err = %v, want ErrNotFound", err)
		}
		if _, err := store.GetArtifact(ctx, fresh.ID); err != nil {
			t.Errorf("fresh artifact: %v", err)
		}
	})

	t.Run("LeaderLease", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		a := &storage.LeaderElectParams{LeaderID: "a", TTL: time.Minute}
		b := &storage.LeaderElectParams{LeaderID: "b", TTL: time.Minute}

		if ok, err := store.LeaderAttemptElect(ctx, a); err != nil || !ok {
			t.Fatalf("a elect = %v, %v; want true", ok, err)
		}
		if ok, err := store.LeaderAttemptElect(ctx, b); err != nil || ok {
			t.Fatalf("b elect = %v, %v; want false while a holds the lease", ok, err)
		}
		if ok, err := store.LeaderAttemptReelect(ctx, b); err != nil || ok {
			t.Fatalf("b reelect = %v, %v; want false", ok, err)
		}
		if ok, err := store.LeaderAttemptReelect(ctx, a); err != nil || !ok {
			t.Fatalf("a reelect = %v, %v; want true", ok, err)
		}
		if n, err := store.LeaderDeleteExpired(ctx); err != nil || n != 0 {
			t.Fatalf("LeaderDeleteExpired = %d, %v; want 0", n, err)
		}
		if err := store.LeaderResign(ctx, "a"); err != nil {
			t.Fatalf("LeaderResign: %v", err)
		}
		if ok, err := store.LeaderAttemptElect(ctx, b); err != nil || !ok {
			t.Fatalf("b elect after resign = %v, %v; want true", ok, err)
		}
	})

	t.Run("LeaderLeaseExpires", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		short := &storage.LeaderElectParams{LeaderID: "a", TTL: -time.Second}
		if ok, err := store.LeaderAttemptElect(ctx, short); err != nil || !ok {
			t.Fatalf("a elect = %v, %v; want true", ok, err)
		}
		b := &storage.LeaderElectParams{LeaderID: "b", TTL: time.Minute}
		if ok, err := store.LeaderAttemptElect(ctx, b); err != nil || !ok {
			t.Fatalf("b elect over expired lease = %v, %v; want true", ok, err)
		}
	})
}

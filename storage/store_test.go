package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
)

func TestListParamsNormalize(t *testing.T) {
	p := ListParams{Limit: -1, Offset: -5, OrderBy: "payload; DROP TABLE", OrderDir: "sideways"}.Normalize()

	if p.Limit != DefaultListLimit {
		t.Errorf("Limit = %d, want %d", p.Limit, DefaultListLimit)
	}
	if p.Offset != 0 {
		t.Errorf("Offset = %d, want 0", p.Offset)
	}
	if p.OrderBy != OrderByCreatedAt {
		t.Errorf("OrderBy = %q, want %q", p.OrderBy, OrderByCreatedAt)
	}
	if p.OrderDir != "desc" {
		t.Errorf("OrderDir = %q, want desc", p.OrderDir)
	}

	kept := ListParams{Limit: 5, OrderBy: OrderByTitle, OrderDir: "asc"}.Normalize()
	if kept.Limit != 5 || kept.OrderBy != OrderByTitle || kept.OrderDir != "asc" {
		t.Errorf("Normalize() changed valid params: %+v", kept)
	}
}

func TestPrepare(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	existing := uuid.New()
	arts := []*artifact.Artifact{
		{Kind: artifact.KindTable},
		{ID: existing, Kind: artifact.KindChart, CreatedAt: now.Add(-time.Hour)},
	}

	if err := Prepare(arts, now); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if arts[0].ID == uuid.Nil || !arts[0].CreatedAt.Equal(now) {
		t.Errorf("first artifact not prepared: %+v", arts[0])
	}
	if arts[1].ID != existing || !arts[1].CreatedAt.Equal(now.Add(-time.Hour)) {
		t.Errorf("second artifact should keep its ID and time: %+v", arts[1])
	}

	if err := Prepare([]*artifact.Artifact{{Kind: "video"}}, now); err == nil {
		t.Error("expected error for invalid kind")
	}
	if err := Prepare([]*artifact.Artifact{nil}, now); err == nil {
		t.Error("expected error for nil artifact")
	}
}

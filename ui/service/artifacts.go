package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/storage"
)

// ListArtifacts returns a page of artifact summaries.
func (s *Service) ListArtifacts(ctx context.Context, params ArtifactListParams) (*ArtifactList, error) {
	arts, total, err := s.store.ListArtifacts(ctx, storage.ListParams{
		SessionID: params.SessionID,
		Kind:      params.Kind,
		Search:    params.Search,
		Limit:     params.Limit,
		Offset:    params.Offset,
		OrderBy:   params.OrderBy,
		OrderDir:  params.OrderDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	return &ArtifactList{
		Artifacts:  summarizeAll(arts),
		TotalCount: total,
		HasMore:    params.Offset+len(arts) < total,
	}, nil
}

// GetArtifact returns the stored artifact.
func (s *Service) GetArtifact(ctx context.Context, id uuid.UUID) (*artifact.Artifact, error) {
	a, err := s.store.GetArtifact(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// DetailOptions carries the per-request view state of an artifact.
type DetailOptions struct {
	// Viewer scopes the panel state.
	Viewer string

	// Table is the table state, used for table artifacts.
	Table TableQuery

	// ChartType switches a chart artifact to another available type.
	ChartType string
}

// GetArtifactDetail decodes an artifact's payload for display.
func (s *Service) GetArtifactDetail(ctx context.Context, id uuid.UUID, opts DetailOptions) (*ArtifactDetail, error) {
	a, err := s.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ArtifactDetail{
		Artifact: a,
		Open:     s.PanelOpen(opts.Viewer, id),
	}

	switch a.Kind {
	case artifact.KindTable:
		detail.Table, err = s.tableData(a, opts.Table)
	case artifact.KindChart:
		detail.Chart, err = s.chart(a, opts.ChartType)
	case artifact.KindDiagram:
		detail.Diagram, err = diagramData(a)
	}
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// DeleteArtifact removes an artifact.
func (s *Service) DeleteArtifact(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteArtifact(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}

// ListSessions summarizes the sessions that produced artifacts.
func (s *Service) ListSessions(ctx context.Context) ([]storage.SessionSummary, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

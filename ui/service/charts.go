package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/chart"
)

// GetChart decodes a chart artifact, switched to chartType when it is one
// of the chart's available types.
func (s *Service) GetChart(ctx context.Context, id uuid.UUID, chartType string) (*chart.Chart, error) {
	a, err := s.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.chart(a, chartType)
}

func (s *Service) chart(a *artifact.Artifact, chartType string) (*chart.Chart, error) {
	c, err := a.Chart()
	if err != nil {
		return nil, fmt.Errorf("failed to decode chart %s: %w", a.ID, err)
	}
	if chartType != "" {
		if err := c.SetType(chart.Type(chartType)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RenderChart draws a chart artifact as an SVG or PNG image.
func (s *Service) RenderChart(ctx context.Context, w io.Writer, id uuid.UUID, chartType string, f chart.Format) error {
	c, err := s.GetChart(ctx, id, chartType)
	if err != nil {
		return err
	}
	return c.Render(w, f)
}

// GetDiagram decodes a mermaid artifact.
func (s *Service) GetDiagram(ctx context.Context, id uuid.UUID) (*DiagramData, error) {
	a, err := s.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}
	return diagramData(a)
}

func diagramData(a *artifact.Artifact) (*DiagramData, error) {
	d, err := a.Diagram()
	if err != nil {
		return nil, fmt.Errorf("failed to decode diagram %s: %w", a.ID, err)
	}
	return &DiagramData{Diagram: d, TypeLabel: d.Type.Label()}, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/chart"
	"github.com/youssefsiam38/artifactpg/download"
)

// Export formats.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatMermaid = "mmd"
)

// ExportFormats lists the formats each kind can be exported in.
var ExportFormats = map[artifact.Kind][]string{
	artifact.KindTable:   {FormatCSV, FormatJSON, FormatParquet},
	artifact.KindChart:   {FormatCSV, FormatSVG, FormatPNG},
	artifact.KindDiagram: {FormatMermaid},
}

// ExportRequest selects what to export.
type ExportRequest struct {
	Format string

	// Table state. Exports ignore pagination but keep the filter and sort.
	Table TableQuery

	// ChartType renders a chart image in another available type.
	ChartType string
}

// Export produces a downloadable file of an artifact.
func (s *Service) Export(ctx context.Context, id uuid.UUID, req ExportRequest) (download.File, error) {
	a, err := s.GetArtifact(ctx, id)
	if err != nil {
		return download.File{}, err
	}

	format := strings.ToLower(req.Format)
	switch a.Kind {
	case artifact.KindTable:
		return s.exportTable(a, req.Table, format)
	case artifact.KindChart:
		return s.exportChart(a, req.ChartType, format)
	case artifact.KindDiagram:
		if format != FormatMermaid {
			break
		}
		d, err := diagramData(a)
		if err != nil {
			return download.File{}, err
		}
		return d.ExportSource(), nil
	}
	return download.File{}, fmt.Errorf("%w: %s as %q", ErrUnsupportedFormat, a.Kind, req.Format)
}

func (s *Service) exportTable(a *artifact.Artifact, q TableQuery, format string) (download.File, error) {
	p, err := a.Table()
	if err != nil {
		return download.File{}, fmt.Errorf("failed to decode table %s: %w", a.ID, err)
	}
	v := s.View(p, q)

	switch format {
	case FormatCSV:
		return v.ExportCSV(), nil
	case FormatJSON:
		return v.ExportJSON()
	case FormatParquet:
		return v.ExportParquet()
	}
	return download.File{}, fmt.Errorf("%w: table as %q", ErrUnsupportedFormat, format)
}

func (s *Service) exportChart(a *artifact.Artifact, chartType, format string) (download.File, error) {
	c, err := s.chart(a, chartType)
	if err != nil {
		return download.File{}, err
	}

	switch format {
	case FormatCSV:
		return c.ExportCSV(), nil
	case FormatSVG:
		return c.ExportImage(chart.SVG)
	case FormatPNG:
		return c.ExportImage(chart.PNG)
	}
	return download.File{}, fmt.Errorf("%w: chart as %q", ErrUnsupportedFormat, format)
}

// ExportDiagramSVG wraps an SVG rendered in the browser for download.
func (s *Service) ExportDiagramSVG(ctx context.Context, id uuid.UUID, svg []byte) (download.File, error) {
	d, err := s.GetDiagram(ctx, id)
	if err != nil {
		return download.File{}, err
	}
	return d.ExportSVG(svg)
}

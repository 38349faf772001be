// Package artifact defines the persisted visualization record shared by the
// extractor, the stores and the UI.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/chart"
	"github.com/youssefsiam38/artifactpg/diagram"
	"github.com/youssefsiam38/artifactpg/table"
)

// Kind is the visualization kind.
type Kind string

const (
	KindChart   Kind = "chart"
	KindTable   Kind = "table"
	KindDiagram Kind = "mermaid"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindChart, KindTable, KindDiagram}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindChart, KindTable, KindDiagram:
		return true
	}
	return false
}

// Component returns the UI component name the kind is pushed under.
func (k Kind) Component() string {
	switch k {
	case KindChart:
		return "dynamicChart"
	case KindTable:
		return "dataTable"
	case KindDiagram:
		return "mermaidDiagram"
	}
	return ""
}

// ErrKindMismatch is returned when a payload accessor does not match the
// artifact kind.
var ErrKindMismatch = errors.New("artifact: kind mismatch")

// Artifact is one visualization extracted from an assistant message.
type Artifact struct {
	ID          uuid.UUID       `json:"id"`
	SessionID   string          `json:"session_id"`
	MessageID   string          `json:"message_id,omitempty"`
	Kind        Kind            `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewTable wraps a table payload.
func NewTable(p *table.Payload) (*Artifact, error) {
	return newArtifact(KindTable, p.Title, p.Description, p)
}

// NewChart wraps a chart.
func NewChart(c *chart.Chart) (*Artifact, error) {
	return newArtifact(KindChart, c.Title, c.Description, c)
}

// NewDiagram wraps a diagram.
func NewDiagram(d *diagram.Diagram) (*Artifact, error) {
	return newArtifact(KindDiagram, d.Title, d.Description, d)
}

func newArtifact(kind Kind, title, desc string, payload any) (*Artifact, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", kind, err)
	}
	return &Artifact{
		ID:          uuid.New(),
		Kind:        kind,
		Title:       title,
		Description: desc,
		Payload:     data,
	}, nil
}

// Table decodes a table artifact.
func (a *Artifact) Table() (*table.Payload, error) {
	if a.Kind != KindTable {
		return nil, fmt.Errorf("%w: %s is not a table", ErrKindMismatch, a.Kind)
	}
	return table.ParsePayload(a.Payload)
}

// Chart decodes a chart artifact.
func (a *Artifact) Chart() (*chart.Chart, error) {
	if a.Kind != KindChart {
		return nil, fmt.Errorf("%w: %s is not a chart", ErrKindMismatch, a.Kind)
	}
	return chart.Parse(a.Payload)
}

// Diagram decodes a mermaid artifact.
func (a *Artifact) Diagram() (*diagram.Diagram, error) {
	if a.Kind != KindDiagram {
		return nil, fmt.Errorf("%w: %s is not a diagram", ErrKindMismatch, a.Kind)
	}
	return diagram.Parse(a.Payload)
}

// Summary is the one-line teaser shown on a collapsed artifact card, such
// as "12 rows" or "Line Chart".
func (a *Artifact) Summary() string {
	switch a.Kind {
	case KindTable:
		if p, err := a.Table(); err == nil {
			if len(p.Data) == 1 {
				return "1 row"
			}
			return fmt.Sprintf("%d rows", len(p.Data))
		}
	case KindChart:
		if c, err := a.Chart(); err == nil {
			return c.Type.Label()
		}
	case KindDiagram:
		if d, err := a.Diagram(); err == nil {
			return d.Type.Label()
		}
	}
	return ""
}

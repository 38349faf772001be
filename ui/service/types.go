package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/chart"
	"github.com/youssefsiam38/artifactpg/diagram"
	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/table"
)

// Validation constants for query parameters
const (
	// MaxPageLimit is the maximum allowed list page size
	MaxPageLimit = 1000
	// MinPageLimit is the minimum allowed list page size
	MinPageLimit = 1
)

// AllowedArtifactOrderBy is the whitelist of valid OrderBy values
var AllowedArtifactOrderBy = map[string]bool{
	"":                       true, // empty means default ordering
	storage.OrderByCreatedAt: true,
	storage.OrderByTitle:     true,
	storage.OrderByKind:      true,
}

// AllowedOrderDir is the whitelist of valid OrderDir values
var AllowedOrderDir = map[string]bool{
	"":     true,
	"asc":  true,
	"desc": true,
}

// ValidateOrderBy validates an OrderBy value against the allowed whitelist.
// Returns the validated value or an empty string if invalid.
func ValidateOrderBy(value string, allowed map[string]bool) string {
	if allowed[value] {
		return value
	}
	return ""
}

// ValidateOrderDir validates an OrderDir value.
func ValidateOrderDir(value string) string {
	if AllowedOrderDir[value] {
		return value
	}
	return ""
}

// ValidateLimit clamps limit to [MinPageLimit, MaxPageLimit].
func ValidateLimit(limit int) int {
	if limit < MinPageLimit {
		return MinPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// ValidateOffset ensures offset is non-negative.
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// ValidateKind returns k if it is a known artifact kind, otherwise "".
func ValidateKind(k string) artifact.Kind {
	if kind := artifact.Kind(k); kind.Valid() {
		return kind
	}
	return ""
}

// ArtifactListParams filters the artifact list.
type ArtifactListParams struct {
	SessionID string
	Kind      artifact.Kind
	Search    string
	Limit     int
	Offset    int
	OrderBy   string
	OrderDir  string
}

// ArtifactSummary is one row of the artifact list.
type ArtifactSummary struct {
	ID        uuid.UUID     `json:"id"`
	SessionID string        `json:"session_id"`
	Kind      artifact.Kind `json:"kind"`
	Component string        `json:"component"`
	Title     string        `json:"title"`
	Summary   string        `json:"summary"`
	CreatedAt time.Time     `json:"created_at"`
}

// ArtifactList is a page of artifact summaries.
type ArtifactList struct {
	Artifacts  []*ArtifactSummary `json:"artifacts"`
	TotalCount int                `json:"total_count"`
	HasMore    bool               `json:"has_more"`
}

// ArtifactDetail is a single artifact with its decoded payload. Exactly
// one of Table, Chart or Diagram is set.
type ArtifactDetail struct {
	Artifact *artifact.Artifact `json:"artifact"`
	Open     bool               `json:"open"`

	Table   *TableData   `json:"table,omitempty"`
	Chart   *chart.Chart `json:"chart,omitempty"`
	Diagram *DiagramData `json:"diagram,omitempty"`
}

// TableQuery is the table state carried in query parameters.
type TableQuery struct {
	Search string `json:"q,omitempty"`
	Sort   string `json:"sort,omitempty"`
	Dir    string `json:"dir,omitempty"`
	Page   int    `json:"page,omitempty"`
}

// TableData is one rendered page of a table artifact.
type TableData struct {
	ArtifactID  uuid.UUID       `json:"artifact_id"`
	Title       string          `json:"title"`
	Columns     []table.Column  `json:"columns"`
	Rows        []table.Row     `json:"rows"`
	Cells       [][]string      `json:"-"`
	Query       TableQuery      `json:"query"`
	Sort        table.SortState `json:"sort"`
	Page        int             `json:"page"`
	TotalPages  int             `json:"total_pages"`
	TotalRows   int             `json:"total_rows"`
	HasPrev     bool            `json:"has_prev"`
	HasNext     bool            `json:"has_next"`
	Summary     string          `json:"summary"`
	SourceCount int             `json:"source_count"`
}

// DiagramData is a mermaid artifact ready for client-side rendering.
type DiagramData struct {
	*diagram.Diagram
	TypeLabel string `json:"type_label"`
}

// IngestResult reports the artifacts created from a message.
type IngestResult struct {
	Artifacts []*ArtifactSummary `json:"artifacts"`
	Errors    []string           `json:"errors,omitempty"`
	Text      string             `json:"text"`
}

// AskResult is the reply to a chat prompt.
type AskResult struct {
	SessionID  string             `json:"session_id"`
	Text       string             `json:"text"`
	Artifacts  []*ArtifactSummary `json:"artifacts"`
	Errors     []string           `json:"errors,omitempty"`
	Iterations int                `json:"iterations"`
}

func summarize(a *artifact.Artifact) *ArtifactSummary {
	return &ArtifactSummary{
		ID:        a.ID,
		SessionID: a.SessionID,
		Kind:      a.Kind,
		Component: a.Kind.Component(),
		Title:     a.Title,
		Summary:   a.Summary(),
		CreatedAt: a.CreatedAt,
	}
}

func summarizeAll(arts []*artifact.Artifact) []*ArtifactSummary {
	out := make([]*ArtifactSummary, 0, len(arts))
	for _, a := range arts {
		out = append(out, summarize(a))
	}
	return out
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/tool"
)

// ListArtifactsTool lists stored artifacts. Without an explicit session_id it
// is scoped to the session in the context.
type ListArtifactsTool struct {
	store storage.Store
}

// NewListArtifactsTool creates the list_artifacts tool
func NewListArtifactsTool(store storage.Store) *ListArtifactsTool {
	return &ListArtifactsTool{store: store}
}

func (t *ListArtifactsTool) Name() string { return "list_artifacts" }

func (t *ListArtifactsTool) Description() string {
	return "List charts, tables and diagrams already produced in this conversation. " +
		"Use it to find the id of a table before calling query_table."
}

func (t *ListArtifactsTool) InputSchema() tool.ToolSchema {
	kinds := make([]string, len(artifact.Kinds))
	for i, k := range artifact.Kinds {
		kinds[i] = string(k)
	}
	return tool.ToolSchema{
		Type: "object",
		Properties: map[string]tool.PropertyDef{
			"session_id": {Type: "string", Description: "Session to list; defaults to the current one"},
			"kind":       {Type: "string", Description: "Only artifacts of this kind", Enum: kinds},
			"search":     {Type: "string", Description: "Case-insensitive title filter"},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of artifacts to return",
				Minimum:     tool.Ptr(1.0),
				Maximum:     tool.Ptr(100.0),
			},
		},
	}
}

type listArtifactsInput struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Search    string `json:"search"`
	Limit     int    `json:"limit"`
}

type listedArtifact struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type listArtifactsOutput struct {
	Total     int              `json:"total"`
	Artifacts []listedArtifact `json:"artifacts"`
}

func (t *ListArtifactsTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in listArtifactsInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return "", fmt.Errorf("failed to parse input: %w", err)
		}
	}
	if in.SessionID == "" {
		in.SessionID = tool.SessionIDFromContext(ctx)
	}
	if in.Limit <= 0 {
		in.Limit = 20
	}

	arts, total, err := t.store.ListArtifacts(ctx, storage.ListParams{
		SessionID: in.SessionID,
		Kind:      artifact.Kind(in.Kind),
		Search:    in.Search,
		Limit:     in.Limit,
	})
	if err != nil {
		return "", err
	}

	out := listArtifactsOutput{Total: total, Artifacts: make([]listedArtifact, 0, len(arts))}
	for _, a := range arts {
		out.Artifacts = append(out.Artifacts, listedArtifact{
			ID:        a.ID.String(),
			Kind:      string(a.Kind),
			Title:     a.Title,
			Summary:   a.Summary(),
			CreatedAt: a.CreatedAt,
		})
	}
	return marshalResult(out)
}

var _ tool.Tool = (*ListArtifactsTool)(nil)

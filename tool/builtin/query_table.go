package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/table"
	"github.com/youssefsiam38/artifactpg/tool"
)

// QueryTableTool reads one page of a stored table, applying the same
// filter, sort and pagination a user gets in the UI.
type QueryTableTool struct {
	store storage.Store
}

// NewQueryTableTool creates the query_table tool
func NewQueryTableTool(store storage.Store) *QueryTableTool {
	return &QueryTableTool{store: store}
}

func (t *QueryTableTool) Name() string { return "query_table" }

func (t *QueryTableTool) Description() string {
	return "Read rows of a stored table artifact. Rows are filtered by a case-insensitive " +
		"substring over every value, then sorted, then split into pages of 10."
}

func (t *QueryTableTool) InputSchema() tool.ToolSchema {
	return tool.ToolSchema{
		Type: "object",
		Properties: map[string]tool.PropertyDef{
			"id":        {Type: "string", Description: "Table artifact id from list_artifacts"},
			"search":    {Type: "string", Description: "Substring filter over all values"},
			"sort":      {Type: "string", Description: "Column key to sort by"},
			"direction": {Type: "string", Enum: []string{string(table.Ascending), string(table.Descending)}},
			"page":      {Type: "integer", Description: "1-based page number", Minimum: tool.Ptr(1.0)},
		},
		Required: []string{"id"},
	}
}

type queryTableInput struct {
	ID        string `json:"id"`
	Search    string `json:"search"`
	Sort      string `json:"sort"`
	Direction string `json:"direction"`
	Page      int    `json:"page"`
}

type queryTableOutput struct {
	Title      string         `json:"title"`
	Columns    []table.Column `json:"columns"`
	Rows       []table.Row    `json:"rows"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	TotalRows  int            `json:"total_rows"`
	Summary    string         `json:"summary"`
}

func (t *QueryTableTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in queryTableInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("failed to parse input: %w", err)
	}
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return "", fmt.Errorf("invalid artifact id %q: %w", in.ID, err)
	}

	a, err := t.store.GetArtifact(ctx, id)
	if err != nil {
		return "", err
	}
	payload, err := a.Table()
	if err != nil {
		return "", err
	}

	view := payload.View()
	view.SetFilter(in.Search)
	if in.Sort != "" {
		view.SetSort(table.SortState{Column: in.Sort, Direction: table.ParseDirection(in.Direction)})
	}
	if in.Page > 0 {
		view.SetPage(in.Page)
	}
	page := view.Page()

	return marshalResult(queryTableOutput{
		Title:      view.Title(),
		Columns:    view.Columns(),
		Rows:       page.Rows,
		Page:       page.Index,
		TotalPages: page.TotalPages,
		TotalRows:  page.TotalRows,
		Summary:    view.Summary(),
	})
}

var _ tool.Tool = (*QueryTableTool)(nil)

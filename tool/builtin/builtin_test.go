package builtin_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/driver/memory"
	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/table"
	"github.com/youssefsiam38/artifactpg/tool"
	"github.com/youssefsiam38/artifactpg/tool/builtin"
)

func seedTable(t *testing.T, store storage.Store, sessionID string, n int) *artifact.Artifact {
	t.Helper()
	rows := make([]table.Row, n)
	for i := range rows {
		rows[i] = table.NewRow("name", string(rune('a'+i%26)), "value", n-i)
	}
	a, err := artifact.NewTable(&table.Payload{Title: "Numbers", Data: rows})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	a.SessionID = sessionID
	if err := store.SaveArtifacts(context.Background(), []*artifact.Artifact{a}); err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}
	return a
}

func execute(t *testing.T, tl tool.Tool, ctx context.Context, input string) map[string]any {
	t.Helper()
	if err := tool.Validate(tl.InputSchema(), json.RawMessage(input)); err != nil {
		t.Fatalf("Validate(%s): %v", input, err)
	}
	out, err := tl.Execute(ctx, json.RawMessage(input))
	if err != nil {
		t.Fatalf("Execute(%s): %v", input, err)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	return m
}

func TestTools(t *testing.T) {
	reg := tool.NewRegistry()
	if err := reg.RegisterAll(builtin.Tools(memory.New().GetStore())...); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if diff := cmp.Diff([]string{"list_artifacts", "query_table"}, reg.List()); diff != "" {
		t.Errorf("tools mismatch:\n%s", diff)
	}
}

func TestListArtifacts_ScopesToContextSession(t *testing.T) {
	store := memory.New().GetStore()
	mine := seedTable(t, store, "mine", 3)
	seedTable(t, store, "theirs", 3)

	ctx := tool.WithSessionID(context.Background(), "mine")
	out := execute(t, builtin.NewListArtifactsTool(store), ctx, `{}`)

	if out["total"] != 1.0 {
		t.Fatalf("total = %v", out["total"])
	}
	listed := out["artifacts"].([]any)[0].(map[string]any)
	if listed["id"] != mine.ID.String() || listed["summary"] != "3 rows" {
		t.Errorf("listed = %v", listed)
	}

	out = execute(t, builtin.NewListArtifactsTool(store), ctx, `{"session_id": "theirs", "kind": "table"}`)
	if out["total"] != 1.0 {
		t.Errorf("explicit session total = %v", out["total"])
	}
}

func TestQueryTable(t *testing.T) {
	store := memory.New().GetStore()
	a := seedTable(t, store, "s", 25)
	qt := builtin.NewQueryTableTool(store)
	ctx := context.Background()

	out := execute(t, qt, ctx, `{"id": "`+a.ID.String()+`", "sort": "value", "direction": "asc", "page": 3}`)
	if out["page"] != 3.0 || out["total_pages"] != 3.0 || out["total_rows"] != 25.0 {
		t.Errorf("paging = %v/%v/%v", out["page"], out["total_pages"], out["total_rows"])
	}
	if out["summary"] != "Showing 21 to 25 of 25 results" {
		t.Errorf("summary = %v", out["summary"])
	}
	rows := out["rows"].([]any)
	if first := rows[0].(map[string]any); first["value"] != 21.0 {
		t.Errorf("first row on page 3 = %v", first)
	}

	// Filtering resets to page 1 and page numbers past the end clamp.
	out = execute(t, qt, ctx, `{"id": "`+a.ID.String()+`", "search": "A", "page": 9}`)
	if out["total_rows"] != 1.0 || out["page"] != 1.0 {
		t.Errorf("filtered = %v rows, page %v", out["total_rows"], out["page"])
	}
}

func TestQueryTable_Errors(t *testing.T) {
	store := memory.New().GetStore()
	qt := builtin.NewQueryTableTool(store)
	ctx := context.Background()

	if _, err := qt.Execute(ctx, json.RawMessage(`{"id": "nope"}`)); err == nil || !strings.Contains(err.Error(), "invalid artifact id") {
		t.Errorf("bad id err = %v", err)
	}
	if _, err := qt.Execute(ctx, json.RawMessage(`{"id": "00000000-0000-0000-0000-000000000001"}`)); err == nil {
		t.Error("expected not found")
	}
}

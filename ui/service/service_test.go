package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg"
	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/chart"
	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/driver/memory"
	"github.com/youssefsiam38/artifactpg/storage/storagetest"
	"github.com/youssefsiam38/artifactpg/table"
)

func newTestService(t *testing.T) (*Service, *artifact.Artifact, *artifact.Artifact) {
	t.Helper()
	store := memory.New().GetStore()

	rows := make([]table.Row, 25)
	for i := range rows {
		rows[i] = table.NewRow("name", fmt.Sprintf("item-%02d", i+1), "value", i+1)
	}
	tbl, err := artifact.NewTable(&table.Payload{Title: "Items", Data: rows})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	tbl.SessionID = "s1"

	c, err := chart.Parse([]byte(`{"title":"Sales","data":[{"name":"Jan","sales":10},{"name":"Feb","sales":20}]}`))
	if err != nil {
		t.Fatalf("chart.Parse: %v", err)
	}
	ch, err := artifact.NewChart(c)
	if err != nil {
		t.Fatalf("NewChart: %v", err)
	}
	ch.SessionID = "s1"

	if err := store.SaveArtifacts(context.Background(), []*artifact.Artifact{tbl, ch}); err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}
	return New(store, nil, nil, 10), tbl, ch
}

func TestParseTableQuery(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   TableQuery
	}{
		{"empty", nil, TableQuery{Page: 1}},
		{"full", map[string]string{"q": "x", "sort": "value", "dir": "DESC", "page": "3"},
			TableQuery{Search: "x", Sort: "value", Dir: "desc", Page: 3}},
		{"bad page", map[string]string{"page": "-2"}, TableQuery{Page: 1}},
		{"dir without sort", map[string]string{"dir": "desc"}, TableQuery{Page: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTableQuery(func(k string) string { return tt.values[k] })
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseTableQuery() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTableQuerySortByAndEncode(t *testing.T) {
	q := TableQuery{Search: "a b", Page: 3}

	q = q.SortBy("value")
	if q.Sort != "value" || q.Dir != "asc" || q.Page != 1 {
		t.Fatalf("SortBy new column = %+v", q)
	}
	q = q.SortBy("value")
	if q.Dir != "desc" {
		t.Fatalf("SortBy same column dir = %q, want desc", q.Dir)
	}
	if got, want := q.WithPage(2).Encode(), "dir=desc&page=2&q=a+b&sort=value"; got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestGetTable(t *testing.T) {
	svc, tbl, _ := newTestService(t)
	ctx := context.Background()

	data, err := svc.GetTable(ctx, tbl.ID, TableQuery{Sort: "value", Dir: "desc", Page: 2})
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}
	if data.Page != 2 || data.TotalPages != 3 || data.TotalRows != 25 {
		t.Errorf("page = %d/%d rows %d", data.Page, data.TotalPages, data.TotalRows)
	}
	if got := data.Cells[0]; got[0] != "item-15" || got[1] != "15" {
		t.Errorf("first cell row = %v, want [item-15 15]", got)
	}
	if data.Summary != "Showing 11 to 20 of 25 results" {
		t.Errorf("Summary = %q", data.Summary)
	}

	data, err = svc.GetTable(ctx, tbl.ID, TableQuery{Search: "item-2", Page: 9})
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}
	if data.TotalRows != 6 || data.Page != 1 || data.Query.Page != 1 {
		t.Errorf("filtered rows=%d page=%d query page=%d", data.TotalRows, data.Page, data.Query.Page)
	}
	if data.SourceCount != 25 {
		t.Errorf("SourceCount = %d, want 25", data.SourceCount)
	}
}

func TestGetArtifactNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetArtifact(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetArtifact() error = %v, want ErrNotFound", err)
	}
}

func TestGetArtifactDetail(t *testing.T) {
	svc, tbl, ch := newTestService(t)
	ctx := context.Background()

	d, err := svc.GetArtifactDetail(ctx, tbl.ID, DetailOptions{Viewer: "ann", Table: TableQuery{Page: 1}})
	if err != nil {
		t.Fatalf("GetArtifactDetail: %v", err)
	}
	if d.Table == nil || d.Chart != nil || d.Diagram != nil {
		t.Fatalf("table detail = %+v", d)
	}
	if d.Open {
		t.Error("panel should start closed")
	}

	d, err = svc.GetArtifactDetail(ctx, ch.ID, DetailOptions{ChartType: "line"})
	if err != nil {
		t.Fatalf("GetArtifactDetail: %v", err)
	}
	if d.Chart == nil || d.Chart.Type != chart.Line {
		t.Fatalf("chart detail = %+v", d.Chart)
	}

	_, err = svc.GetArtifactDetail(ctx, ch.ID, DetailOptions{ChartType: "donut"})
	if !errors.Is(err, chart.ErrUnsupportedType) {
		t.Errorf("unavailable type error = %v", err)
	}
}

func TestListArtifacts(t *testing.T) {
	svc, _, _ := newTestService(t)

	list, err := svc.ListArtifacts(context.Background(), ArtifactListParams{Kind: artifact.KindTable, Limit: 10})
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if list.TotalCount != 1 || list.HasMore {
		t.Fatalf("list = %+v", list)
	}
	if got := list.Artifacts[0]; got.Component != "dataTable" || got.Title != "Items" {
		t.Errorf("summary = %+v", got)
	}
}

func TestExportTableKeepsFilterAndSortIgnoresPage(t *testing.T) {
	svc, tbl, _ := newTestService(t)

	f, err := svc.Export(context.Background(), tbl.ID, ExportRequest{
		Format: "CSV",
		Table:  TableQuery{Search: "item-1", Sort: "value", Dir: "desc", Page: 2},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(f.Data)), "\n")
	// header + item-10..item-19
	if len(lines) != 11 {
		t.Fatalf("got %d lines:\n%s", len(lines), f.Data)
	}
	if !strings.HasPrefix(lines[1], `"item-19"`) {
		t.Errorf("first data line = %q", lines[1])
	}
	if f.Name != "Items.csv" {
		t.Errorf("Name = %q", f.Name)
	}
}

func TestExportFormats(t *testing.T) {
	svc, tbl, ch := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		id      uuid.UUID
		format  string
		wantErr error
	}{
		{"table json", tbl.ID, FormatJSON, nil},
		{"table parquet", tbl.ID, FormatParquet, nil},
		{"table png", tbl.ID, FormatPNG, ErrUnsupportedFormat},
		{"chart csv", ch.ID, FormatCSV, nil},
		{"chart svg", ch.ID, FormatSVG, nil},
		{"chart parquet", ch.ID, FormatParquet, ErrUnsupportedFormat},
		{"missing", uuid.New(), FormatCSV, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := svc.Export(ctx, tt.id, ExportRequest{Format: tt.format})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Export() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			if len(f.Data) == 0 || !strings.HasSuffix(f.Name, "."+tt.format) {
				t.Errorf("file = %q (%d bytes)", f.Name, len(f.Data))
			}
		})
	}
}

func TestExportDiagram(t *testing.T) {
	store := memory.New().GetStore()
	d := storagetest.NewDiagramArtifact(t, "s1", "Flow")
	if err := store.SaveArtifacts(context.Background(), []*artifact.Artifact{d}); err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}
	svc := New(store, nil, nil, 10)

	f, err := svc.Export(context.Background(), d.ID, ExportRequest{Format: FormatMermaid})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if f.Name != "Flow.mmd" || !bytes.Contains(f.Data, []byte("graph TD")) {
		t.Errorf("file = %q %q", f.Name, f.Data)
	}

	if _, err := svc.ExportDiagramSVG(context.Background(), d.ID, []byte("<svg></svg>")); err != nil {
		t.Errorf("ExportDiagramSVG: %v", err)
	}
}

func TestRenderChart(t *testing.T) {
	svc, _, ch := newTestService(t)

	var buf bytes.Buffer
	if err := svc.RenderChart(context.Background(), &buf, ch.ID, "", chart.SVG); err != nil {
		t.Fatalf("RenderChart: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("<svg")) {
		t.Error("expected SVG output")
	}
}

func TestPanels(t *testing.T) {
	svc, tbl, _ := newTestService(t)

	if !svc.TogglePanel("ann", tbl.ID) {
		t.Fatal("first toggle should open")
	}
	if !svc.PanelOpen("ann", tbl.ID) {
		t.Error("ann's panel should be open")
	}
	if svc.PanelOpen("bob", tbl.ID) {
		t.Error("bob's panel should be closed")
	}
	svc.SetPanel("ann", tbl.ID, false)
	if svc.PanelOpen("ann", tbl.ID) {
		t.Error("SetPanel(false) should close")
	}
}

type fakeClient struct {
	canAsk bool
	ingest *artifactpg.IngestResult
	ask    *artifactpg.AskResult
	err    error
}

func (f *fakeClient) CanAsk() bool { return f.canAsk }

func (f *fakeClient) Ask(ctx context.Context, sessionID, prompt string) (*artifactpg.AskResult, error) {
	return f.ask, f.err
}

func (f *fakeClient) Ingest(ctx context.Context, sessionID, messageID, content string) (*artifactpg.IngestResult, error) {
	return f.ingest, f.err
}

func (f *fakeClient) Subscribe(fn func(driver.ArtifactEvent)) func() { return func() {} }

func TestIngestAndAsk(t *testing.T) {
	store := memory.New().GetStore()
	ctx := context.Background()

	svc := New(store, nil, nil, 10)
	if _, err := svc.Ingest(ctx, "s1", "m1", "hi"); !errors.Is(err, ErrClientRequired) {
		t.Fatalf("Ingest without client error = %v", err)
	}

	a := storagetest.NewTableArtifact(t, "s1", "T")
	fc := &fakeClient{
		ingest: &artifactpg.IngestResult{
			Artifacts: []*artifact.Artifact{a},
			Errors:    []error{errors.New("bad block")},
			Text:      "hello",
		},
		ask: &artifactpg.AskResult{Text: "done", Iterations: 2},
	}
	svc = New(store, fc, nil, 10)

	res, err := svc.Ingest(ctx, "s1", "m1", "hello <table>{}</table>")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(res.Artifacts) != 1 || res.Errors[0] != "bad block" || res.Text != "hello" {
		t.Errorf("Ingest() = %+v", res)
	}

	if _, err := svc.Ask(ctx, "s1", "hi"); !errors.Is(err, ErrAskDisabled) {
		t.Fatalf("Ask without model error = %v", err)
	}
	fc.canAsk = true
	ans, err := svc.Ask(ctx, "s1", "hi")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ans.Text != "done" || ans.Iterations != 2 || ans.SessionID != "s1" {
		t.Errorf("Ask() = %+v", ans)
	}
}

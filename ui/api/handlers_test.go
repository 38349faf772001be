package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg"
	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/driver/memory"
	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/storage/storagetest"
	"github.com/youssefsiam38/artifactpg/ui/service"
)

type fakeClient struct {
	subscribed chan func(driver.ArtifactEvent)
}

func (f *fakeClient) CanAsk() bool { return false }

func (f *fakeClient) Ask(ctx context.Context, sessionID, prompt string) (*artifactpg.AskResult, error) {
	return nil, artifactpg.ErrNoModel
}

func (f *fakeClient) Ingest(ctx context.Context, sessionID, messageID, content string) (*artifactpg.IngestResult, error) {
	return &artifactpg.IngestResult{Text: content}, nil
}

func (f *fakeClient) Subscribe(fn func(driver.ArtifactEvent)) func() {
	if f.subscribed != nil {
		f.subscribed <- fn
	}
	return func() {}
}

type testAPI struct {
	handler http.Handler
	store   storage.Store
	table   *artifact.Artifact
	client  *fakeClient
}

func newTestAPI(t *testing.T, cfg *Config) *testAPI {
	t.Helper()
	store := memory.New().GetStore()
	tbl := storagetest.NewTableArtifact(t, "s1", "Scores")
	dg := storagetest.NewDiagramArtifact(t, "s2", "Flow")
	if err := store.SaveArtifacts(context.Background(), []*artifact.Artifact{tbl, dg}); err != nil {
		t.Fatalf("SaveArtifacts: %v", err)
	}

	fc := &fakeClient{subscribed: make(chan func(driver.ArtifactEvent), 1)}
	svc := service.New(store, fc, nil, 10)
	return &testAPI{handler: NewRouter(svc, cfg), store: store, table: tbl, client: fc}
}

// raw serves a request without decoding the body, for endpoints such as
// exports that do not answer with a Response envelope.
func (a *testAPI) raw(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := a.raw(method, target, body)

	var resp Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v\n%s", err, rec.Body)
		}
	}
	return rec, resp
}

func TestListArtifacts(t *testing.T) {
	a := newTestAPI(t, nil)

	rec, resp := a.do(t, http.MethodGet, "/artifacts?kind=table&limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	want := &Meta{TotalCount: 1, Limit: 5}
	if diff := cmp.Diff(want, resp.Meta); diff != "" {
		t.Errorf("meta mismatch (-want +got):\n%s", diff)
	}
	items := resp.Data.([]any)
	if len(items) != 1 || items[0].(map[string]any)["title"] != "Scores" {
		t.Errorf("data = %v", resp.Data)
	}
}

func TestGetArtifactAndTable(t *testing.T) {
	a := newTestAPI(t, nil)
	id := a.table.ID.String()

	rec, resp := a.do(t, http.MethodGet, "/artifacts/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if _, ok := resp.Data.(map[string]any)["table"]; !ok {
		t.Errorf("detail has no table: %v", resp.Data)
	}

	rec, resp = a.do(t, http.MethodGet, "/artifacts/"+id+"/table?sort=value&dir=desc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	data := resp.Data.(map[string]any)
	rows := data["rows"].([]any)
	if first := rows[0].(map[string]any)["name"]; first != "a" {
		t.Errorf("first row name = %v, want a", first)
	}
	if data["summary"] != "Showing 1 to 2 of 2 results" {
		t.Errorf("summary = %v", data["summary"])
	}
}

func TestErrors(t *testing.T) {
	a := newTestAPI(t, &Config{ReadOnly: true})

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"bad id", http.MethodGet, "/artifacts/x", "", http.StatusBadRequest, "invalid_id"},
		{"missing", http.MethodGet, "/artifacts/" + uuid.NewString(), "", http.StatusNotFound, "not_found"},
		{"bad format", http.MethodGet, "/artifacts/" + a.table.ID.String() + "/export/png", "", http.StatusBadRequest, "unsupported_format"},
		{"read-only delete", http.MethodDelete, "/artifacts/" + a.table.ID.String(), "", http.StatusForbidden, "read_only"},
		{"read-only ingest", http.MethodPost, "/ingest", `{"session_id":"s","content":"x"}`, http.StatusForbidden, "read_only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := a.do(t, tt.method, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %q", resp.Error, tt.code)
			}
		})
	}
}

func TestExport(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.raw(http.MethodGet, "/artifacts/"+a.table.ID.String()+"/export/json?q=b", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var rows []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "b" {
		t.Errorf("rows = %v", rows)
	}
}

func TestDeleteArtifact(t *testing.T) {
	a := newTestAPI(t, nil)

	rec, _ := a.do(t, http.MethodDelete, "/artifacts/"+a.table.ID.String(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if _, err := a.store.GetArtifact(context.Background(), a.table.ID); err == nil {
		t.Error("artifact still stored")
	}
}

func TestIngestAndAsk(t *testing.T) {
	a := newTestAPI(t, nil)

	rec, resp := a.do(t, http.MethodPost, "/ingest", `{"session_id":"s1","content":"hello"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if resp.Data.(map[string]any)["text"] != "hello" {
		t.Errorf("data = %v", resp.Data)
	}

	rec, _ = a.do(t, http.MethodPost, "/ingest", `{"content":"hello"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing session status = %d", rec.Code)
	}
	rec, _ = a.do(t, http.MethodPost, "/ingest", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", rec.Code)
	}

	rec, _ = a.do(t, http.MethodPost, "/ask", `{"session_id":"s1","prompt":"chart please"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ask without model status = %d", rec.Code)
	}
}

func TestEvents(t *testing.T) {
	a := newTestAPI(t, nil)
	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?session_id=s1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var emit func(driver.ArtifactEvent)
	select {
	case emit = <-a.client.subscribed:
	case <-ctx.Done():
		t.Fatal("handler never subscribed")
	}
	emit(driver.ArtifactEvent{ID: "other", SessionID: "s2"})
	emit(driver.ArtifactEvent{ID: "mine", SessionID: "s1", Kind: "table", Title: "T"})

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	want := []string{
		"event: artifact",
		`data: {"id":"mine","session_id":"s1","kind":"table","title":"T"}`,
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

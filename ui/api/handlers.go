package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/chart"
	"github.com/youssefsiam38/artifactpg/download"
	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/ui/service"
)

// maxBodySize bounds ingest and ask request bodies.
const maxBodySize = 1 << 20

// Response wraps all API responses.
type Response struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
	Meta  *Meta     `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	TotalCount int  `json:"total_count,omitempty"`
	HasMore    bool `json:"has_more,omitempty"`
	Limit      int  `json:"limit,omitempty"`
	Offset     int  `json:"offset,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data})
}

// writeJSONWithMeta writes a JSON response with metadata.
func writeJSONWithMeta(w http.ResponseWriter, status int, data any, meta *Meta) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data, Meta: meta})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Error: &APIError{Code: code, Message: message},
	})
}

// writeServiceError maps service errors to API errors.
func (rt *router) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "artifact not found")
	case errors.Is(err, service.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "unsupported_format", err.Error())
	case errors.Is(err, chart.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "unsupported_chart_type", err.Error())
	case errors.Is(err, service.ErrClientRequired), errors.Is(err, service.ErrAskDisabled):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		if rt.config.Logger != nil {
			rt.config.Logger.Error("api request failed", "error", err)
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// parseUUID parses a UUID from a path parameter.
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// parseLimit parses a page size, clamped to the configured maximum.
func (rt *router) parseLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return rt.config.DefaultLimit
	}
	return min(service.ValidateLimit(n), rt.config.MaxLimit)
}

// parseOffset parses an offset from a query parameter.
func parseOffset(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil {
		return 0
	}
	return service.ValidateOffset(n)
}

func artifactID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid artifact ID")
		return uuid.Nil, false
	}
	return id, true
}

// Artifact handlers

func (rt *router) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := service.ArtifactListParams{
		SessionID: q.Get("session_id"),
		Kind:      service.ValidateKind(q.Get("kind")),
		Search:    q.Get("search"),
		Limit:     rt.parseLimit(r),
		Offset:    parseOffset(r),
		OrderBy:   service.ValidateOrderBy(q.Get("order_by"), service.AllowedArtifactOrderBy),
		OrderDir:  service.ValidateOrderDir(q.Get("order_dir")),
	}

	list, err := rt.svc.ListArtifacts(r.Context(), params)
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	writeJSONWithMeta(w, http.StatusOK, list.Artifacts, &Meta{
		TotalCount: list.TotalCount,
		HasMore:    list.HasMore,
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
}

func (rt *router) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	id, ok := artifactID(w, r)
	if !ok {
		return
	}

	detail, err := rt.svc.GetArtifactDetail(r.Context(), id, service.DetailOptions{
		Table:     service.ParseTableQuery(r.URL.Query().Get),
		ChartType: r.URL.Query().Get("type"),
	})
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (rt *router) handleDeleteArtifact(w http.ResponseWriter, r *http.Request) {
	if rt.config.ReadOnly {
		writeError(w, http.StatusForbidden, "read_only", "read-only mode")
		return
	}
	id, ok := artifactID(w, r)
	if !ok {
		return
	}

	if err := rt.svc.DeleteArtifact(r.Context(), id); err != nil {
		rt.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *router) handleGetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := artifactID(w, r)
	if !ok {
		return
	}

	data, err := rt.svc.GetTable(r.Context(), id, service.ParseTableQuery(r.URL.Query().Get))
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (rt *router) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := artifactID(w, r)
	if !ok {
		return
	}

	f, err := rt.svc.Export(r.Context(), id, service.ExportRequest{
		Format:    r.PathValue("format"),
		Table:     service.ParseTableQuery(r.URL.Query().Get),
		ChartType: r.URL.Query().Get("type"),
	})
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}
	if err := download.Write(w, f); err != nil && rt.config.Logger != nil {
		rt.config.Logger.Warn("failed to write download", "error", err)
	}
}

// Session handlers

func (rt *router) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := rt.svc.ListSessions(r.Context())
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}
	writeJSONWithMeta(w, http.StatusOK, sessions, &Meta{TotalCount: len(sessions)})
}

// Message handlers

// IngestRequest is the body of POST /ingest.
type IngestRequest struct {
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
}

func (rt *router) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if rt.config.ReadOnly {
		writeError(w, http.StatusForbidden, "read_only", "read-only mode")
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (rt *router) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !rt.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id and content are required")
		return
	}

	res, err := rt.svc.Ingest(r.Context(), req.SessionID, req.MessageID, req.Content)
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (rt *router) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !rt.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "session_id and prompt are required")
		return
	}

	res, err := rt.svc.Ask(r.Context(), req.SessionID, req.Prompt)
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleEvents streams artifact creation events as server-sent events.
// An optional session_id query parameter narrows the stream.
func (rt *router) handleEvents(w http.ResponseWriter, r *http.Request) {
	client := rt.svc.Client()
	if client == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "event stream requires a client")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "sse_not_supported", "SSE not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	session := r.URL.Query().Get("session_id")
	events := make(chan driver.ArtifactEvent, 16)
	unsubscribe := client.Subscribe(func(e driver.ArtifactEvent) {
		if session != "" && e.SessionID != session {
			return
		}
		select {
		case events <- e:
		default:
			// reader fell behind
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-events:
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "event: artifact\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

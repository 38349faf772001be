package frontend

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/chart"
	"github.com/youssefsiam38/artifactpg/diagram"
	"github.com/youssefsiam38/artifactpg/download"
	"github.com/youssefsiam38/artifactpg/ui/service"
)

// maxSVGUpload bounds diagram SVGs posted back for download.
const maxSVGUpload = 5 << 20

// parseLimit parses a list page size, clamped to the configured maximum.
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

// parseUUID parses a UUID from a string.
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// logError logs an error if the logger is configured.
func (rt *router) logError(msg string, err error) {
	if rt.config.Logger != nil {
		rt.config.Logger.Warn(msg, "error", err.Error())
	}
}

// httpError maps service errors to status codes.
func (rt *router) httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "Artifact not found", http.StatusNotFound)
	case errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, chart.ErrUnsupportedType),
		errors.Is(err, diagram.ErrInvalidSVG):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrClientRequired), errors.Is(err, service.ErrAskDisabled):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		rt.logError("request failed", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (rt *router) artifactID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid artifact ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// Main page handlers

func (rt *router) handleRedirectToArtifacts(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, rt.config.BasePath+"/artifacts", http.StatusTemporaryRedirect)
}

func (rt *router) artifactListData(r *http.Request) (map[string]any, error) {
	q := r.URL.Query()
	params := service.ArtifactListParams{
		SessionID: q.Get("session"),
		Kind:      service.ValidateKind(q.Get("kind")),
		Search:    q.Get("search"),
		Limit:     rt.parseLimit(r),
		Offset:    parseOffset(r),
		OrderBy:   service.ValidateOrderBy(q.Get("order_by"), service.AllowedArtifactOrderBy),
		OrderDir:  service.ValidateOrderDir(q.Get("order_dir")),
	}

	list, err := rt.svc.ListArtifacts(r.Context(), params)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"Title":       "Artifacts",
		"Artifacts":   list.Artifacts,
		"TotalCount":  list.TotalCount,
		"HasMore":     list.HasMore,
		"Params":      params,
		"Kinds":       artifact.Kinds,
		"CurrentPage": params.Offset/params.Limit + 1,
		"TotalPages":  (list.TotalCount + params.Limit - 1) / params.Limit,
	}, nil
}

func (rt *router) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	data, err := rt.artifactListData(r)
	if err != nil {
		rt.httpError(w, err)
		return
	}
	if err := rt.renderer.render(w, r, "artifacts/list.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (rt *router) detailOptions(r *http.Request) service.DetailOptions {
	return service.DetailOptions{
		Viewer:    rt.config.Viewer(r),
		Table:     service.ParseTableQuery(r.URL.Query().Get),
		ChartType: r.URL.Query().Get("type"),
	}
}

func (rt *router) handleArtifactDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.artifactID(w, r)
	if !ok {
		return
	}

	detail, err := rt.svc.GetArtifactDetail(r.Context(), id, rt.detailOptions(r))
	if err != nil {
		rt.httpError(w, err)
		return
	}

	data := map[string]any{
		"Title":  detail.Artifact.Title,
		"Detail": detail,
	}
	if err := rt.renderer.render(w, r, "artifacts/detail.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (rt *router) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := rt.svc.ListSessions(r.Context())
	if err != nil {
		rt.httpError(w, err)
		return
	}

	data := map[string]any{
		"Title":    "Sessions",
		"Sessions": sessions,
	}
	if err := rt.renderer.render(w, r, "sessions/list.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Artifact actions

func (rt *router) handleChartImage(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.artifactID(w, r)
	if !ok {
		return
	}

	format := r.PathValue("format")
	if format != service.FormatSVG && format != service.FormatPNG {
		http.Error(w, "Unsupported image format", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := rt.svc.RenderChart(r.Context(), &buf, id, r.URL.Query().Get("type"), chart.ParseFormat(format)); err != nil {
		rt.httpError(w, err)
		return
	}

	if format == service.FormatPNG {
		w.Header().Set("Content-Type", download.ContentTypePNG)
	} else {
		w.Header().Set("Content-Type", download.ContentTypeSVG)
	}
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
}

func (rt *router) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.artifactID(w, r)
	if !ok {
		return
	}

	f, err := rt.svc.Export(r.Context(), id, service.ExportRequest{
		Format:    r.PathValue("format"),
		Table:     service.ParseTableQuery(r.URL.Query().Get),
		ChartType: r.URL.Query().Get("type"),
	})
	if err != nil {
		rt.httpError(w, err)
		return
	}
	if err := download.Write(w, f); err != nil {
		rt.logError("failed to write download", err)
	}
}

func (rt *router) handleExportDiagramSVG(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.artifactID(w, r)
	if !ok {
		return
	}

	svg, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSVGUpload))
	if err != nil {
		http.Error(w, "SVG too large", http.StatusRequestEntityTooLarge)
		return
	}

	f, err := rt.svc.ExportDiagramSVG(r.Context(), id, svg)
	if err != nil {
		rt.httpError(w, err)
		return
	}
	if err := download.Write(w, f); err != nil {
		rt.logError("failed to write download", err)
	}
}

func (rt *router) handleTogglePanel(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.artifactID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	// The panel state must exist for an artifact that exists.
	if _, err := rt.svc.GetArtifact(r.Context(), id); err != nil {
		rt.httpError(w, err)
		return
	}

	viewer := rt.config.Viewer(r)
	switch r.FormValue("open") {
	case "true":
		rt.svc.SetPanel(viewer, id, true)
	case "false":
		rt.svc.SetPanel(viewer, id, false)
	default:
		rt.svc.TogglePanel(viewer, id)
	}

	detail, err := rt.svc.GetArtifactDetail(r.Context(), id, rt.detailOptions(r))
	if err != nil {
		rt.httpError(w, err)
		return
	}
	data := map[string]any{"Detail": detail}
	if err := rt.renderer.renderFragment(w, "fragments/panel.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (rt *router) handleDeleteArtifact(w http.ResponseWriter, r *http.Request) {
	if rt.config.ReadOnly {
		http.Error(w, "Read-only mode", http.StatusForbidden)
		return
	}
	id, ok := rt.artifactID(w, r)
	if !ok {
		return
	}

	if err := rt.svc.DeleteArtifact(r.Context(), id); err != nil {
		rt.httpError(w, err)
		return
	}

	target := rt.config.BasePath + "/artifacts"
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Chat interface

func (rt *router) handleChat(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	list, err := rt.svc.ListArtifacts(r.Context(), service.ArtifactListParams{
		SessionID: sessionID,
		Limit:     rt.config.DefaultLimit,
		OrderDir:  "asc",
	})
	if err != nil {
		rt.httpError(w, err)
		return
	}

	data := map[string]any{
		"Title":     "Chat",
		"SessionID": sessionID,
		"CanAsk":    rt.svc.CanAsk() && !rt.config.ReadOnly,
		"CanIngest": rt.svc.Client() != nil && !rt.config.ReadOnly,
		"Artifacts": list.Artifacts,
	}
	if err := rt.renderer.render(w, r, "chat/index.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (rt *router) chatForm(w http.ResponseWriter, r *http.Request, field string) (sessionID, text string, ok bool) {
	if rt.config.ReadOnly || rt.svc.Client() == nil {
		http.Error(w, "Chat is disabled", http.StatusForbidden)
		return "", "", false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return "", "", false
	}

	sessionID = r.FormValue("session_id")
	text = r.FormValue(field)
	if sessionID == "" {
		http.Error(w, "Missing session_id", http.StatusBadRequest)
		return "", "", false
	}
	if text == "" {
		http.Error(w, "Missing "+field, http.StatusBadRequest)
		return "", "", false
	}
	return sessionID, text, true
}

func (rt *router) handleChatSend(w http.ResponseWriter, r *http.Request) {
	sessionID, message, ok := rt.chatForm(w, r, "message")
	if !ok {
		return
	}

	res, err := rt.svc.Ask(r.Context(), sessionID, message)
	if err != nil {
		rt.httpError(w, err)
		return
	}

	data := map[string]any{
		"Prompt":    message,
		"Text":      res.Text,
		"Artifacts": res.Artifacts,
		"Errors":    res.Errors,
	}
	if err := rt.renderer.renderFragment(w, "fragments/chat-reply.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (rt *router) handleChatIngest(w http.ResponseWriter, r *http.Request) {
	sessionID, content, ok := rt.chatForm(w, r, "content")
	if !ok {
		return
	}

	res, err := rt.svc.Ingest(r.Context(), sessionID, r.FormValue("message_id"), content)
	if err != nil {
		rt.httpError(w, err)
		return
	}

	data := map[string]any{
		"Text":      res.Text,
		"Artifacts": res.Artifacts,
		"Errors":    res.Errors,
	}
	if err := rt.renderer.renderFragment(w, "fragments/chat-reply.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HTMX fragment handlers

func (rt *router) handleFragmentTable(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.artifactID(w, r)
	if !ok {
		return
	}

	data, err := rt.svc.GetTable(r.Context(), id, service.ParseTableQuery(r.URL.Query().Get))
	if err != nil {
		rt.httpError(w, err)
		return
	}
	if err := rt.renderer.renderFragment(w, "fragments/table.html", map[string]any{"Table": data}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (rt *router) handleFragmentChart(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.artifactID(w, r)
	if !ok {
		return
	}

	c, err := rt.svc.GetChart(r.Context(), id, r.URL.Query().Get("type"))
	if err != nil {
		rt.httpError(w, err)
		return
	}
	if err := rt.renderer.renderFragment(w, "fragments/chart.html", map[string]any{"ID": id, "Chart": c}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (rt *router) handleFragmentArtifactList(w http.ResponseWriter, r *http.Request) {
	data, err := rt.artifactListData(r)
	if err != nil {
		rt.httpError(w, err)
		return
	}
	if err := rt.renderer.renderFragment(w, "fragments/artifact-list.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

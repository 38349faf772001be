package frontend

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/youssefsiam38/artifactpg/ui/service"
)

//go:embed templates
var templatesFS embed.FS

// Config holds frontend router configuration.
type Config struct {
	// BasePath is the URL prefix where the UI is mounted.
	// All navigation links will be prefixed with this path.
	BasePath string

	// ReadOnly disables write operations (chat, ingest, delete).
	ReadOnly bool

	// DefaultLimit and MaxLimit bound the artifact list page size.
	DefaultLimit int
	MaxLimit     int

	// RefreshInterval for auto-refresh of the artifact list.
	RefreshInterval time.Duration

	// Viewer identifies the person a request belongs to. Panel state is
	// kept per viewer.
	Viewer func(*http.Request) string

	// Logger for structured logging.
	Logger Logger
}

// Logger interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// router holds the frontend router state.
type router struct {
	svc      *service.Service
	config   *Config
	renderer *renderer
}

// NewRouter creates a new frontend router.
func NewRouter(svc *service.Service, cfg *Config) http.Handler {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 25
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = service.MaxPageLimit
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Second
	}
	if cfg.Viewer == nil {
		cfg.Viewer = func(*http.Request) string { return "anonymous" }
	}

	// Page templates are parsed per request by the renderer so that their
	// "content" blocks do not collide. Fragments are shared.
	baseTmpl := template.Must(template.New("").
		Funcs(templateFuncs()).
		ParseFS(templatesFS,
			"templates/base.html",
			"templates/fragments/*.html",
		))

	r := &router{
		svc:      svc,
		config:   cfg,
		renderer: newRenderer(baseTmpl, templatesFS, cfg),
	}

	mux := http.NewServeMux()

	// Main pages
	mux.HandleFunc("GET /{$}", r.handleRedirectToArtifacts)
	mux.HandleFunc("GET /artifacts", r.handleArtifacts)
	mux.HandleFunc("GET /artifacts/{id}", r.handleArtifactDetail)
	mux.HandleFunc("GET /sessions", r.handleSessions)

	// Artifact actions
	mux.HandleFunc("GET /artifacts/{id}/chart/{format}", r.handleChartImage)
	mux.HandleFunc("GET /artifacts/{id}/export/{format}", r.handleExport)
	mux.HandleFunc("POST /artifacts/{id}/export/svg", r.handleExportDiagramSVG)
	mux.HandleFunc("POST /artifacts/{id}/panel", r.handleTogglePanel)
	mux.HandleFunc("POST /artifacts/{id}/delete", r.handleDeleteArtifact)

	// Chat interface
	mux.HandleFunc("GET /chat", r.handleChat)
	mux.HandleFunc("POST /chat/send", r.handleChatSend)
	mux.HandleFunc("POST /chat/ingest", r.handleChatIngest)

	// HTMX fragments
	mux.HandleFunc("GET /fragments/artifacts/{id}/table", r.handleFragmentTable)
	mux.HandleFunc("GET /fragments/artifacts/{id}/chart", r.handleFragmentChart)
	mux.HandleFunc("GET /fragments/artifact-list", r.handleFragmentArtifactList)

	return withFrontendMiddleware(mux, cfg)
}

// withFrontendMiddleware wraps the handler with frontend-specific middleware.
func withFrontendMiddleware(handler http.Handler, cfg *Config) http.Handler {
	return frontendRecoveryMiddleware(handler, cfg.Logger)
}

// frontendRecoveryMiddleware recovers from panics.
func frontendRecoveryMiddleware(next http.Handler, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if logger != nil {
					logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				}
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime":    formatTime,
		"formatTimeAgo": formatTimeAgo,
		"formatCount":   formatCount,
		"truncate":      truncate,
		"kindBadge":     kindBadge,
		"exportFormats": exportFormats,
		"tableQuery":    tableQuery,
		"json":          jsonEncode,
		"markdown":      markdown,
		"add":           add,
		"sub":           sub,
		"seq":           seq,
		"contains":      contains,
		"default":       defaultVal,
		"dict":          dictFunc,
	}
}

// dictFunc creates a map from key-value pairs for use in templates.
// Usage: {{template "foo" (dict "key1" val1 "key2" val2)}}
func dictFunc(values ...any) map[string]any {
	if len(values)%2 != 0 {
		return nil
	}
	dict := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		dict[key] = values[i+1]
	}
	return dict
}

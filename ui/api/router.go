package api

import (
	"net/http"

	"github.com/youssefsiam38/artifactpg/ui/service"
)

// Config holds API router configuration.
type Config struct {
	// ReadOnly rejects ingest, ask and delete.
	ReadOnly bool

	// DefaultLimit and MaxLimit bound list page sizes.
	DefaultLimit int
	MaxLimit     int

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

// router holds the API router state.
type router struct {
	svc    *service.Service
	config *Config
}

// NewRouter creates a new API router.
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

	r := &router{
		svc:    svc,
		config: cfg,
	}

	mux := http.NewServeMux()

	// Artifacts
	mux.HandleFunc("GET /artifacts", r.handleListArtifacts)
	mux.HandleFunc("GET /artifacts/{id}", r.handleGetArtifact)
	mux.HandleFunc("DELETE /artifacts/{id}", r.handleDeleteArtifact)
	mux.HandleFunc("GET /artifacts/{id}/table", r.handleGetTable)
	mux.HandleFunc("GET /artifacts/{id}/export/{format}", r.handleExport)

	// Sessions
	mux.HandleFunc("GET /sessions", r.handleListSessions)

	// Messages
	mux.HandleFunc("POST /ingest", r.handleIngest)
	mux.HandleFunc("POST /ask", r.handleAsk)

	// Live updates
	mux.HandleFunc("GET /events", r.handleEvents)

	return withMiddleware(mux, cfg)
}

// withMiddleware wraps the handler with common middleware.
func withMiddleware(handler http.Handler, cfg *Config) http.Handler {
	handler = jsonMiddleware(handler)
	handler = recoveryMiddleware(handler, cfg.Logger)
	return handler
}

// jsonMiddleware sets JSON content type for all responses. Downloads and
// the event stream replace it.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func recoveryMiddleware(next http.Handler, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if logger != nil {
					logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				}
				http.Error(w, `{"error":{"code":"internal_error","message":"internal server error"}}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

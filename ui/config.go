package ui

import (
	"net/http"
	"time"

	"github.com/youssefsiam38/artifactpg/auth"
	"github.com/youssefsiam38/artifactpg/panel"
	"github.com/youssefsiam38/artifactpg/table"
)

// Default configuration values.
const (
	DefaultRefreshInterval = 5 * time.Second
	DefaultPageSize        = table.DefaultPageSize
	DefaultListLimit       = 25
	DefaultMaxListLimit    = 200
	AnonymousViewer        = "anonymous"
)

// Config holds UI package configuration.
type Config struct {
	// BasePath is the URL prefix where the UI is mounted.
	// For example, if mounted at "/ui/", set BasePath to "/ui".
	// All navigation links will be prefixed with this path.
	BasePath string

	// ReadOnly disables write operations (chat, ingest, delete).
	ReadOnly bool

	// PageSize is the number of table rows per page.
	// Defaults to 10.
	PageSize int

	// DefaultLimit is the artifact list page size when none is requested.
	// Defaults to 25.
	DefaultLimit int

	// MaxLimit caps requested artifact list page sizes.
	// Defaults to 200.
	MaxLimit int

	// RefreshInterval for auto-refresh of the artifact list.
	// Defaults to 5 seconds.
	RefreshInterval time.Duration

	// Logger for structured logging.
	// If nil, logging is disabled.
	Logger Logger

	// Panels stores which artifact panels are expanded.
	// Defaults to an in-memory controller.
	Panels panel.Controller

	// Viewer identifies the person behind a request; panel state is kept
	// per viewer. Defaults to the authenticated user, or "anonymous".
	Viewer func(*http.Request) string
}

// Logger interface for structured logging.
// Compatible with artifactpg.Logger and *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills in default values for zero-valued fields.
func (c *Config) applyDefaults() {
	if c.RefreshInterval == 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.DefaultLimit == 0 {
		c.DefaultLimit = DefaultListLimit
	}
	if c.MaxLimit == 0 {
		c.MaxLimit = DefaultMaxListLimit
	}
	if c.Panels == nil {
		c.Panels = panel.NewMemory()
	}
	if c.Viewer == nil {
		c.Viewer = viewerFromAuth
	}
}

// validate checks the configuration for errors.
func (c *Config) validate() error {
	if c.PageSize < 1 {
		return ErrInvalidConfig
	}
	if c.DefaultLimit < 1 || c.MaxLimit < c.DefaultLimit {
		return ErrInvalidConfig
	}
	if c.RefreshInterval < time.Second {
		return ErrInvalidConfig
	}
	return nil
}

func viewerFromAuth(r *http.Request) string {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return user
	}
	return AnonymousViewer
}

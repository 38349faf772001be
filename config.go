package artifactpg

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/hooks"
	"github.com/youssefsiam38/artifactpg/maintenance"
	"github.com/youssefsiam38/artifactpg/tool"
)

// Default configuration values.
const (
	DefaultModel         = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens     = 4096
	DefaultMaxIterations = 8
	DefaultToolTimeout   = tool.DefaultTimeout
)

// Logger interface for structured logging. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ClientConfig holds configuration for the Client.
type ClientConfig struct {
	// APIKey is the Anthropic API key. Without it (and without Messages),
	// Ask is unavailable but ingestion and browsing still work.
	APIKey string

	// Messages overrides the Anthropic Messages API client (optional).
	// Takes precedence over APIKey.
	Messages Messenger

	// Model is the model ID used by Ask.
	// Default: DefaultModel
	Model string

	// MaxTokens bounds each model response.
	// Default: 4096
	MaxTokens int64

	// MaxIterations bounds the tool-use round trips of one Ask.
	// Default: 8
	MaxIterations int

	// ToolTimeout bounds a single tool execution.
	// Default: 30 seconds
	ToolTimeout time.Duration

	// SystemPrompt is prepended to the artifact instructions (optional).
	SystemPrompt string

	// Tools are registered in addition to the global tools and, unless
	// DisableBuiltinTools is set, list_artifacts and query_table.
	Tools []tool.Tool

	DisableBuiltinTools bool

	// Hooks receives lifecycle callbacks (optional).
	Hooks *hooks.Registry

	// Logger for structured logging.
	// If nil, logging is disabled.
	Logger Logger

	// Retention deletes artifacts older than this. Start elects one
	// instance per database to run the sweep. Zero keeps artifacts forever.
	Retention time.Duration

	// RetentionInterval is the time between sweeps.
	// Default: 10 minutes
	RetentionInterval time.Duration

	// InstanceID identifies this client in leader election.
	// Default: a random UUID
	InstanceID string
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Model:         DefaultModel,
		MaxTokens:     DefaultMaxTokens,
		MaxIterations: DefaultMaxIterations,
		ToolTimeout:   DefaultToolTimeout,
	}
}

// applyDefaults fills in default values for zero-valued fields.
func (c *ClientConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.ToolTimeout == 0 {
		c.ToolTimeout = DefaultToolTimeout
	}
	if c.Hooks == nil {
		c.Hooks = hooks.NewRegistry()
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
	if c.RetentionInterval == 0 {
		c.RetentionInterval = maintenance.DefaultSweepInterval
	}
	if c.InstanceID == "" {
		c.InstanceID = uuid.NewString()
	}
}

// validate checks the configuration for errors.
func (c *ClientConfig) validate() error {
	if c.MaxTokens < 1 {
		return fmt.Errorf("%w: MaxTokens must be positive", ErrInvalidConfig)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: MaxIterations must be positive", ErrInvalidConfig)
	}
	if c.ToolTimeout < 0 {
		return fmt.Errorf("%w: ToolTimeout must not be negative", ErrInvalidConfig)
	}
	if c.Retention < 0 || c.RetentionInterval < 0 {
		return fmt.Errorf("%w: Retention must not be negative", ErrInvalidConfig)
	}
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

package hooks

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/youssefsiam38/artifactpg/artifact"
)

// Logger is the structured logger the logging hooks write to. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LoggingHooks provides built-in logging hooks for observability
type LoggingHooks struct {
	logger Logger
}

// NewLoggingHooks creates logging hooks with the provided logger
func NewLoggingHooks(logger Logger) *LoggingHooks {
	return &LoggingHooks{logger: logger}
}

// DefaultLoggingHooks creates logging hooks with slog's default logger
func DefaultLoggingHooks() *LoggingHooks {
	return &LoggingHooks{logger: slog.Default()}
}

// Register adds every logging hook to r.
func (h *LoggingHooks) Register(r *Registry) {
	r.OnBeforeAsk(h.BeforeAsk)
	r.OnAfterAsk(h.AfterAsk)
	r.OnArtifact(h.Artifact)
	r.OnExtractError(h.ExtractError)
	r.OnToolCall(h.ToolCall)
}

// BeforeAsk logs before sending a prompt
func (h *LoggingHooks) BeforeAsk(ctx context.Context, sessionID, prompt string) error {
	h.logger.Debug("sending prompt", "session_id", sessionID, "prompt_len", len(prompt))
	return nil
}

// AfterAsk logs the reply
func (h *LoggingHooks) AfterAsk(ctx context.Context, sessionID, reply string, artifacts []*artifact.Artifact) error {
	h.logger.Info("reply received", "session_id", sessionID, "reply_len", len(reply), "artifacts", len(artifacts))
	return nil
}

// Artifact logs a saved artifact
func (h *LoggingHooks) Artifact(ctx context.Context, a *artifact.Artifact) error {
	h.logger.Info("artifact saved",
		"artifact_id", a.ID,
		"session_id", a.SessionID,
		"kind", a.Kind,
		"title", a.Title,
	)
	return nil
}

// ExtractError logs a block that could not be parsed
func (h *LoggingHooks) ExtractError(ctx context.Context, sessionID string, err error) error {
	h.logger.Warn("skipping invalid block", "session_id", sessionID, "error", err)
	return nil
}

// ToolCall logs tool execution
func (h *LoggingHooks) ToolCall(ctx context.Context, toolName string, input json.RawMessage, output string, err error) error {
	if err != nil {
		h.logger.Warn("tool failed", "tool", toolName, "error", err)
		return nil
	}
	preview := output
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	h.logger.Debug("tool succeeded", "tool", toolName, "output", preview)
	return nil
}

// MetricsHooks reports counters through a callback
type MetricsHooks struct {
	OnMetric func(name string, value float64, tags map[string]string)
}

// NewMetricsHooks creates metrics collection hooks
func NewMetricsHooks(onMetric func(string, float64, map[string]string)) *MetricsHooks {
	return &MetricsHooks{OnMetric: onMetric}
}

// Register adds the metrics hooks to r.
func (h *MetricsHooks) Register(r *Registry) {
	r.OnArtifact(h.Artifact)
	r.OnExtractError(h.ExtractError)
	r.OnToolCall(h.ToolCall)
}

// Artifact counts saved artifacts by kind
func (h *MetricsHooks) Artifact(ctx context.Context, a *artifact.Artifact) error {
	h.OnMetric("artifactpg.artifact.saved", 1, map[string]string{"kind": string(a.Kind)})
	return nil
}

// ExtractError counts invalid blocks
func (h *MetricsHooks) ExtractError(ctx context.Context, sessionID string, err error) error {
	h.OnMetric("artifactpg.extract.error", 1, nil)
	return nil
}

// ToolCall records tool execution metrics
func (h *MetricsHooks) ToolCall(ctx context.Context, toolName string, input json.RawMessage, output string, err error) error {
	tags := map[string]string{"tool": toolName}
	if err != nil {
		h.OnMetric("artifactpg.tool.error", 1, tags)
	} else {
		h.OnMetric("artifactpg.tool.success", 1, tags)
	}
	return nil
}

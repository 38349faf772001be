package artifactpg

import (
	"errors"
	"fmt"

	"github.com/youssefsiam38/artifactpg/storage"
)

// Common errors
var (
	// ErrInvalidConfig is returned when the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidSessionID is returned when a session ID is empty
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrNoModel is returned by Ask when no Anthropic client is configured
	ErrNoModel = errors.New("no Anthropic client configured")

	// ErrMaxIterations is returned when the agent keeps calling tools past
	// MaxIterations
	ErrMaxIterations = errors.New("maximum tool iterations reached")

	// ErrEmptyReply is returned when the model's final reply has no text
	ErrEmptyReply = errors.New("empty reply")

	// ErrNotFound is returned when an artifact does not exist
	ErrNotFound = storage.ErrNotFound
)

// ArtifactError represents an error with additional context
type ArtifactError struct {
	Op        string // Operation that failed
	SessionID string // Session ID if applicable
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *ArtifactError) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("%s (session=%s): %v", e.Op, e.SessionID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *ArtifactError) Unwrap() error {
	return e.Err
}

func newError(op, sessionID string, err error) *ArtifactError {
	return &ArtifactError{Op: op, SessionID: sessionID, Err: err}
}

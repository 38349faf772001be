package tool

import "errors"

var (
	// ErrToolNotFound is returned when a call names an unregistered tool.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidInput wraps schema validation failures.
	ErrInvalidInput = errors.New("invalid tool input")

	// ErrInvalidTool is returned by Register for unusable tools.
	ErrInvalidTool = errors.New("invalid tool")
)

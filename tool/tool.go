// Package tool defines the tools the artifact agent can call while composing
// a reply, and converts them to Anthropic tool parameters.
package tool

import (
	"context"
	"encoding/json"
)

// Tool is the interface that all tools must implement
type Tool interface {
	// Name returns the tool name (used in API calls)
	Name() string

	// Description tells the model when to use the tool
	Description() string

	// InputSchema returns the JSON Schema for the tool's input parameters
	InputSchema() ToolSchema

	// Execute runs the tool. The returned string is sent back to the model
	// as the tool result.
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// ToolSchema is the JSON Schema of a tool's input. Type must be "object".
type ToolSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]PropertyDef `json:"properties"`
	Required   []string               `json:"required,omitempty"`
}

// PropertyDef defines a single property in the tool schema
type PropertyDef struct {
	// Type is the JSON Schema type (string, number, integer, boolean, array, object)
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`

	// Items applies when Type is "array"
	Items *PropertyDef `json:"items,omitempty"`

	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
}

// Ptr returns a pointer to v, for the optional schema bounds.
func Ptr[T any](v T) *T {
	return &v
}

type funcTool struct {
	name        string
	description string
	schema      ToolSchema
	fn          func(context.Context, json.RawMessage) (string, error)
}

func (t *funcTool) Name() string            { return t.name }
func (t *funcTool) Description() string     { return t.description }
func (t *funcTool) InputSchema() ToolSchema { return t.schema }

func (t *funcTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	return t.fn(ctx, input)
}

// NewFuncTool creates a Tool from a function
func NewFuncTool(
	name string,
	description string,
	schema ToolSchema,
	fn func(context.Context, json.RawMessage) (string, error),
) Tool {
	return &funcTool{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

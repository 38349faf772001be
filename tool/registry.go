package tool

import (
	"fmt"
	"slices"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
)

// Registry manages tools and converts them to Anthropic format
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("%w: nil tool", ErrInvalidTool)
	}

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTool)
	}
	if schema := tool.InputSchema(); schema.Type != "object" {
		return fmt.Errorf("%w: %s: schema type must be 'object', got %q", ErrInvalidTool, name, schema.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s already registered", ErrInvalidTool, name)
	}
	r.tools[name] = tool
	return nil
}

// RegisterAll adds multiple tools to the registry
func (r *Registry) RegisterAll(tools ...Tool) error {
	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns the registered tool names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// ToAnthropicToolUnions converts the registered tools, sorted by name, to
// request parameters.
func (r *Registry) ToAnthropicToolUnions() []anthropic.ToolUnionParam {
	names := r.List()
	unions := make([]anthropic.ToolUnionParam, 0, len(names))
	for _, name := range names {
		tool, ok := r.Get(name)
		if !ok {
			continue
		}
		param := toParam(tool)
		unions = append(unions, anthropic.ToolUnionParam{OfTool: &param})
	}
	return unions
}

func toParam(tool Tool) anthropic.ToolParam {
	schema := tool.InputSchema()

	properties := make(map[string]any, len(schema.Properties))
	for name, def := range schema.Properties {
		properties[name] = propertyMap(def)
	}

	inputSchema := anthropic.ToolInputSchemaParam{
		Type:       constant.Object("object"),
		Properties: properties,
	}
	if len(schema.Required) > 0 {
		inputSchema.Required = schema.Required
	}

	return anthropic.ToolParam{
		Name:        tool.Name(),
		Description: anthropic.String(tool.Description()),
		InputSchema: inputSchema,
	}
}

func propertyMap(def PropertyDef) map[string]any {
	prop := map[string]any{"type": def.Type}
	if def.Description != "" {
		prop["description"] = def.Description
	}
	if len(def.Enum) > 0 {
		prop["enum"] = def.Enum
	}
	if def.Minimum != nil {
		prop["minimum"] = *def.Minimum
	}
	if def.Maximum != nil {
		prop["maximum"] = *def.Maximum
	}
	if def.MaxLength != nil {
		prop["maxLength"] = *def.MaxLength
	}
	if def.Items != nil {
		prop["items"] = propertyMap(*def.Items)
	}
	return prop
}

package artifactpg

import (
	"fmt"
	"slices"
	"sync"

	"github.com/youssefsiam38/artifactpg/tool"
)

// Global tool registry, populated at init() time and copied into every
// Client created afterwards.
var (
	globalToolsMu sync.RWMutex
	globalTools   = make(map[string]tool.Tool)
)

// RegisterTool registers a tool globally.
//
// Example:
//
//	func init() {
//	    artifactpg.MustRegisterTool(&WeatherTool{})
//	}
func RegisterTool(t tool.Tool) error {
	if t == nil {
		return fmt.Errorf("%w: tool is nil", ErrInvalidConfig)
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("%w: tool name is required", ErrInvalidConfig)
	}

	globalToolsMu.Lock()
	defer globalToolsMu.Unlock()

	if _, exists := globalTools[name]; exists {
		return fmt.Errorf("%w: tool %q already registered", ErrInvalidConfig, name)
	}
	globalTools[name] = t
	return nil
}

// MustRegisterTool is like RegisterTool but panics on error.
func MustRegisterTool(t tool.Tool) {
	if err := RegisterTool(t); err != nil {
		panic(err)
	}
}

// GetRegisteredTool returns a globally registered tool.
func GetRegisteredTool(name string) (tool.Tool, bool) {
	globalToolsMu.RLock()
	defer globalToolsMu.RUnlock()
	t, ok := globalTools[name]
	return t, ok
}

// ListRegisteredTools returns the names of all global tools, sorted.
func ListRegisteredTools() []string {
	globalToolsMu.RLock()
	names := make([]string, 0, len(globalTools))
	for name := range globalTools {
		names = append(names, name)
	}
	globalToolsMu.RUnlock()

	slices.Sort(names)
	return names
}

// ClearRegistry removes all global tools. Intended for tests.
func ClearRegistry() {
	globalToolsMu.Lock()
	defer globalToolsMu.Unlock()
	globalTools = make(map[string]tool.Tool)
}

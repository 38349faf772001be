package artifactpg

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/youssefsiam38/artifactpg/tool"
)

// mockTool for testing
type mockTool struct {
	name   string
	output string
}

func (m *mockTool) Name() string        { return m.name }
func (m *mockTool) Description() string { return "A mock tool" }
func (m *mockTool) InputSchema() tool.ToolSchema {
	return tool.ToolSchema{
		Type:       "object",
		Properties: map[string]tool.PropertyDef{},
	}
}
func (m *mockTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	if m.output == "" {
		return "mock result", nil
	}
	return m.output, nil
}

func TestRegisterTool(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	mock := &mockTool{name: "test-tool"}
	if err := RegisterTool(mock); err != nil {
		t.Fatalf("RegisterTool() error = %v", err)
	}

	retrieved, ok := GetRegisteredTool("test-tool")
	if !ok {
		t.Fatal("GetRegisteredTool() returned false")
	}
	if retrieved.Name() != mock.name {
		t.Errorf("Name = %v, want %v", retrieved.Name(), mock.name)
	}

	if err := RegisterTool(mock); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("duplicate registration error = %v", err)
	}
}

func TestRegisterTool_Invalid(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	if err := RegisterTool(nil); err == nil {
		t.Error("Expected error for nil tool")
	}
	if err := RegisterTool(&mockTool{name: ""}); err == nil {
		t.Error("Expected error for empty tool name")
	}
}

func TestMustRegisterTool_Panic(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	defer func() {
		if recover() == nil {
			t.Error("MustRegisterTool did not panic")
		}
	}()
	MustRegisterTool(nil)
}

func TestListRegisteredTools(t *testing.T) {
	ClearRegistry()
	defer ClearRegistry()

	MustRegisterTool(&mockTool{name: "tool-b"})
	MustRegisterTool(&mockTool{name: "tool-a"})

	if diff := cmp.Diff([]string{"tool-a", "tool-b"}, ListRegisteredTools()); diff != "" {
		t.Errorf("ListRegisteredTools() mismatch (-want +got):\n%s", diff)
	}

	ClearRegistry()
	if len(ListRegisteredTools()) != 0 {
		t.Error("Expected no tools after clear")
	}
}

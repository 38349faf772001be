package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/youssefsiam38/artifactpg/hooks"
)

func emptySchema() ToolSchema {
	return ToolSchema{Type: "object", Properties: map[string]PropertyDef{}}
}

func TestExecuteParallel_NoRaceCondition(t *testing.T) {
	registry := NewRegistry()

	var counter int32
	counterTool := NewFuncTool("counter", "Increments counter", emptySchema(),
		func(ctx context.Context, input json.RawMessage) (string, error) {
			n := atomic.AddInt32(&counter, 1)
			time.Sleep(time.Millisecond * time.Duration(1+n%5))
			return "done", nil
		},
	)
	if err := registry.Register(counterTool); err != nil {
		t.Fatalf("Failed to register tool: %v", err)
	}

	executor := NewExecutor(registry, nil)

	numCalls := 50
	calls := make([]Call, numCalls)
	for i := range calls {
		calls[i] = Call{ID: fmt.Sprintf("call-%d", i), ToolName: "counter", Input: json.RawMessage(`{}`)}
	}

	results := executor.ExecuteParallel(context.Background(), calls)
	if len(results) != numCalls {
		t.Fatalf("Expected %d results, got %d", numCalls, len(results))
	}
	for i, r := range results {
		if r == nil {
			t.Fatalf("Result %d is nil", i)
		}
		if r.Error != nil {
			t.Errorf("Result %d has error: %v", i, r.Error)
		}
		if r.Call.ID != calls[i].ID {
			t.Errorf("Result %d belongs to %s", i, r.Call.ID)
		}
	}
	if got := atomic.LoadInt32(&counter); got != int32(numCalls) {
		t.Errorf("Expected counter %d, got %d", numCalls, got)
	}
}

func TestExecuteParallel_EmptyCalls(t *testing.T) {
	executor := NewExecutor(NewRegistry(), nil)
	if results := executor.ExecuteParallel(context.Background(), nil); len(results) != 0 {
		t.Errorf("Expected 0 results, got %d", len(results))
	}
}

func TestExecute_Timeout(t *testing.T) {
	registry := NewRegistry()
	slowTool := NewFuncTool("slow", "A slow tool", emptySchema(),
		func(ctx context.Context, input json.RawMessage) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(5 * time.Second):
				return "done", nil
			}
		},
	)
	if err := registry.Register(slowTool); err != nil {
		t.Fatalf("Failed to register tool: %v", err)
	}

	executor := NewExecutor(registry, nil)
	executor.SetTimeout(50 * time.Millisecond)

	result := executor.Execute(context.Background(), Call{ToolName: "slow", Input: json.RawMessage(`{}`)})
	if result.Error == nil {
		t.Fatal("Expected timeout error, got nil")
	}
	if got := result.Content(); got[:6] != "Error:" {
		t.Errorf("Content() = %q", got)
	}
}

func TestExecute_ToolNotFound(t *testing.T) {
	executor := NewExecutor(NewRegistry(), nil)
	result := executor.Execute(context.Background(), Call{ToolName: "nonexistent", Input: json.RawMessage(`{}`)})
	if !errors.Is(result.Error, ErrToolNotFound) {
		t.Errorf("Error = %v, want ErrToolNotFound", result.Error)
	}
}

func TestExecute_InvalidInputNeverRuns(t *testing.T) {
	registry := NewRegistry()
	ran := false
	_ = registry.Register(NewFuncTool("paged", "", ToolSchema{
		Type:       "object",
		Properties: map[string]PropertyDef{"page": {Type: "integer", Minimum: Ptr(1.0)}},
		Required:   []string{"page"},
	}, func(ctx context.Context, input json.RawMessage) (string, error) {
		ran = true
		return "", nil
	}))

	executor := NewExecutor(registry, nil)
	result := executor.Execute(context.Background(), Call{ToolName: "paged", Input: json.RawMessage(`{"page": 0}`)})
	if !errors.Is(result.Error, ErrInvalidInput) {
		t.Errorf("Error = %v, want ErrInvalidInput", result.Error)
	}
	if ran {
		t.Error("tool ran with invalid input")
	}
}

func TestExecute_TriggersHooks(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(NewFuncTool("echo", "", emptySchema(),
		func(ctx context.Context, input json.RawMessage) (string, error) {
			return "pong", nil
		}))

	h := hooks.NewRegistry()
	var gotName, gotOutput string
	h.OnToolCall(func(ctx context.Context, name string, input json.RawMessage, output string, err error) error {
		gotName, gotOutput = name, output
		return errors.New("ignored")
	})

	result := NewExecutor(registry, h).Execute(context.Background(), Call{ToolName: "echo"})
	if result.Error != nil {
		t.Fatalf("Error = %v", result.Error)
	}
	if gotName != "echo" || gotOutput != "pong" {
		t.Errorf("hook got (%q, %q)", gotName, gotOutput)
	}
}

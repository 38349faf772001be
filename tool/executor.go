package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/youssefsiam38/artifactpg/hooks"
)

// DefaultTimeout bounds a single tool execution.
const DefaultTimeout = 30 * time.Second

// Executor validates and runs tool calls with a timeout, reporting each call
// to the tool-call hooks.
type Executor struct {
	registry *Registry
	hooks    *hooks.Registry
	timeout  time.Duration
}

// NewExecutor creates a tool executor. hooks may be nil.
func NewExecutor(registry *Registry, h *hooks.Registry) *Executor {
	return &Executor{
		registry: registry,
		hooks:    h,
		timeout:  DefaultTimeout,
	}
}

// SetTimeout sets the per-call timeout
func (e *Executor) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		e.timeout = timeout
	}
}

// Call is one tool invocation requested by the model
type Call struct {
	ID       string
	ToolName string
	Input    json.RawMessage
}

// Result is the outcome of a Call
type Result struct {
	Call     Call
	Output   string
	Error    error
	Duration time.Duration
}

// Content returns the text sent back to the model: the output, or the error
// message when the call failed.
func (r *Result) Content() string {
	if r.Error != nil {
		return "Error: " + r.Error.Error()
	}
	return r.Output
}

// Execute runs a single call
func (e *Executor) Execute(ctx context.Context, call Call) *Result {
	start := time.Now()
	result := &Result{Call: call}

	result.Output, result.Error = e.run(ctx, call)
	result.Duration = time.Since(start)

	if e.hooks != nil {
		// Hook errors are observational and never fail the call.
		_ = e.hooks.TriggerToolCall(ctx, call.ToolName, call.Input, result.Output, result.Error)
	}
	return result
}

func (e *Executor) run(ctx context.Context, call Call) (string, error) {
	tool, ok := e.registry.Get(call.ToolName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, call.ToolName)
	}
	if err := Validate(tool.InputSchema(), call.Input); err != nil {
		return "", err
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	output, err := tool.Execute(execCtx, call.Input)
	if ctxErr := execCtx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("tool execution timeout after %v", e.timeout)
		}
		return "", fmt.Errorf("tool execution canceled: %w", ctxErr)
	}
	return output, err
}

// ExecuteParallel runs calls concurrently. Results keep the order of calls.
func (e *Executor) ExecuteParallel(ctx context.Context, calls []Call) []*Result {
	results := make([]*Result, len(calls))

	var wg sync.WaitGroup
	wg.Add(len(calls))
	for i, call := range calls {
		go func() {
			defer wg.Done()
			results[i] = e.Execute(ctx, call)
		}()
	}
	wg.Wait()
	return results
}

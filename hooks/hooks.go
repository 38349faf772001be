// Package hooks lets callers observe the artifact lifecycle: asks sent to the
// model, artifacts produced from replies, blocks that failed to parse and
// tool calls made by the agent.
package hooks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/youssefsiam38/artifactpg/artifact"
)

// BeforeAskHook is called before a prompt is sent to the model
type BeforeAskHook func(ctx context.Context, sessionID, prompt string) error

// AfterAskHook is called with the final reply text and the artifacts
// extracted from it
type AfterAskHook func(ctx context.Context, sessionID, reply string, artifacts []*artifact.Artifact) error

// ArtifactHook is called once per persisted artifact, after commit
type ArtifactHook func(ctx context.Context, a *artifact.Artifact) error

// ExtractErrorHook is called for each block that could not be parsed
type ExtractErrorHook func(ctx context.Context, sessionID string, err error) error

// ToolCallHook is called when a tool is executed
// Parameters: ctx, toolName, input, output, error
type ToolCallHook func(ctx context.Context, toolName string, input json.RawMessage, output string, err error) error

// Registry holds all registered hooks
type Registry struct {
	mu           sync.RWMutex
	beforeAsk    []BeforeAskHook
	afterAsk     []AfterAskHook
	artifact     []ArtifactHook
	extractError []ExtractErrorHook
	toolCall     []ToolCallHook
}

// NewRegistry creates a new hook registry
func NewRegistry() *Registry {
	return &Registry{}
}

// OnBeforeAsk registers a hook to be called before a prompt is sent
func (r *Registry) OnBeforeAsk(hook BeforeAskHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeAsk = append(r.beforeAsk, hook)
}

// OnAfterAsk registers a hook to be called after the final reply
func (r *Registry) OnAfterAsk(hook AfterAskHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterAsk = append(r.afterAsk, hook)
}

// OnArtifact registers a hook to be called for every saved artifact
func (r *Registry) OnArtifact(hook ArtifactHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifact = append(r.artifact, hook)
}

// OnExtractError registers a hook to be called for every invalid block
func (r *Registry) OnExtractError(hook ExtractErrorHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractError = append(r.extractError, hook)
}

// OnToolCall registers a hook to be called when a tool is executed
func (r *Registry) OnToolCall(hook ToolCallHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toolCall = append(r.toolCall, hook)
}

// snapshot copies a hook slice under the read lock.
func snapshot[H any](r *Registry, hooks *[]H) []H {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]H(nil), (*hooks)...)
}

// TriggerBeforeAsk calls all registered before-ask hooks. The first error
// aborts the ask.
func (r *Registry) TriggerBeforeAsk(ctx context.Context, sessionID, prompt string) error {
	for _, hook := range snapshot(r, &r.beforeAsk) {
		if err := hook(ctx, sessionID, prompt); err != nil {
			return err
		}
	}
	return nil
}

// TriggerAfterAsk calls all registered after-ask hooks
func (r *Registry) TriggerAfterAsk(ctx context.Context, sessionID, reply string, artifacts []*artifact.Artifact) error {
	for _, hook := range snapshot(r, &r.afterAsk) {
		if err := hook(ctx, sessionID, reply, artifacts); err != nil {
			return err
		}
	}
	return nil
}

// TriggerArtifact calls all registered artifact hooks for a
func (r *Registry) TriggerArtifact(ctx context.Context, a *artifact.Artifact) error {
	for _, hook := range snapshot(r, &r.artifact) {
		if err := hook(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// TriggerExtractError calls all registered extract-error hooks
func (r *Registry) TriggerExtractError(ctx context.Context, sessionID string, extractErr error) error {
	for _, hook := range snapshot(r, &r.extractError) {
		if err := hook(ctx, sessionID, extractErr); err != nil {
			return err
		}
	}
	return nil
}

// TriggerToolCall calls all registered tool-call hooks
func (r *Registry) TriggerToolCall(ctx context.Context, toolName string, input json.RawMessage, output string, err error) error {
	for _, hook := range snapshot(r, &r.toolCall) {
		if hookErr := hook(ctx, toolName, input, output, err); hookErr != nil {
			return hookErr
		}
	}
	return nil
}

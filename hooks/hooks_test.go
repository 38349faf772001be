package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/youssefsiam38/artifactpg/artifact"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if err := r.TriggerBeforeAsk(context.Background(), "s", "p"); err != nil {
		t.Errorf("empty registry returned error: %v", err)
	}
}

func TestOnBeforeAsk(t *testing.T) {
	r := NewRegistry()
	var gotSession, gotPrompt string

	r.OnBeforeAsk(func(ctx context.Context, sessionID, prompt string) error {
		gotSession, gotPrompt = sessionID, prompt
		return nil
	})

	if err := r.TriggerBeforeAsk(context.Background(), "session-123", "show sales"); err != nil {
		t.Errorf("TriggerBeforeAsk returned error: %v", err)
	}
	if gotSession != "session-123" || gotPrompt != "show sales" {
		t.Errorf("got (%q, %q)", gotSession, gotPrompt)
	}
}

func TestOnAfterAsk(t *testing.T) {
	r := NewRegistry()
	var gotCount int

	r.OnAfterAsk(func(ctx context.Context, sessionID, reply string, artifacts []*artifact.Artifact) error {
		gotCount = len(artifacts)
		return nil
	})

	arts := []*artifact.Artifact{{Kind: artifact.KindTable}, {Kind: artifact.KindChart}}
	if err := r.TriggerAfterAsk(context.Background(), "s", "reply", arts); err != nil {
		t.Errorf("TriggerAfterAsk returned error: %v", err)
	}
	if gotCount != 2 {
		t.Errorf("expected 2 artifacts, got %d", gotCount)
	}
}

func TestOnArtifact(t *testing.T) {
	r := NewRegistry()
	var got *artifact.Artifact

	r.OnArtifact(func(ctx context.Context, a *artifact.Artifact) error {
		got = a
		return nil
	})

	a := &artifact.Artifact{Kind: artifact.KindDiagram, Title: "Flow"}
	if err := r.TriggerArtifact(context.Background(), a); err != nil {
		t.Errorf("TriggerArtifact returned error: %v", err)
	}
	if got != a {
		t.Error("artifact was not passed to hook")
	}
}

func TestOnExtractError(t *testing.T) {
	r := NewRegistry()
	blockErr := errors.New("bad block")
	var got error

	r.OnExtractError(func(ctx context.Context, sessionID string, err error) error {
		got = err
		return nil
	})

	if err := r.TriggerExtractError(context.Background(), "s", blockErr); err != nil {
		t.Errorf("TriggerExtractError returned error: %v", err)
	}
	if !errors.Is(got, blockErr) {
		t.Errorf("got %v", got)
	}
}

func TestOnToolCall(t *testing.T) {
	r := NewRegistry()
	var capturedName string
	var capturedOutput string

	r.OnToolCall(func(ctx context.Context, name string, input json.RawMessage, output string, err error) error {
		capturedName = name
		capturedOutput = output
		return nil
	})

	err := r.TriggerToolCall(context.Background(), "query_table", nil, "test output", nil)
	if err != nil {
		t.Errorf("TriggerToolCall returned error: %v", err)
	}
	if capturedName != "query_table" {
		t.Errorf("expected name 'query_table', got '%s'", capturedName)
	}
	if capturedOutput != "test output" {
		t.Errorf("expected output 'test output', got '%s'", capturedOutput)
	}
}

func TestHookStopsOnError(t *testing.T) {
	r := NewRegistry()
	called := []int{}
	expectedErr := errors.New("stop here")

	r.OnBeforeAsk(func(ctx context.Context, sessionID, prompt string) error {
		called = append(called, 1)
		return nil
	})
	r.OnBeforeAsk(func(ctx context.Context, sessionID, prompt string) error {
		called = append(called, 2)
		return expectedErr
	})
	r.OnBeforeAsk(func(ctx context.Context, sessionID, prompt string) error {
		called = append(called, 3)
		return nil
	})

	err := r.TriggerBeforeAsk(context.Background(), "s", "p")
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if len(called) != 2 || called[0] != 1 || called[1] != 2 {
		t.Errorf("called = %v, want [1 2]", called)
	}
}

func TestConcurrentRegistrationAndTrigger(t *testing.T) {
	r := NewRegistry()
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		count int
	)

	for i := 0; i < 10; i++ {
		r.OnArtifact(func(ctx context.Context, a *artifact.Artifact) error {
			mu.Lock()
			count++
			mu.Unlock()
			return nil
		})
	}

	wg.Add(200)
	for i := 0; i < 100; i++ {
		go func() {
			defer wg.Done()
			r.OnArtifact(func(ctx context.Context, a *artifact.Artifact) error {
				return nil
			})
		}()
		go func() {
			defer wg.Done()
			_ = r.TriggerArtifact(context.Background(), &artifact.Artifact{})
		}()
	}
	wg.Wait()

	if count != 1000 {
		t.Errorf("expected 1000 calls of the pre-registered hooks, got %d", count)
	}
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := NewRegistry()
	NewLoggingHooks(logger).Register(r)

	ctx := context.Background()
	_ = r.TriggerArtifact(ctx, &artifact.Artifact{SessionID: "s1", Kind: artifact.KindChart, Title: "Sales"})
	_ = r.TriggerExtractError(ctx, "s1", errors.New("invalid json"))
	_ = r.TriggerToolCall(ctx, "query_table", nil, strings.Repeat("x", 200), nil)

	out := buf.String()
	for _, want := range []string{
		`msg="artifact saved"`, "kind=chart", "title=Sales",
		`msg="skipping invalid block"`, `error="invalid json"`,
		`msg="tool succeeded"`, "...",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestMetricsHooks(t *testing.T) {
	metrics := map[string]float64{}
	r := NewRegistry()
	NewMetricsHooks(func(name string, v float64, tags map[string]string) {
		metrics[name] += v
	}).Register(r)

	ctx := context.Background()
	_ = r.TriggerArtifact(ctx, &artifact.Artifact{Kind: artifact.KindTable})
	_ = r.TriggerArtifact(ctx, &artifact.Artifact{Kind: artifact.KindTable})
	_ = r.TriggerToolCall(ctx, "list_artifacts", nil, "", errors.New("boom"))

	if metrics["artifactpg.artifact.saved"] != 2 {
		t.Errorf("saved = %v", metrics["artifactpg.artifact.saved"])
	}
	if metrics["artifactpg.tool.error"] != 1 {
		t.Errorf("tool.error = %v", metrics["artifactpg.tool.error"])
	}
}

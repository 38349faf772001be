package artifactpg

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/extract"
	"github.com/youssefsiam38/artifactpg/tool"
)

// Usage counts the tokens spent by one Ask.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// AskResult is the outcome of Ask.
type AskResult struct {
	// MessageID is the ID of the final model response.
	MessageID string

	// Reply is the full final text, blocks included.
	Reply string

	// Text is Reply with the visualization blocks removed.
	Text string

	Artifacts []*artifact.Artifact

	// Errors lists blocks of the reply that could not be parsed.
	Errors []error

	// Iterations is the number of model calls made.
	Iterations int

	Usage Usage
}

// Ask sends prompt to the model with the artifact instructions and the
// registered tools, executes tool calls until the model stops asking for
// them, and ingests the final reply for sessionID.
func (c *Client[TTx]) Ask(ctx context.Context, sessionID, prompt string) (*AskResult, error) {
	if c.messages == nil {
		return nil, newError("ask", sessionID, ErrNoModel)
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, newError("ask", sessionID, ErrInvalidSessionID)
	}
	if err := c.config.Hooks.TriggerBeforeAsk(ctx, sessionID, prompt); err != nil {
		return nil, newError("ask", sessionID, err)
	}

	toolCtx := tool.WithSessionID(ctx, sessionID)
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}
	result := &AskResult{}

	for {
		if result.Iterations >= c.config.MaxIterations {
			return nil, newError("ask", sessionID, ErrMaxIterations)
		}
		result.Iterations++

		resp, err := c.messages.New(ctx, c.buildParams(messages))
		if err != nil {
			return nil, newError("ask", sessionID, fmt.Errorf("failed to call model: %w", err))
		}
		result.Usage.InputTokens += resp.Usage.InputTokens
		result.Usage.OutputTokens += resp.Usage.OutputTokens

		reply, calls, assistant := readResponse(resp)
		if len(calls) == 0 {
			result.MessageID = resp.ID
			result.Reply = reply
			break
		}

		c.config.Logger.Debug("executing tools", "session_id", sessionID, "count", len(calls))
		messages = append(messages, anthropic.NewAssistantMessage(assistant...))

		results := c.executor.ExecuteParallel(toolCtx, calls)
		blocks := make([]anthropic.ContentBlockParamUnion, len(results))
		for i, r := range results {
			blocks[i] = anthropic.NewToolResultBlock(r.Call.ID, r.Content(), r.Error != nil)
		}
		messages = append(messages, anthropic.NewUserMessage(blocks...))
	}

	if strings.TrimSpace(result.Reply) == "" {
		return nil, newError("ask", sessionID, ErrEmptyReply)
	}

	ingested, err := c.Ingest(ctx, sessionID, result.MessageID, result.Reply)
	if err != nil {
		return nil, err
	}
	result.Text = ingested.Text
	result.Artifacts = ingested.Artifacts
	result.Errors = ingested.Errors

	if err := c.config.Hooks.TriggerAfterAsk(ctx, sessionID, result.Reply, result.Artifacts); err != nil {
		c.config.Logger.Warn("after-ask hook failed", "session_id", sessionID, "error", err)
	}
	return result, nil
}

func (c *Client[TTx]) buildParams(messages []anthropic.MessageParam) anthropic.MessageNewParams {
	system := extract.SystemInstructions
	if c.config.SystemPrompt != "" {
		system = c.config.SystemPrompt + "\n\n" + system
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: c.config.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  messages,
	}
	if tools := c.tools.ToAnthropicToolUnions(); len(tools) > 0 {
		params.Tools = tools
	}
	return params
}

// readResponse collects the text and tool calls of resp, and the content to
// echo back as the assistant turn.
func readResponse(resp *anthropic.Message) (string, []tool.Call, []anthropic.ContentBlockParamUnion) {
	var (
		text      strings.Builder
		calls     []tool.Call
		assistant []anthropic.ContentBlockParamUnion
	)
	for _, block := range resp.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(block.Text)
			assistant = append(assistant, anthropic.NewTextBlock(block.Text))
		case anthropic.ToolUseBlock:
			calls = append(calls, tool.Call{ID: block.ID, ToolName: block.Name, Input: block.Input})
			assistant = append(assistant, anthropic.NewToolUseBlock(block.ID, block.Input, block.Name))
		}
	}
	return text.String(), calls, assistant
}

package artifactpg

import (
	"context"
	"strings"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/extract"
)

// IngestResult is the outcome of ingesting one message.
type IngestResult struct {
	// Artifacts were saved, in document order.
	Artifacts []*artifact.Artifact

	// Errors lists the blocks that could not be parsed. Each is an
	// *extract.BlockError. They do not fail the ingest.
	Errors []error

	// Text is the message with the visualization blocks removed.
	Text string
}

// Ingest extracts the visualization blocks from content and saves them for
// sessionID in one transaction. Either every valid block is saved or none
// is. Artifact hooks run after the save.
func (c *Client[TTx]) Ingest(ctx context.Context, sessionID, messageID, content string) (*IngestResult, error) {
	res, err := c.ingest(ctx, sessionID, messageID, content)
	if err != nil {
		return nil, err
	}
	c.triggerArtifacts(ctx, res.Artifacts)
	return res, nil
}

// IngestTx is like Ingest but joins the caller's transaction. The artifacts
// become visible, and listeners are notified, when the caller commits. Artifact
// hooks run before that commit.
func (c *Client[TTx]) IngestTx(ctx context.Context, tx TTx, sessionID, messageID, content string) (*IngestResult, error) {
	txCtx := driver.WithExecutor(ctx, c.driver.UnwrapExecutor(tx))
	res, err := c.ingest(txCtx, sessionID, messageID, content)
	if err != nil {
		return nil, err
	}
	c.triggerArtifacts(ctx, res.Artifacts)
	return res, nil
}

func (c *Client[TTx]) ingest(ctx context.Context, sessionID, messageID, content string) (*IngestResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, newError("ingest", sessionID, ErrInvalidSessionID)
	}

	arts, errs := extract.Parse(content)
	for _, err := range errs {
		c.config.Logger.Warn("skipping invalid block", "session_id", sessionID, "error", err)
		_ = c.config.Hooks.TriggerExtractError(ctx, sessionID, err)
	}

	for _, a := range arts {
		a.SessionID = sessionID
		a.MessageID = messageID
	}
	if len(arts) > 0 {
		if err := c.store.SaveArtifacts(ctx, arts); err != nil {
			return nil, newError("ingest", sessionID, err)
		}
		c.config.Logger.Debug("artifacts saved", "session_id", sessionID, "count", len(arts))
	}

	return &IngestResult{
		Artifacts: arts,
		Errors:    errs,
		Text:      extract.Strip(content),
	}, nil
}

func (c *Client[TTx]) triggerArtifacts(ctx context.Context, arts []*artifact.Artifact) {
	for _, a := range arts {
		if err := c.config.Hooks.TriggerArtifact(ctx, a); err != nil {
			c.config.Logger.Warn("artifact hook failed", "artifact_id", a.ID, "error", err)
		}
	}
}

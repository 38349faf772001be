package service

import (
	"context"
	"fmt"
)

// Ingest extracts and saves the visualizations of an assistant message.
func (s *Service) Ingest(ctx context.Context, sessionID, messageID, content string) (*IngestResult, error) {
	if s.client == nil {
		return nil, ErrClientRequired
	}
	res, err := s.client.Ingest(ctx, sessionID, messageID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest message: %w", err)
	}
	return &IngestResult{
		Artifacts: summarizeAll(res.Artifacts),
		Errors:    errorStrings(res.Errors),
		Text:      res.Text,
	}, nil
}

// Ask sends a prompt to the model and returns the reply with the
// artifacts it produced.
func (s *Service) Ask(ctx context.Context, sessionID, prompt string) (*AskResult, error) {
	if s.client == nil {
		return nil, ErrClientRequired
	}
	if !s.client.CanAsk() {
		return nil, ErrAskDisabled
	}
	res, err := s.client.Ask(ctx, sessionID, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to ask: %w", err)
	}
	return &AskResult{
		SessionID:  sessionID,
		Text:       res.Text,
		Artifacts:  summarizeAll(res.Artifacts),
		Errors:     errorStrings(res.Errors),
		Iterations: res.Iterations,
	}, nil
}

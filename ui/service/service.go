package service

import (
	"context"
	"errors"

	"github.com/youssefsiam38/artifactpg"
	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/panel"
	"github.com/youssefsiam38/artifactpg/storage"
)

// Client is the part of *artifactpg.Client the UI needs. It is satisfied by
// every driver's client.
type Client interface {
	CanAsk() bool
	Ask(ctx context.Context, sessionID, prompt string) (*artifactpg.AskResult, error)
	Ingest(ctx context.Context, sessionID, messageID, content string) (*artifactpg.IngestResult, error)
	Subscribe(fn func(driver.ArtifactEvent)) func()
}

// Service provides artifact operations for the UI.
type Service struct {
	store    storage.Store
	client   Client
	panels   panel.Controller
	pageSize int
}

// New creates a new Service. client may be nil, which disables ingest and
// ask. A nil panel controller is replaced by an in-memory one.
func New(store storage.Store, client Client, panels panel.Controller, pageSize int) *Service {
	if panels == nil {
		panels = panel.NewMemory()
	}
	return &Service{
		store:    store,
		client:   client,
		panels:   panels,
		pageSize: pageSize,
	}
}

// Store returns the underlying store.
func (s *Service) Store() storage.Store {
	return s.store
}

// Client returns the client, or nil.
func (s *Service) Client() Client {
	return s.client
}

// CanAsk reports whether Ask will reach a model.
func (s *Service) CanAsk() bool {
	return s.client != nil && s.client.CanAsk()
}

// PageSize is the number of table rows per page.
func (s *Service) PageSize() int {
	return s.pageSize
}

func notFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

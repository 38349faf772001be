package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssefsiam38/artifactpg"
	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/driver/databasesql"
	"github.com/youssefsiam38/artifactpg/driver/memory"
	"github.com/youssefsiam38/artifactpg/driver/pgxv5"
	"github.com/youssefsiam38/artifactpg/internal/config"
	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/ui"
)

// backend is the part of *artifactpg.Client the commands use, independent
// of the driver's transaction type.
type backend interface {
	ui.Client
	Store() storage.Store
	Migrate(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// openBackend connects the configured store and builds a client on it. The
// returned close function releases the database connection.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		be, err := newClient(memory.New(), cfg, logger)
		return be, func() {}, err

	case config.DriverPgx:
		pool, err := pgxpool.New(ctx, cfg.Store.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		be, err := newClient(pgxv5.New(pool), cfg, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return be, pool.Close, nil

	case config.DriverSQL:
		db, err := sql.Open("postgres", cfg.Store.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		be, err := newClient(databasesql.New(db, cfg.Store.URL), cfg, logger)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return be, func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.Store.Driver)
}

func newClient[TTx any](drv driver.Driver[TTx], cfg *config.Config, logger *slog.Logger) (*artifactpg.Client[TTx], error) {
	client, err := artifactpg.NewClient(drv, &artifactpg.ClientConfig{
		APIKey:    cfg.Anthropic.APIKey,
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Retention: cfg.GetRetention(),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

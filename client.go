package artifactpg

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/driver"
	"github.com/youssefsiam38/artifactpg/hooks"
	"github.com/youssefsiam38/artifactpg/leadership"
	"github.com/youssefsiam38/artifactpg/maintenance"
	"github.com/youssefsiam38/artifactpg/notifier"
	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/tool"
	"github.com/youssefsiam38/artifactpg/tool/builtin"
)

// Version is the current artifactpg version
const Version = "0.1.0"

// Messenger sends one Messages API request. The Messages service of an
// anthropic.Client satisfies it.
type Messenger interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Client extracts, stores and serves artifacts, and runs the artifact agent.
//
// TTx is the native transaction type from the driver (e.g., pgx.Tx, *sql.Tx).
type Client[TTx any] struct {
	driver   driver.Driver[TTx]
	store    storage.Store
	messages Messenger
	config   *ClientConfig

	tools    *tool.Registry
	executor *tool.Executor
	notifier *notifier.Notifier

	// Set when Retention is configured.
	elector *leadership.Elector
	sweeper *maintenance.Sweeper
}

// NewClient creates a client with the given driver and configuration.
// The transaction type TTx is inferred from the driver argument.
//
// Example:
//
//	drv := pgxv5.New(pool)
//	client, err := artifactpg.NewClient(drv, &artifactpg.ClientConfig{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := client.Ask(ctx, sessionID, "Chart revenue by quarter")
func NewClient[TTx any](drv driver.Driver[TTx], config *ClientConfig) (*Client[TTx], error) {
	if drv == nil {
		return nil, fmt.Errorf("%w: driver is required", ErrInvalidConfig)
	}
	if !drv.PoolIsSet() {
		return nil, fmt.Errorf("%w: driver pool is not set", ErrInvalidConfig)
	}

	if config == nil {
		config = DefaultClientConfig()
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	messages := config.Messages
	if messages == nil && config.APIKey != "" {
		ac := anthropic.NewClient(option.WithAPIKey(config.APIKey))
		messages = &ac.Messages
	}

	store := drv.GetStore()

	tools := tool.NewRegistry()
	for _, name := range ListRegisteredTools() {
		t, _ := GetRegisteredTool(name)
		if err := tools.Register(t); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if !config.DisableBuiltinTools {
		if err := tools.RegisterAll(builtin.Tools(store)...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if err := tools.RegisterAll(config.Tools...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	executor := tool.NewExecutor(tools, config.Hooks)
	executor.SetTimeout(config.ToolTimeout)

	c := &Client[TTx]{
		driver:   drv,
		store:    store,
		messages: messages,
		config:   config,
		tools:    tools,
		executor: executor,
	}

	var listen notifier.ListenerFunc
	if drv.SupportsListener() {
		listen = drv.GetListener
	}
	c.notifier = notifier.New(listen, &notifier.Config{
		OnError: func(err error) {
			config.Logger.Warn("artifact listener failed", "error", err)
		},
	})

	if config.Retention > 0 {
		if err := c.setupRetention(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// setupRetention runs the sweeper only while this instance holds the lease.
func (c *Client[TTx]) setupRetention() error {
	sweeper, err := maintenance.NewSweeper(c.store, maintenance.RetentionConfig{
		MaxAge:   c.config.Retention,
		Interval: c.config.RetentionInterval,
		OnSweep: func(r *maintenance.SweepResult) {
			c.config.Logger.Info("retention sweep",
				"artifacts_deleted", r.ArtifactsDeleted,
				"expired_leaders", r.ExpiredLeadersCleaned,
			)
		},
		OnError: func(err error) {
			c.config.Logger.Warn("retention sweep failed", "error", err)
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.sweeper = sweeper

	c.elector = leadership.NewElector(c.store, c.config.InstanceID, &leadership.Config{
		Logger: c.config.Logger,
	}, leadership.Callbacks{
		OnBecameLeader: func(ctx context.Context) {
			c.config.Logger.Info("became retention leader", "instance_id", c.config.InstanceID)
			if err := sweeper.Start(ctx); err != nil {
				c.config.Logger.Warn("failed to start retention sweep", "error", err)
			}
		},
		OnLostLeadership: func(ctx context.Context) {
			c.config.Logger.Info("lost retention leadership", "instance_id", c.config.InstanceID)
			if sweeper.IsRunning() {
				_ = sweeper.Stop(context.Background())
			}
		},
	})
	return nil
}

// Driver returns the database driver.
func (c *Client[TTx]) Driver() driver.Driver[TTx] {
	return c.driver
}

// Store returns the artifact store.
func (c *Client[TTx]) Store() storage.Store {
	return c.store
}

// Hooks returns the hook registry.
func (c *Client[TTx]) Hooks() *hooks.Registry {
	return c.config.Hooks
}

// Tools returns the tool registry used by Ask.
func (c *Client[TTx]) Tools() *tool.Registry {
	return c.tools
}

// CanAsk reports whether an Anthropic client is configured.
func (c *Client[TTx]) CanAsk() bool {
	return c.messages != nil
}

// Migrate creates the artifact schema.
func (c *Client[TTx]) Migrate(ctx context.Context) error {
	if err := c.store.Migrate(ctx); err != nil {
		return newError("migrate", "", err)
	}
	return nil
}

// Start begins listening for artifact notifications, which Subscribe
// needs, and joins the retention election when Retention is set.
func (c *Client[TTx]) Start(ctx context.Context) error {
	if err := c.notifier.Start(ctx); err != nil {
		return err
	}
	if c.elector != nil {
		if err := c.elector.Start(ctx); err != nil {
			_ = c.notifier.Stop(ctx)
			return err
		}
	}
	return nil
}

// Stop resigns retention leadership and stops the notification listener.
func (c *Client[TTx]) Stop(ctx context.Context) error {
	if c.elector != nil && c.elector.IsRunning() {
		if err := c.elector.Stop(ctx); err != nil {
			c.config.Logger.Warn("failed to stop elector", "error", err)
		}
	}
	return c.notifier.Stop(ctx)
}

// Subscribe calls fn for every artifact saved by any client on the same
// database, once the save has committed. Call Start first. The returned
// function unsubscribes.
func (c *Client[TTx]) Subscribe(fn func(driver.ArtifactEvent)) func() {
	return c.notifier.Subscribe(func(e *notifier.Event) {
		fn(e.ArtifactEvent)
	})
}

// GetArtifact retrieves an artifact by ID.
func (c *Client[TTx]) GetArtifact(ctx context.Context, id uuid.UUID) (*artifact.Artifact, error) {
	a, err := c.store.GetArtifact(ctx, id)
	if err != nil {
		return nil, newError("get artifact", "", err)
	}
	return a, nil
}

// ListArtifacts returns one page of artifacts and the total count.
func (c *Client[TTx]) ListArtifacts(ctx context.Context, params storage.ListParams) ([]*artifact.Artifact, int, error) {
	arts, total, err := c.store.ListArtifacts(ctx, params)
	if err != nil {
		return nil, 0, newError("list artifacts", params.SessionID, err)
	}
	return arts, total, nil
}

// DeleteArtifact removes an artifact.
func (c *Client[TTx]) DeleteArtifact(ctx context.Context, id uuid.UUID) error {
	if err := c.store.DeleteArtifact(ctx, id); err != nil {
		return newError("delete artifact", "", err)
	}
	return nil
}

// ListSessions summarizes the sessions that produced artifacts.
func (c *Client[TTx]) ListSessions(ctx context.Context) ([]storage.SessionSummary, error) {
	sessions, err := c.store.ListSessions(ctx)
	if err != nil {
		return nil, newError("list sessions", "", err)
	}
	return sessions, nil
}

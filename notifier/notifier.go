// Package notifier fans artifact notifications out to in-process
// subscribers.
//
// A Notifier holds one driver.Listener on ChannelArtifactCreated, decodes each
// payload into a driver.ArtifactEvent and calls every subscribed handler. When
// the listener fails it is reopened after ReconnectDelay. Drivers without
// listener support leave the notifier idle.
package notifier

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/youssefsiam38/artifactpg/driver"
)

// Event is one received artifact notification.
type Event struct {
	driver.ArtifactEvent

	ReceivedAt time.Time
}

// Handler is called when an event is received. Handlers run on the
// notifier's goroutine and must not block.
type Handler func(event *Event)

// Config holds configuration for the notifier.
type Config struct {
	// ReconnectDelay is how long to wait before reopening a failed listener.
	// Default: 5 seconds
	ReconnectDelay time.Duration

	// OnError is called when the listener fails or a payload cannot be
	// decoded.
	OnError func(err error)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ReconnectDelay: 5 * time.Second,
	}
}

// ListenerFunc opens a listener. driver.Driver's GetListener satisfies it.
type ListenerFunc func(ctx context.Context) (driver.Listener, error)

// Notifier dispatches artifact events to subscribers.
type Notifier struct {
	getListener ListenerFunc
	config      *Config

	mu          sync.RWMutex
	subscribers map[int64]Handler
	nextID      int64

	started atomic.Bool
	done    chan struct{}
	cancel  context.CancelFunc
}

// New creates a notifier. getListener may be nil, in which case Start only
// waits for Stop.
func New(getListener ListenerFunc, config *Config) *Notifier {
	if config == nil {
		config = DefaultConfig()
	}
	if config.ReconnectDelay <= 0 {
		config.ReconnectDelay = DefaultConfig().ReconnectDelay
	}
	return &Notifier{
		getListener: getListener,
		config:      config,
		subscribers: make(map[int64]Handler),
	}
}

// Start begins listening in a background goroutine.
func (n *Notifier) Start(ctx context.Context) error {
	if !n.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, n.cancel = context.WithCancel(ctx)
	n.done = make(chan struct{})
	go n.run(ctx)
	return nil
}

// Stop stops listening and waits for the background goroutine.
func (n *Notifier) Stop(ctx context.Context) error {
	if !n.started.Load() {
		return ErrNotStarted
	}

	n.cancel()
	select {
	case <-n.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	n.started.Store(false)
	return nil
}

// IsRunning returns true if the notifier is running.
func (n *Notifier) IsRunning() bool {
	return n.started.Load()
}

// Subscribe registers handler and returns a function that removes it.
func (n *Notifier) Subscribe(handler Handler) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subscribers[id] = handler

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subscribers, id)
	}
}

func (n *Notifier) run(ctx context.Context) {
	defer close(n.done)

	for {
		err := n.listenLoop(ctx)
		if ctx.Err() != nil {
			return
		}
		n.reportError(err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(n.config.ReconnectDelay):
		}
	}
}

// listenLoop opens a listener and dispatches notifications until it fails.
func (n *Notifier) listenLoop(ctx context.Context) error {
	if n.getListener == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	listener, err := n.getListener(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = listener.Close(context.WithoutCancel(ctx)) }()

	if err := listener.Listen(ctx, driver.ChannelArtifactCreated); err != nil {
		return err
	}

	for {
		notification, err := listener.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if notification.Channel != driver.ChannelArtifactCreated {
			continue
		}

		payload, err := driver.DecodeArtifactEvent(notification.Payload)
		if err != nil {
			n.reportError(err)
			continue
		}
		n.dispatch(&Event{ArtifactEvent: payload, ReceivedAt: time.Now()})
	}
}

func (n *Notifier) dispatch(event *Event) {
	n.mu.RLock()
	handlers := make([]Handler, 0, len(n.subscribers))
	for _, h := range n.subscribers {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

func (n *Notifier) reportError(err error) {
	if err != nil && n.config.OnError != nil {
		n.config.OnError(err)
	}
}

package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/youssefsiam38/artifactpg/driver"
)

// listenerBuffer is the per-listener queue length. A listener that falls
// further behind loses the oldest notifications.
const listenerBuffer = 64

var errListenerClosed = errors.New("memory: listener closed")

type hub struct {
	mu        sync.RWMutex
	listeners []*Listener
}

func newHub() *hub {
	return &hub{}
}

func (h *hub) subscribe() *Listener {
	l := &Listener{
		hub:      h,
		channels: make(map[string]bool),
		ch:       make(chan driver.Notification, listenerBuffer),
		done:     make(chan struct{}),
	}
	h.mu.Lock()
	h.listeners = append(h.listeners, l)
	h.mu.Unlock()
	return l
}

func (h *hub) unsubscribe(l *Listener) {
	h.mu.Lock()
	h.listeners = slices.DeleteFunc(h.listeners, func(x *Listener) bool { return x == l })
	h.mu.Unlock()
}

func (h *hub) publish(n driver.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, l := range h.listeners {
		l.deliver(n)
	}
}

// Listener implements driver.Listener in process.
type Listener struct {
	hub *hub

	mu       sync.Mutex
	channels map[string]bool
	closed   bool

	ch   chan driver.Notification
	done chan struct{}
}

// Listen subscribes to channel.
func (l *Listener) Listen(ctx context.Context, channel string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errListenerClosed
	}
	l.channels[channel] = true
	return nil
}

func (l *Listener) deliver(n driver.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || !l.channels[n.Channel] {
		return
	}
	for {
		select {
		case l.ch <- n:
			return
		default:
		}
		select {
		case <-l.ch:
		default:
		}
	}
}

// WaitForNotification blocks until a notification arrives, the listener is
// closed, or ctx ends.
func (l *Listener) WaitForNotification(ctx context.Context) (*driver.Notification, error) {
	select {
	case n := <-l.ch:
		return &n, nil
	case <-l.done:
		return nil, errListenerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close unsubscribes the listener.
func (l *Listener) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.done)
	l.mu.Unlock()

	l.hub.unsubscribe(l)
	return nil
}

var _ driver.Listener = (*Listener)(nil)

package databasesql

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/youssefsiam38/artifactpg/driver"
)

var errListenerClosed = errors.New("databasesql: listener closed")

// Listener implements driver.Listener with lib/pq's reconnecting listener.
type Listener struct {
	mu     sync.Mutex
	pq     *pq.Listener
	closed bool
}

// NewListener opens a listener connection for connStr.
func NewListener(connStr string) *Listener {
	return &Listener{
		pq: pq.NewListener(connStr, 100*time.Millisecond, 10*time.Second, nil),
	}
}

// Listen subscribes to channel.
func (l *Listener) Listen(ctx context.Context, channel string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errListenerClosed
	}
	err := l.pq.Listen(channel)
	if errors.Is(err, pq.ErrChannelAlreadyOpen) {
		return nil
	}
	return err
}

// WaitForNotification blocks until a notification arrives or ctx ends. The
// nil notifications lib/pq sends after a reconnect are skipped.
func (l *Listener) WaitForNotification(ctx context.Context) (*driver.Notification, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case n, ok := <-l.pq.Notify:
			if !ok {
				return nil, errListenerClosed
			}
			if n == nil {
				continue
			}
			return &driver.Notification{Channel: n.Channel, Payload: n.Extra}, nil
		}
	}
}

// Close closes the listener connection.
func (l *Listener) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.pq.Close()
}

var _ driver.Listener = (*Listener)(nil)

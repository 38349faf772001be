package pgxv5

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/youssefsiam38/artifactpg/driver"
)

var errListenerClosed = errors.New("pgxv5: listener closed")

// Listener implements driver.Listener on a dedicated pooled connection.
type Listener struct {
	mu     sync.Mutex
	conn   *pgxpool.Conn
	closed bool
}

// Listen subscribes the connection to channel.
func (l *Listener) Listen(ctx context.Context, channel string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return errListenerClosed
	}
	_, err := l.conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize())
	return err
}

// WaitForNotification blocks until a notification arrives or ctx ends.
func (l *Listener) WaitForNotification(ctx context.Context) (*driver.Notification, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, errListenerClosed
	}
	conn := l.conn
	l.mu.Unlock()

	n, err := conn.Conn().WaitForNotification(ctx)
	if err != nil {
		return nil, err
	}
	return &driver.Notification{Channel: n.Channel, Payload: n.Payload}, nil
}

// Close releases the connection. Cancel any blocked WaitForNotification
// first; pgx connections are not safe for concurrent use. A connection that
// cannot be unsubscribed is closed rather than returned to the pool.
func (l *Listener) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if _, err := l.conn.Exec(ctx, "UNLISTEN *"); err != nil {
		_ = l.conn.Conn().Close(ctx)
	}
	l.conn.Release()
	return nil
}

var _ driver.Listener = (*Listener)(nil)

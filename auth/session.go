package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Session is an authenticated user session.
type Session struct {
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore persists sessions by token.
type SessionStore interface {
	// Create starts a session for username and returns its token.
	Create(username string) (string, error)

	// Get returns the live session for token.
	Get(token string) (*Session, bool)

	// Delete ends the session. Unknown tokens are ignored.
	Delete(token string)
}

// MemoryStore is an in-process SessionStore. Expired sessions are removed
// when they are next looked up.
type MemoryStore struct {
	ttl      time.Duration
	sessions sync.Map // token -> *Session
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore whose sessions live for ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Create(username string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := s.now()
	s.sessions.Store(token, &Session{
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	return token, nil
}

func (s *MemoryStore) Get(token string) (*Session, bool) {
	v, ok := s.sessions.Load(token)
	if !ok {
		return nil, false
	}
	sess := v.(*Session)
	if !s.now().Before(sess.ExpiresAt) {
		s.sessions.Delete(token)
		return nil, false
	}
	return sess, true
}

func (s *MemoryStore) Delete(token string) {
	s.sessions.Delete(token)
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var _ SessionStore = (*MemoryStore)(nil)

// Package panel provides the open/close state of artifact panels. Widgets
// never own this state; the UI injects a Controller and asks it whether a
// panel is expanded.
package panel

import (
	"strconv"
	"sync"
)

// Controller stores panel visibility per key.
type Controller interface {
	IsOpen(key string) bool
	SetOpen(key string, open bool)
	Toggle(key string) bool
}

// Key scopes an artifact's panel to one viewer. The viewer is quoted so that
// names containing the separator cannot collide with another viewer's key.
func Key(viewer, artifactID string) string {
	return strconv.Quote(viewer) + "/" + artifactID
}

// Memory is an in-process Controller. Panels start closed.
type Memory struct {
	mu   sync.RWMutex
	open map[string]bool
}

// NewMemory creates an empty Memory controller.
func NewMemory() *Memory {
	return &Memory{open: make(map[string]bool)}
}

func (m *Memory) IsOpen(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open[key]
}

func (m *Memory) SetOpen(key string, open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if open {
		m.open[key] = true
	} else {
		delete(m.open, key)
	}
}

// Toggle flips the panel and returns the new state.
func (m *Memory) Toggle(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open[key] {
		delete(m.open, key)
		return false
	}
	m.open[key] = true
	return true
}

// Toggle is the open/close capability of a single panel.
type Toggle struct {
	c   Controller
	key string
}

// For binds c to the panel of one artifact as seen by one viewer.
func For(c Controller, viewer, artifactID string) Toggle {
	return Toggle{c: c, key: Key(viewer, artifactID)}
}

func (t Toggle) Open() bool        { return t.c.IsOpen(t.key) }
func (t Toggle) SetOpen(open bool) { t.c.SetOpen(t.key, open) }
func (t Toggle) Toggle() bool      { return t.c.Toggle(t.key) }

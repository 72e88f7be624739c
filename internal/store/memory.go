// internal/store/memory.go
//
// In-memory implementation of the Store interface for game sessions.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex; Update/View run the callback under the
//     lock so a session is never mutated by two requests at once.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/wordle/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID. The returned pointer is shared; use
	// Update or View when other requests may touch it concurrently.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Update runs fn with exclusive access to the session.
	Update(ctx context.Context, id string, fn func(*game.Session) error) error

	// View runs fn with shared access to the session. fn must not mutate it.
	View(ctx context.Context, id string, fn func(*game.Session) error) error

	// Delete drops a session. Unknown IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Len reports how many sessions are held.
	Len() int
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Session)}
}

func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	return fn(s)
}

func (m *memory) View(ctx context.Context, id string, fn func(*game.Session) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	return fn(s)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

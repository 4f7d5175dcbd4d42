// Package session provides SessionStore implementations. The in-memory store
// is the default for the interactive CLI; swap in a durable implementation
// behind the same interface for anything that must survive a restart.
package session

import (
	"fmt"
	"sync"

	"github.com/senarath/smartscout/core"
)

// InMemoryStore keeps sessions in a map guarded by a mutex. Reads hand out
// clones so callers can never mutate stored state directly.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: map[string]*core.Session{}}
}

// Create registers a new empty session under the given ID.
func (s *InMemoryStore) Create(id string) (*core.Session, error) {
	if id == "" {
		id = core.NewID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; exists {
		return nil, fmt.Errorf("session %q already exists", id)
	}
	sess := core.NewSession(id)
	s.sessions[id] = sess
	return sess.Clone(), nil
}

// Get returns a clone of the stored session.
func (s *InMemoryStore) Get(id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q not found", id)
	}
	return sess.Clone(), nil
}

// AppendEvent appends one event to a session's history.
func (s *InMemoryStore) AppendEvent(sessionID string, event core.Event) error {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("session %q not found", sessionID)
	}
	sess.AddEvent(event)
	return nil
}

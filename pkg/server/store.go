package server

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kadirpekel/lector/pkg/chat"
)

// SessionFactory builds a new session for a freshly issued ID.
type SessionFactory func(id string) (*chat.Session, error)

// SessionStore holds the server's live sessions keyed by UUID.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
	factory  SessionFactory
}

func NewSessionStore(factory SessionFactory) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*chat.Session),
		factory:  factory,
	}
}

// Create issues a new session ID and builds a session for it.
func (s *SessionStore) Create() (*chat.Session, error) {
	id := uuid.NewString()

	session, err := s.factory(id)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	return session, nil
}

// Get looks up a session by ID.
func (s *SessionStore) Get(id string) (*chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

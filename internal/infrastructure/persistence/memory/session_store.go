package memory

import (
	"context"
	"sync"
	"time"

	"github.com/basketful/storefront/internal/ports/outbound"
)

// SessionStore keeps sessions in process memory
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]outbound.Session
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]outbound.Session)}
}

// Create stores a session until its ExpiresAt, or for ttl when that is unset
func (s *SessionStore) Create(ctx context.Context, session outbound.Session, ttl time.Duration) error {
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get returns a live session
func (s *SessionStore) Get(ctx context.Context, id string) (*outbound.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, outbound.ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return outbound.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

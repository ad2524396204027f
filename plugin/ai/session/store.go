package session

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Store owns every Session. Sessions are created lazily on first reference
// and live until deleted or the process exits.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	locks      sync.Map // session id → *turnLock
	historyCap int
}

// NewStore creates an empty store whose sessions keep historyCap messages.
func NewStore(historyCap int) *Store {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &Store{
		sessions:   make(map[string]*Session),
		historyCap: historyCap,
	}
}

// GetOrCreate returns the session for id, creating a General session on
// first use. It never fails; note that a read can allocate state.
func (s *Store) GetOrCreate(id string) *Session {
	if id == "" {
		id = DefaultSessionID
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess = newSession(id, s.historyCap)
	s.sessions[id] = sess
	slog.Debug("session created", "session_id", id)
	return sess
}

// Get returns an existing session.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// Clear resets a session's history and module, keeping its identity.
func (s *Store) Clear(id string) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.Reset()
	return nil
}

// ListIDs returns all session ids in sorted order.
func (s *Store) ListIDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

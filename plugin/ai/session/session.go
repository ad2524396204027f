package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/hrygo/switchboard/plugin/ai/module"
)

// Session is the state of one conversation. All methods are safe for
// concurrent use; whole turns are serialized separately by Store.Lock.
type Session struct {
	mu sync.Mutex

	id         string
	current    module.Module
	history    *History
	registered bool
	userRef    string
	createdAt  time.Time
	updatedAt  time.Time
}

func newSession(id string, historyCap int) *Session {
	now := time.Now()
	return &Session{
		id:        id,
		current:   module.General,
		history:   NewHistory(historyCap),
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session key.
func (s *Session) ID() string {
	return s.id
}

// CurrentModule returns the module the session is in.
func (s *Session) CurrentModule() module.Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetModule moves the session to m. Only session states are accepted.
func (s *Session) SetModule(m module.Module) error {
	if !m.IsSessionState() {
		return fmt.Errorf("module %q cannot be a session state", m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = m
	s.updatedAt = time.Now()
	return nil
}

// Append adds one message to the history.
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Append(Message{Role: role, Content: content})
	s.updatedAt = time.Now()
}

// History returns a copy of the message log.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Messages()
}

// PriorUserMessages counts user messages already in history.
func (s *Session) PriorUserMessages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Count(RoleUser)
}

// IsRegistered reports whether a registration or login flow completed.
func (s *Session) IsRegistered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registered
}

// UserRef returns the authenticated username, if any.
func (s *Session) UserRef() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userRef, s.registered
}

// Authenticate marks the session registered as username. This is the first
// step of the authentication commit; Rebase is the second.
func (s *Session) Authenticate(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered = true
	s.userRef = username
	s.updatedAt = time.Now()
}

// Rebase replaces the in-memory history with a durable record.
func (s *Session) Rebase(msgs []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Replace(msgs)
	s.updatedAt = time.Now()
}

// Reset clears history and returns to General. Identity is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Reset()
	s.current = module.General
	s.updatedAt = time.Now()
}

// Snapshot copies the session for introspection.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:         s.id,
		Module:     s.current,
		Registered: s.registered,
		UserRef:    s.userRef,
		History:    s.history.Messages(),
		HistoryLen: s.history.Len(),
		CreatedAt:  unixOrZero(s.createdAt),
		UpdatedAt:  unixOrZero(s.updatedAt),
	}
	if last, ok := s.history.Last(); ok {
		snap.LastMessage = last.Content
	}
	return snap
}

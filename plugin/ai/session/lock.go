package session

import (
	"context"
	"fmt"
)

// turnLock is a per-session mutex using a buffered channel, so that waiting
// can be abandoned when the caller's context ends.
type turnLock struct {
	ch chan struct{}
}

func newTurnLock() *turnLock {
	l := &turnLock{ch: make(chan struct{}, 1)}
	l.ch <- struct{}{} // initially unlocked
	return l
}

// Lock serializes whole turns for one session id. The returned function
// releases the lock and must be called exactly once.
//
// Locks outlive Delete so a turn in flight and a turn on a recreated
// session with the same id still exclude each other.
func (s *Store) Lock(ctx context.Context, id string) (func(), error) {
	if id == "" {
		id = DefaultSessionID
	}
	val, _ := s.locks.LoadOrStore(id, newTurnLock())
	l := val.(*turnLock)

	select {
	case <-l.ch:
		return func() { l.ch <- struct{}{} }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for session %s: %w", id, ctx.Err())
	}
}

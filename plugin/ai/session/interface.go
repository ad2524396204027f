// Package session holds per-conversation state: the current module, a
// capped message history and the authenticated identity, keyed by an
// externally supplied session id.
package session

import (
	"errors"
	"time"

	"github.com/hrygo/switchboard/plugin/ai/module"
)

// DefaultSessionID is used when a caller supplies no session id.
const DefaultSessionID = "default"

// DefaultHistoryCap is the number of messages kept per session.
const DefaultHistoryCap = 40

// Message roles kept in history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrSessionNotFound is returned for ids the store has never seen.
var ErrSessionNotFound = errors.New("session not found")

// Message represents a conversation message.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Snapshot is a point-in-time copy of a session, safe to serialize.
type Snapshot struct {
	ID          string        `json:"session_id"`
	Module      module.Module `json:"current_module"`
	Registered  bool          `json:"registered"`
	UserRef     string        `json:"user_ref,omitempty"`
	History     []Message     `json:"history"`
	HistoryLen  int           `json:"history_len"`
	CreatedAt   int64         `json:"created_at"`
	UpdatedAt   int64         `json:"updated_at"`
	LastMessage string        `json:"last_message,omitempty"`
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

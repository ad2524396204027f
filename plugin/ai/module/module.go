// Package module defines the closed set of conversational modules and the
// result contract between module handlers and the router.
package module

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Module names a conversational specialization.
type Module string

const (
	General      Module = "general"
	Psychology   Module = "psychology"
	Registration Module = "registration"
	Login        Module = "login"

	// Legal and Social are served by remote modules. They are dispatched for a
	// single turn and never become a session's current module.
	Legal  Module = "legal"
	Social Module = "social"
)

// ErrUnknownModule is returned by Parse for names outside the enum.
var ErrUnknownModule = errors.New("unknown module")

var aliases = map[string]Module{
	"psych": Psychology,
}

// All returns every module in a stable order.
func All() []Module {
	return []Module{General, Psychology, Registration, Login, Legal, Social}
}

// Names returns the wire names of all modules, for tool schemas.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, m := range all {
		names[i] = string(m)
	}
	return names
}

// Parse converts a wire name into a Module.
func Parse(name string) (Module, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if m, ok := aliases[key]; ok {
		return m, nil
	}
	for _, m := range All() {
		if string(m) == key {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModule, name)
}

// IsSessionState reports whether m may be stored as a session's current module.
func (m Module) IsSessionState() bool {
	switch m {
	case General, Psychology, Registration, Login:
		return true
	default:
		return false
	}
}

// IsRemote reports whether m is served by a remote module endpoint.
func (m Module) IsRemote() bool {
	return m == Legal || m == Social
}

func (m Module) String() string {
	return string(m)
}

// Args is the payload handed to a module handler. It always carries the
// user's literal input under "text".
type Args map[string]any

// Text returns the "text" field, or "" when absent or not a string.
func (a Args) Text() string {
	s, _ := a["text"].(string)
	return s
}

// Get returns a string field, or "" when absent or not a string.
func (a Args) Get(key string) string {
	s, _ := a[key].(string)
	return s
}

// Identity is the persisted user a session authenticated as.
type Identity struct {
	Username string
}

// Result is what a module handler returns to the router.
type Result struct {
	Module  Module         `json:"module"`
	Payload map[string]any `json:"payload,omitempty"`
	Text    string         `json:"text,omitempty"`
	Handoff bool           `json:"handoff,omitempty"`
	Error   string         `json:"error,omitempty"`

	// Auth is set by registration and login handlers on success.
	Auth *Identity `json:"-"`
	// Redacted, when set, replaces the user's message in history.
	Redacted string `json:"-"`
}

// ErrorResult builds the error-shaped result of a failed handler.
func ErrorResult(m Module, err error) *Result {
	return &Result{Module: m, Error: err.Error()}
}

// Failed reports whether the handler reported an error.
func (r *Result) Failed() bool {
	return r.Error != ""
}

// JSON renders the result as the tool-result message content.
func (r *Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		// Payload came from a handler and holds only JSON-friendly values.
		return fmt.Sprintf(`{"module":%q,"error":"unserializable result"}`, r.Module)
	}
	return string(data)
}

package router

import (
	"context"
	"fmt"

	"github.com/hrygo/switchboard/internal/observability"
	"github.com/hrygo/switchboard/plugin/ai/module"
	"github.com/hrygo/switchboard/plugin/ai/session"
	"github.com/hrygo/switchboard/store"
)

// DefaultRegistrationThreshold is the number of free user messages an
// unregistered session gets before it is sent to Registration.
const DefaultRegistrationThreshold = 2

// Handler executes one module for one turn. Handlers must not keep the
// session beyond the call and report failures as error-shaped results.
type Handler interface {
	Handle(ctx context.Context, sess *session.Session, args module.Args) *module.Result
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, sess *session.Session, args module.Args) *module.Result

func (f HandlerFunc) Handle(ctx context.Context, sess *session.Session, args module.Args) *module.Result {
	return f(ctx, sess, args)
}

// HistoryStore is the persistence the router needs to rebase and record
// histories of authenticated sessions.
type HistoryStore interface {
	AppendMessage(ctx context.Context, username, role, content string) error
	LoadHistory(ctx context.Context, username string) ([]*store.Message, error)
}

// Reason explains why a module was chosen.
type Reason string

const (
	ReasonOverride          Reason = "override"
	ReasonLoginKeyword      Reason = "login_keyword"
	ReasonRegistrationLimit Reason = "registration_threshold"
	ReasonRegistrationWord  Reason = "registration_keyword"
	ReasonClassifier        Reason = "classifier"
	ReasonSticky            Reason = "sticky"
)

// Decision is the module chosen for one message.
type Decision struct {
	Module module.Module
	Reason Reason
}

// Config configures the router.
type Config struct {
	RegistrationThreshold int
}

// Router is the per-session module state machine.
type Router struct {
	rules      *RuleMatcher
	classifier IntentClassifier
	handlers   map[module.Module]Handler
	history    HistoryStore // nil disables persistence
	cfg        Config
}

// New creates a router. history may be nil.
func New(cfg Config, rules *RuleMatcher, classifier IntentClassifier, handlers map[module.Module]Handler, history HistoryStore) *Router {
	if rules == nil {
		rules = NewRuleMatcher()
	}
	return &Router{
		rules:      rules,
		classifier: classifier,
		handlers:   handlers,
		history:    history,
		cfg:        cfg,
	}
}

// Validate fails unless every module has a handler.
func (r *Router) Validate() error {
	if r.classifier == nil {
		return fmt.Errorf("router: classifier is required")
	}
	for _, m := range module.All() {
		if r.handlers[m] == nil {
			return fmt.Errorf("router: no handler for module %q", m)
		}
	}
	return nil
}

// Decide picks the module for text and moves the session into it when the
// module is a session state. override is empty when the caller forced nothing.
//
// Precedence: override, login keyword, registration threshold, registration
// keyword, classifier. Only the first two apply outside General.
func (r *Router) Decide(ctx context.Context, sess *session.Session, text string, override module.Module) Decision {
	d := r.decide(ctx, sess, text, override)
	if d.Module.IsSessionState() {
		// Session states are the only values SetModule accepts.
		_ = sess.SetModule(d.Module)
	}
	observability.Logger(ctx).Debug("module decided",
		"module", d.Module,
		"reason", d.Reason)
	return d
}

func (r *Router) decide(ctx context.Context, sess *session.Session, text string, override module.Module) Decision {
	if override != "" {
		return Decision{Module: override, Reason: ReasonOverride}
	}
	if r.rules.IsLogin(text) {
		return Decision{Module: module.Login, Reason: ReasonLoginKeyword}
	}

	current := sess.CurrentModule()
	if current != module.General {
		return Decision{Module: current, Reason: ReasonSticky}
	}

	if !sess.IsRegistered() && sess.PriorUserMessages() >= r.cfg.RegistrationThreshold {
		return Decision{Module: module.Registration, Reason: ReasonRegistrationLimit}
	}
	if r.rules.IsRegistration(text) {
		return Decision{Module: module.Registration, Reason: ReasonRegistrationWord}
	}
	return Decision{Module: r.classifier.Classify(ctx, text, current), Reason: ReasonClassifier}
}

// Handle runs the handler for m and folds an in-band handoff marker into
// the result.
func (r *Router) Handle(ctx context.Context, sess *session.Session, m module.Module, args module.Args) *module.Result {
	h, ok := r.handlers[m]
	if !ok {
		return module.ErrorResult(m, fmt.Errorf("no handler for module %q", m))
	}

	res := h.Handle(ctx, sess, args)
	if res == nil {
		res = module.ErrorResult(m, fmt.Errorf("handler returned no result"))
	}
	if res.Module == "" {
		res.Module = m
	}
	res.Normalize()
	if res.Failed() {
		observability.Logger(ctx).Warn("module handler failed",
			"module", m,
			"error", res.Error)
	}
	return res
}

// Authenticate commits the identity carried by res, if any. It is a no-op
// when the session already holds that identity.
func (r *Router) Authenticate(ctx context.Context, sess *session.Session, res *module.Result) {
	if res == nil || res.Auth == nil {
		return
	}
	if user, ok := sess.UserRef(); ok && user == res.Auth.Username {
		return
	}
	r.authenticate(ctx, sess, res.Auth.Username)
}

// Apply commits the outcome of a turn: authentication first, then handoff.
func (r *Router) Apply(ctx context.Context, sess *session.Session, res *module.Result, handoff bool) {
	r.Authenticate(ctx, sess, res)
	if handoff || (res != nil && res.Handoff) {
		_ = sess.SetModule(module.General)
		observability.Logger(ctx).Debug("handoff to general")
	}
}

// authenticate marks the session registered and rebases its history onto
// the durable record. With no durable record yet, the in-memory history is
// flushed so a later login can restore it.
func (r *Router) authenticate(ctx context.Context, sess *session.Session, username string) {
	sess.Authenticate(username)
	if r.history == nil {
		return
	}

	stored, err := r.history.LoadHistory(ctx, username)
	if err != nil {
		observability.Logger(ctx).Warn("failed to load history", "user", username, "error", err)
		return
	}
	if len(stored) > 0 {
		msgs := make([]session.Message, len(stored))
		for i, m := range stored {
			msgs[i] = session.Message{Role: m.Role, Content: m.Content}
		}
		sess.Rebase(msgs)
		observability.Logger(ctx).Info("session history restored", "user", username, "messages", len(msgs))
		return
	}

	for _, m := range sess.History() {
		if err := r.history.AppendMessage(ctx, username, m.Role, m.Content); err != nil {
			observability.Logger(ctx).Warn("failed to flush history", "user", username, "error", err)
			return
		}
	}
}

// Record appends one message to the session and, for authenticated
// sessions, to the durable record.
func (r *Router) Record(ctx context.Context, sess *session.Session, role, content string) {
	sess.Append(role, content)

	user, ok := sess.UserRef()
	if !ok || r.history == nil {
		return
	}
	if err := r.history.AppendMessage(ctx, user, role, content); err != nil {
		observability.Logger(ctx).Warn("failed to persist message", "user", user, "error", err)
	}
}

// Login authenticates a session outside the chat flow and rebases its
// history. A session waiting in Registration or Login returns to General.
func (r *Router) Login(ctx context.Context, sess *session.Session, username string) {
	r.authenticate(ctx, sess, username)
	if cur := sess.CurrentModule(); cur == module.Registration || cur == module.Login {
		_ = sess.SetModule(module.General)
	}
}

package agent

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/hrygo/switchboard/internal/observability"
	"github.com/hrygo/switchboard/plugin/ai"
	"github.com/hrygo/switchboard/plugin/ai/handler"
	"github.com/hrygo/switchboard/plugin/ai/module"
	"github.com/hrygo/switchboard/plugin/ai/router"
	"github.com/hrygo/switchboard/plugin/ai/session"
)

// Recorder receives per-module turn metrics.
type Recorder interface {
	RecordRequest(module string)
	RecordFailure(module string)
	RecordDuration(module string, duration time.Duration)
}

// Turn is one inbound chat message.
type Turn struct {
	SessionID string
	Text      string
	// Override forces a module for this turn. Empty means none.
	Override module.Module
}

// Reply is the outcome of a turn.
type Reply struct {
	SessionID string
	Module    module.Module
	Text      string
}

// Dispatcher runs whole turns, serialized per session.
type Dispatcher struct {
	sessions *session.Store
	router   *router.Router
	adapter  *ToolAdapter
	metrics  Recorder
}

// NewDispatcher creates a dispatcher. metrics may be nil.
func NewDispatcher(sessions *session.Store, r *router.Router, adapter *ToolAdapter, metrics Recorder) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		router:   r,
		adapter:  adapter,
		metrics:  metrics,
	}
}

// Dispatch handles one message. On error the session's module is restored
// and nothing is appended to its history.
func (d *Dispatcher) Dispatch(ctx context.Context, turn Turn) (*Reply, error) {
	sess := d.sessions.GetOrCreate(turn.SessionID)
	unlock, err := d.sessions.Lock(ctx, sess.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session %s: %w", sess.ID(), err)
	}
	defer unlock()

	start := time.Now()
	previous := sess.CurrentModule()

	reply, err := d.run(ctx, sess, turn)
	if err != nil {
		_ = sess.SetModule(previous)
		d.record(previous, start, err)
		observability.Logger(ctx).Warn("chat turn failed",
			"module", previous,
			"error", err)
		return nil, err
	}

	d.record(reply.Module, start, nil)
	return reply, nil
}

func (d *Dispatcher) run(ctx context.Context, sess *session.Session, turn Turn) (*Reply, error) {
	// Only handlers that read credentials ever see the raw text.
	masked := handler.RedactCredentials(turn.Text)

	decision := d.router.Decide(ctx, sess, masked, turn.Override)
	history := toAIMessages(sess.History())

	inv, text, err := d.adapter.Route(ctx, history, masked, decision.Module, decision.Reason == router.ReasonOverride)
	if err != nil {
		return nil, err
	}

	handled := decision.Module
	var res *module.Result
	if inv != nil {
		handled = inv.Module
		if handled != decision.Module && handled.IsSessionState() {
			_ = sess.SetModule(handled)
		}

		args := inv.Args
		if handled == module.Registration || handled == module.Login {
			args = maps.Clone(inv.Args)
			args["text"] = turn.Text
		}
		res = d.router.Handle(ctx, sess, handled, args)
		// Bind the identity now so a failed composition cannot strand a stored user.
		d.router.Authenticate(ctx, sess, res)

		text, err = d.adapter.Compose(ctx, history, masked, inv, res)
		if err != nil {
			return nil, err
		}
		observability.Logger(ctx).Debug("module invoked",
			"module", handled,
			"synthetic", inv.Synthetic)
	}

	text, handoff := module.StripHandoff(text)
	if text == "" && res != nil {
		text = res.Text
	}
	d.router.Apply(ctx, sess, res, handoff)

	userText := masked
	if res != nil && res.Redacted != "" {
		userText = res.Redacted
	}
	d.router.Record(ctx, sess, session.RoleUser, userText)
	d.router.Record(ctx, sess, session.RoleAssistant, text)

	return &Reply{
		SessionID: sess.ID(),
		Module:    handled,
		Text:      text,
	}, nil
}

func (d *Dispatcher) record(m module.Module, start time.Time, err error) {
	if d.metrics == nil {
		return
	}
	d.metrics.RecordRequest(m.String())
	d.metrics.RecordDuration(m.String(), time.Since(start))
	if err != nil {
		d.metrics.RecordFailure(m.String())
	}
}

func toAIMessages(msgs []session.Message) []ai.Message {
	out := make([]ai.Message, len(msgs))
	for i, m := range msgs {
		out[i] = ai.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

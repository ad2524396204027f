package handler

import (
	"context"
	"errors"

	"github.com/hrygo/switchboard/plugin/ai/module"
	"github.com/hrygo/switchboard/plugin/ai/session"
)

const (
	loginPromptText    = "შესასვლელად მომწერე username: <სახელი> password: <პაროლი>"
	loginFailedText    = "სახელი ან პაროლი არასწორია."
	loginSucceededText = "წარმატებით შეხვედი სისტემაში."
)

// LoginHandler authenticates an existing user from chat.
type LoginHandler struct {
	auth *Authenticator
}

func NewLoginHandler(auth *Authenticator) *LoginHandler {
	return &LoginHandler{auth: auth}
}

func (h *LoginHandler) Handle(ctx context.Context, _ *session.Session, args module.Args) *module.Result {
	creds, ok := ParseCredentials(args)
	if !ok {
		return &module.Result{
			Module:  module.Login,
			Payload: map[string]any{"status": StatusAwaitingCredentials},
			Text:    loginPromptText,
		}
	}
	redacted := Redact(args.Text(), creds.Password)

	err := h.auth.Verify(ctx, creds.Username, creds.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return &module.Result{
			Module:   module.Login,
			Payload:  map[string]any{"status": StatusInvalidCredentials},
			Text:     loginFailedText,
			Redacted: redacted,
		}
	case err != nil:
		res := module.ErrorResult(module.Login, err)
		res.Redacted = redacted
		return res
	}

	return &module.Result{
		Module:   module.Login,
		Payload:  map[string]any{"status": StatusLoggedIn, "username": creds.Username},
		Text:     loginSucceededText,
		Handoff:  true,
		Auth:     &module.Identity{Username: creds.Username},
		Redacted: redacted,
	}
}

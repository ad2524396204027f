package handler

import (
	"context"
	"errors"

	"github.com/hrygo/switchboard/plugin/ai/module"
	"github.com/hrygo/switchboard/plugin/ai/session"
)

// Flow statuses reported in the payload of registration and login results.
const (
	StatusAwaitingCredentials = "awaiting_credentials"
	StatusUsernameTaken       = "username_taken"
	StatusInvalidCredentials  = "invalid_credentials"
	StatusRegistered          = "registered"
	StatusLoggedIn            = "logged_in"
)

const (
	registrationPromptText = "გასაგრძელებლად დარეგისტრირდი: მომწერე username: <სახელი> password: <პაროლი>"
	usernameTakenText      = "ეს სახელი დაკავებულია. სცადე სხვა სახელი ან შედი სისტემაში."
	registeredText         = "რეგისტრაცია წარმატებით დასრულდა."
)

// RegistrationHandler signs up a new user. The session stays in
// Registration until credentials arrive and the user is stored.
type RegistrationHandler struct {
	auth *Authenticator
}

func NewRegistrationHandler(auth *Authenticator) *RegistrationHandler {
	return &RegistrationHandler{auth: auth}
}

func (h *RegistrationHandler) Handle(ctx context.Context, _ *session.Session, args module.Args) *module.Result {
	creds, ok := ParseCredentials(args)
	if !ok {
		return &module.Result{
			Module:  module.Registration,
			Payload: map[string]any{"status": StatusAwaitingCredentials},
			Text:    registrationPromptText,
		}
	}
	redacted := Redact(args.Text(), creds.Password)

	err := h.auth.Register(ctx, creds.Username, creds.Password)
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return &module.Result{
			Module:   module.Registration,
			Payload:  map[string]any{"status": StatusUsernameTaken, "username": creds.Username},
			Text:     usernameTakenText,
			Redacted: redacted,
		}
	case err != nil:
		res := module.ErrorResult(module.Registration, err)
		res.Redacted = redacted
		return res
	}

	return &module.Result{
		Module:   module.Registration,
		Payload:  map[string]any{"status": StatusRegistered, "username": creds.Username},
		Text:     registeredText,
		Handoff:  true,
		Auth:     &module.Identity{Username: creds.Username},
		Redacted: redacted,
	}
}

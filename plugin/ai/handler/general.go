package handler

import (
	"context"

	"github.com/hrygo/switchboard/plugin/ai/module"
	"github.com/hrygo/switchboard/plugin/ai/session"
)

// GeneralHandler passes the turn through; the reply is composed by the
// provider from the payload.
type GeneralHandler struct{}

func (GeneralHandler) Handle(_ context.Context, _ *session.Session, args module.Args) *module.Result {
	payload := make(map[string]any, len(args))
	for k, v := range args {
		payload[k] = v
	}
	return &module.Result{Module: module.General, Payload: payload}
}

package handler

import (
	"context"
	"fmt"

	"github.com/hrygo/switchboard/plugin/ai/module"
	"github.com/hrygo/switchboard/plugin/ai/session"
	"github.com/hrygo/switchboard/plugin/remote"
)

// RemoteHandler forwards a turn to a remote module (legal, social).
type RemoteHandler struct {
	module module.Module
	client *remote.Client
}

func NewRemoteHandler(m module.Module, client *remote.Client) *RemoteHandler {
	return &RemoteHandler{module: m, client: client}
}

func (h *RemoteHandler) Handle(ctx context.Context, _ *session.Session, args module.Args) *module.Result {
	reply, err := h.client.Chat(ctx, h.module.String(), args.Text())
	if err != nil {
		return module.ErrorResult(h.module, fmt.Errorf("%s module: %w", h.module, err))
	}
	return &module.Result{Module: h.module, Text: reply}
}

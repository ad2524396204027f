package v1

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/switchboard/internal/observability"
	"github.com/hrygo/switchboard/plugin/ai/agent"
	"github.com/hrygo/switchboard/plugin/ai/module"
	"github.com/hrygo/switchboard/plugin/ai/session"
	"github.com/hrygo/switchboard/plugin/ai/timeout"
	apierrors "github.com/hrygo/switchboard/server/internal/errors"
)

type ChatRequest struct {
	Text      string `json:"text"`
	Module    string `json:"module,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Module    string `json:"module"`
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
}

// Chat handles one user message.
// POST /chat
func (s *APIV1Service) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return apierrors.InvalidArgument("text is required")
	}

	var override module.Module
	if req.Module != "" {
		m, err := module.Parse(req.Module)
		if err != nil {
			return apierrors.InvalidArgument(fmt.Sprintf("unknown module %q", req.Module))
		}
		override = m
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = session.DefaultSessionID
	}
	if !s.chatLimiter.Allow(sessionID) {
		return apierrors.RateLimitExceeded("too many messages for this session")
	}

	rc := observability.NewRequestContext(slog.Default(), c.Response().Header().Get(echo.HeaderXRequestID), sessionID)
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout.RequestTimeout)
	defer cancel()
	ctx = observability.WithRequestContext(ctx, rc)

	reply, err := s.Dispatcher.Dispatch(ctx, agent.Turn{
		SessionID: sessionID,
		Text:      text,
		Override:  override,
	})
	if err != nil {
		return err
	}

	rc.Logger().Info("chat turn completed",
		slog.String(observability.LogFieldModule, reply.Module.String()),
		slog.Int(observability.LogFieldMessageLen, len(text)),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()))

	return c.JSON(http.StatusOK, ChatResponse{
		Module:    reply.Module.String(),
		Text:      reply.Text,
		SessionID: reply.SessionID,
	})
}

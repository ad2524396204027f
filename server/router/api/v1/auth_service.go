package v1

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/switchboard/internal/observability"
	"github.com/hrygo/switchboard/plugin/ai/handler"
	"github.com/hrygo/switchboard/plugin/ai/session"
	apierrors "github.com/hrygo/switchboard/server/internal/errors"
)

type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	SessionID string `json:"session_id"`
}

type LoginResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Login authenticates a session and restores the user's history.
// POST /login
func (s *APIV1Service) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return apierrors.InvalidArgument("username and password are required")
	}

	ctx := c.Request().Context()
	if err := s.Auth.Verify(ctx, username, req.Password); err != nil {
		if errors.Is(err, handler.ErrInvalidCredentials) {
			return c.JSON(http.StatusOK, LoginResponse{OK: false, Message: "invalid username or password"})
		}
		return err
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = session.DefaultSessionID
	}
	rc := observability.NewRequestContext(slog.Default(), c.Response().Header().Get(echo.HeaderXRequestID), sessionID)
	ctx = observability.WithRequestContext(ctx, rc)

	sess := s.Sessions.GetOrCreate(sessionID)
	unlock, err := s.Sessions.Lock(ctx, sess.ID())
	if err != nil {
		return err
	}
	defer unlock()

	s.Router.Login(ctx, sess, username)
	rc.Logger().Info("session logged in", "user", username)
	return c.JSON(http.StatusOK, LoginResponse{
		OK:      true,
		Message: fmt.Sprintf("logged in as %s", username),
	})
}

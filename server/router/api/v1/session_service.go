package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/switchboard/plugin/ai/session"
	apierrors "github.com/hrygo/switchboard/server/internal/errors"
)

type ListSessionsResponse struct {
	Sessions []string `json:"sessions"`
	Count    int      `json:"count"`
}

type DeleteSessionResponse struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"session_id"`
}

// GetSession returns a snapshot of one session.
// GET /session/:id
func (s *APIV1Service) GetSession(c echo.Context) error {
	sess, err := s.Sessions.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return apierrors.NotFound("session not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}

// DeleteSession drops a session and its rate-limit bucket.
// DELETE /session/:id
func (s *APIV1Service) DeleteSession(c echo.Context) error {
	id := c.Param("id")
	if err := s.Sessions.Delete(id); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return apierrors.NotFound("session not found")
		}
		return err
	}
	s.chatLimiter.Forget(id)
	return c.JSON(http.StatusOK, DeleteSessionResponse{OK: true, SessionID: id})
}

// ListSessions returns all session ids.
// GET /sessions
func (s *APIV1Service) ListSessions(c echo.Context) error {
	ids := s.Sessions.ListIDs()
	return c.JSON(http.StatusOK, ListSessionsResponse{Sessions: ids, Count: len(ids)})
}

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/switchboard/internal/profile"
	"github.com/hrygo/switchboard/plugin/ai"
	apiv1 "github.com/hrygo/switchboard/server/router/api/v1"
	"github.com/hrygo/switchboard/store"
)

// maxRequestBody caps inbound JSON bodies.
const maxRequestBody = "1M"

type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	API     *apiv1.APIV1Service

	echoServer *echo.Echo
}

// NewServer builds the HTTP server. llm may be nil to use the provider
// configured in the profile.
func NewServer(_ context.Context, profile *profile.Profile, store *store.Store, llm ai.LLMService) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.HTTPErrorHandler = apiv1.HTTPErrorHandler
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.RequestID())
	echoServer.Use(middleware.BodyLimit(maxRequestBody))
	echoServer.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}))
	s.echoServer = echoServer

	api, err := apiv1.NewAPIV1Service(profile, store, llm)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create api service")
	}
	api.RegisterRoutes(echoServer)
	s.API = api

	return s, nil
}

// Handler exposes the router for in-process use.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}

	go func() {
		s.echoServer.Listener = listener
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	slog.Info("switchboard started", "address", listener.Addr().String(), "mode", s.Profile.Mode)
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
	slog.Info("switchboard stopped properly")
}

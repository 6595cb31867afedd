// Package server bootstraps the HTTP front door for the QA platform.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/andyjacy/aicommonplatform/internal/profile"
	apiv1 "github.com/andyjacy/aicommonplatform/server/router/api/v1"
)

// Server wraps the echo instance and its lifecycle.
type Server struct {
	echoServer *echo.Echo
	profile    *profile.Profile
}

// NewServer creates the HTTP server and mounts the API.
func NewServer(_ context.Context, p *profile.Profile, api *apiv1.APIV1Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":    "healthy",
			"service":   "qa_entry",
			"version":   p.Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api.Register(e)

	return &Server{
		echoServer: e,
		profile:    p,
	}
}

// Start begins serving. It returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	slog.Info("server listening", "addr", addr, "mode", s.profile.Mode)
	return s.echoServer.Start(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server gracefully", "error", err)
	}
}

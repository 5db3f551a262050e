package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "user-crud-console/internal/adapter/gin/handler"
	"user-crud-console/internal/adapter/gin/middleware"
	ginrouter "user-crud-console/internal/adapter/gin/router"
	"user-crud-console/internal/config"
)

// Server serves the Gin router over HTTP.
type Server struct {
	HTTP   *http.Server
	Logger *zap.Logger
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, handler *ginhandler.UserHandler, rateLimiter *middleware.RateLimiter) *Server {
	router := ginrouter.SetupRouter(handler, rateLimiter, cfg.Logger.ServiceName, l)

	return &Server{
		HTTP: &http.Server{
			Addr:              ":" + cfg.App.HTTPPort,
			Handler:           router,
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		Logger: l,
	}
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.Logger.Info("user API listening", zap.String("address", s.HTTP.Addr))
	if err := s.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}

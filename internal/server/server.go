// Package server provides the HTTP API for Senko.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/senko/internal/config"
	"github.com/hyperjump/senko/internal/engine"
	"github.com/hyperjump/senko/internal/storage"
)

// Server is the HTTP server for the Senko API.
type Server struct {
	engine  *engine.Engine
	store   storage.Store
	config  *config.Config
	logger  *zap.Logger
	version string
	server  *http.Server
}

// NewServer creates a server with the given dependencies. store may be nil
// when no database path is configured; run endpoints then return 501.
func NewServer(
	eng *engine.Engine,
	store storage.Store,
	cfg *config.Config,
	logger *zap.Logger,
	version string,
) *Server {
	return &Server{
		engine:  eng,
		store:   store,
		config:  cfg,
		logger:  logger,
		version: version,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Handler builds the route tree. Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/analyze", s.handleAnalyze)
	r.Post("/api/v1/batch", s.handleBatch)
	r.Get("/api/v1/runs", s.handleListRuns)
	r.Get("/api/v1/runs/{runID}", s.handleGetRun)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	return r
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

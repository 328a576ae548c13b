// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the already-seen engine over HTTP/JSON.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ManuGH/e2seen/internal/health"
	"github.com/ManuGH/e2seen/internal/log"
	"github.com/ManuGH/e2seen/internal/seen"
	"github.com/rs/zerolog"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second

	maxBodyBytes = 1 << 20
)

// Config configures the API server.
type Config struct {
	ListenAddr string
	RateLimit  int
	RateWindow time.Duration
	Version    string
}

// Server is the HTTP front end of an Engine.
type Server struct {
	engine  *seen.Engine
	cfg     Config
	health  *health.Manager
	logger  zerolog.Logger
	handler http.Handler
}

// New builds the server and its routes.
func New(engine *seen.Engine, cfg Config) *Server {
	s := &Server{
		engine: engine,
		cfg:    cfg,
		health: health.NewManager(cfg.Version),
		logger: log.WithComponent("api"),
	}
	s.health.RegisterChecker(health.NewRulesFileChecker(engine.Store().Path()))
	s.handler = s.routes()
	return s
}

// Handler returns the configured HTTP handler with all routes and middleware applied.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str(log.FieldEvent, "api.listening").
			Str("addr", ln.Addr().String()).
			Msg("API server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Error().Err(err).Str(log.FieldEvent, "api.server.failed").Msg("API server failed")
		return fmt.Errorf("API server: %w", err)
	case <-ctx.Done():
		s.logger.Info().Str(log.FieldEvent, "api.shutdown").Msg("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("API server shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

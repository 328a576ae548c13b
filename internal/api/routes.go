// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/e2seen/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	middleware.ApplyStack(r, middleware.StackConfig{
		EnableLogging: true,
		EnableMetrics: true,
		RateLimit:     s.cfg.RateLimit,
		RateWindow:    s.cfg.RateWindow,
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/rules", s.handleListRules)
		r.Get("/rules/{title}", s.handleGetRule)
		r.Post("/check", s.handleCheck)
		r.Post("/mark", s.handleMark)
		r.Post("/unmark", s.handleUnmark)
		r.Post("/label", s.handleLabel)
		r.Post("/operator", s.handleOperator)
		r.Post("/group", s.handleGroup)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

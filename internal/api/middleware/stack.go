// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"time"

	"github.com/ManuGH/e2seen/internal/log"
	"github.com/go-chi/chi/v5"
)

// StackConfig configures the HTTP ingress middleware stack.
type StackConfig struct {
	EnableLogging bool
	EnableMetrics bool
	RateLimit     int
	RateWindow    time.Duration
}

// ApplyStack applies the middleware stack to r, outermost first.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(Recoverer)
	r.Use(RequestID)
	r.Use(SecurityHeaders)
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	if cfg.EnableLogging {
		r.Use(log.Middleware())
	}
	r.Use(RateLimit(RateLimitConfig{
		RequestLimit: cfg.RateLimit,
		WindowSize:   cfg.RateWindow,
	}))
}

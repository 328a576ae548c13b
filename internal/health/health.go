// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package health provides readiness checks for the API server.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/e2seen/internal/log"
)

// Status represents the overall readiness status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a component check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for readiness checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager runs the registered checkers.
type Manager struct {
	version  string
	checkers []Checker
	now      func() time.Time
}

func NewManager(version string) *Manager {
	return &Manager{
		version: version,
		now:     time.Now,
	}
}

func (m *Manager) RegisterChecker(checker Checker) {
	m.checkers = append(m.checkers, checker)
}

// Ready runs all checkers. Any unhealthy result makes the service not ready;
// degraded results keep it ready.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	resp := ReadinessResponse{
		Ready:     true,
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: m.now(),
	}
	if len(m.checkers) == 0 {
		return resp
	}

	resp.Checks = make(map[string]CheckResult, len(m.checkers))
	for _, checker := range m.checkers {
		result := checker.Check(ctx)
		resp.Checks[checker.Name()] = result

		switch result.Status {
		case StatusUnhealthy:
			resp.Ready = false
			resp.Status = StatusUnhealthy
		case StatusDegraded:
			if resp.Status == StatusHealthy {
				resp.Status = StatusDegraded
			}
		}
	}
	return resp
}

// ServeReady handles HTTP readiness check requests
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "readiness")

	resp := m.Ready(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if resp.Ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "readiness.encode_error").Msg("failed to encode readiness response")
	}

	logger.Debug().
		Str(log.FieldEvent, "readiness.checked").
		Str("status", string(resp.Status)).
		Bool("ready", resp.Ready).
		Msg("readiness check performed")
}

// RulesFileChecker checks that the rules file can be written. A missing file
// is fine as long as its directory exists.
type RulesFileChecker struct {
	path string
}

func NewRulesFileChecker(path string) *RulesFileChecker {
	return &RulesFileChecker{path: path}
}

func (c *RulesFileChecker) Name() string { return "rules_file" }

func (c *RulesFileChecker) Check(context.Context) CheckResult {
	dir := filepath.Dir(c.path)
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return CheckResult{Status: StatusUnhealthy, Error: "directory not found", Message: dir}
	case err != nil:
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	case !info.IsDir():
		return CheckResult{Status: StatusUnhealthy, Error: "expected directory", Message: dir}
	}

	info, err = os.Stat(c.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return CheckResult{Status: StatusDegraded, Message: "no rules saved yet"}
	case err != nil:
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	case info.IsDir():
		return CheckResult{Status: StatusUnhealthy, Error: "expected file, got directory", Message: c.path}
	}
	return CheckResult{Status: StatusHealthy, Message: c.path}
}

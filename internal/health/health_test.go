// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestManager_Ready_NoCheckers(t *testing.T) {
	m := NewManager("v1.0.0")
	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.Nil(t, resp.Checks)
}

func TestManager_Ready_Aggregates(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		ready    bool
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, true, StatusHealthy},
		{"degraded stays ready", []Status{StatusHealthy, StatusDegraded}, true, StatusDegraded},
		{"unhealthy wins", []Status{StatusUnhealthy, StatusDegraded}, false, StatusUnhealthy},
		{"unhealthy before degraded", []Status{StatusDegraded, StatusUnhealthy}, false, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("v1")
			for i, s := range tt.statuses {
				m.RegisterChecker(&mockChecker{name: string(rune('a' + i)), status: s})
			}
			resp := m.Ready(context.Background())
			assert.Equal(t, tt.ready, resp.Ready)
			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Checks, len(tt.statuses))
		})
	}
}

func TestServeReady(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	m := NewManager("v1")
	m.now = func() time.Time { return fixed }
	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Timestamp.Equal(fixed))

	m.RegisterChecker(&mockChecker{name: "broken", status: StatusUnhealthy})
	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRulesFileChecker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alreadyseen.txt")
	c := NewRulesFileChecker(path)
	assert.Equal(t, "rules_file", c.Name())

	assert.Equal(t, StatusDegraded, c.Check(context.Background()).Status)

	require.NoError(t, os.WriteFile(path, []byte("[EventCriteriaSet]\ntitle = Foo\n"), 0o600))
	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)

	missing := NewRulesFileChecker(filepath.Join(dir, "nope", "alreadyseen.txt"))
	res := missing.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "directory not found", res.Error)

	asDir := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(asDir, 0o750))
	res = NewRulesFileChecker(asDir).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "expected file, got directory", res.Error)
}

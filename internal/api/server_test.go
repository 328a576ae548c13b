// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/e2seen/internal/seen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := seen.NewStore(filepath.Join(t.TempDir(), "alreadyseen.txt"))
	require.NoError(t, store.Load())
	return New(seen.NewEngine(store), Config{Version: "test"})
}

func do(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, r))

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func mark(title, station, desc string, spec seen.MarkSpec) map[string]any {
	return map[string]any{
		"source": map[string]string{
			"kind": "recording", "title": title, "station": station, "description": desc,
		},
		"station":     spec.Station,
		"description": spec.Description,
		"extended":    spec.Extended,
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, body := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.EqualValues(t, 0, body["rules"])

	rec, body = do(t, s, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ready"])
	assert.Equal(t, "degraded", body["status"], "no rules saved yet")
}

func TestMarkCheckUnmark(t *testing.T) {
	s := newTestServer(t)
	spec := seen.MarkSpec{Station: true, Description: true}

	rec, body := do(t, s, http.MethodPost, "/api/v1/mark", mark("Foo", "BBC1", "Episode 3", spec))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Foo", body["title"])
	assert.Equal(t, "station", body["shape"])

	rec, body = do(t, s, http.MethodPost, "/api/v1/check", map[string]string{
		"title": "Foo", "station": "BBC1", "description": "Episode 3",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["seen"])
	rule := body["rule"].(map[string]any)
	assert.Equal(t, "station+description", rule["level"])
	assert.Equal(t, "equals", rule["operator"])

	_, body = do(t, s, http.MethodPost, "/api/v1/check", map[string]string{"title": "Foo", "station": "ITV"})
	assert.Equal(t, false, body["seen"])
	assert.NotContains(t, body, "rule")

	rec, _ = do(t, s, http.MethodPost, "/api/v1/unmark", mark("Foo", "", "", seen.MarkSpec{}))
	require.Equal(t, http.StatusOK, rec.Code)
	_, body = do(t, s, http.MethodPost, "/api/v1/check", map[string]string{"title": "Foo", "station": "BBC1", "description": "Episode 3"})
	assert.Equal(t, false, body["seen"])
}

func TestMarkErrors(t *testing.T) {
	s := newTestServer(t)
	rec, _ := do(t, s, http.MethodPost, "/api/v1/mark", mark("Foo", "BBC", "", seen.MarkSpec{Station: true}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, s, http.MethodPost, "/api/v1/mark", mark("Foo", "", "", seen.MarkSpec{}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(seen.WouldOverwriteExistingCriteria), body["error"])
	assert.Contains(t, body["message"], "stations")

	rec, body = do(t, s, http.MethodPost, "/api/v1/mark", mark("Foo", "BBC", "x", seen.MarkSpec{Station: true, Description: true}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(seen.DescriptionNotAllowedAtThisLevel), body["error"])

	rec, body = do(t, s, http.MethodPost, "/api/v1/mark", mark("Bar", "", "", seen.MarkSpec{Station: true}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "station", body["field"])

	rec, body = do(t, s, http.MethodPost, "/api/v1/mark", `{"source": {"title": "Foo"}, "bogus": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_body", body["error"])

	rec, _ = do(t, s, http.MethodPost, "/api/v1/check", `{"station": "BBC"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRulesListing(t *testing.T) {
	s := newTestServer(t)
	for _, title := range []string{"b", "A/B", "C"} {
		rec, _ := do(t, s, http.MethodPost, "/api/v1/mark", mark(title, "", "", seen.MarkSpec{}))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, _ := do(t, s, http.MethodPost, "/api/v1/group", map[string]string{"title": "C", "group": "Krimi"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, body := do(t, s, http.MethodGet, "/api/v1/rules", nil)
	var titles []string
	for _, r := range body["rules"].([]any) {
		titles = append(titles, r.(map[string]any)["title"].(string))
	}
	assert.Equal(t, []string{"A/B", "b", "C"}, titles)

	_, body = do(t, s, http.MethodGet, "/api/v1/rules?group=Krimi", nil)
	assert.Len(t, body["rules"], 1)

	rec, body = do(t, s, http.MethodGet, "/api/v1/rules/A%2FB", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A/B", body["title"])
	assert.Equal(t, "title", body["shape"])

	rec, body = do(t, s, http.MethodGet, "/api/v1/rules/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "rule_not_found", body["error"])
}

func TestEdits(t *testing.T) {
	s := newTestServer(t)
	rec, _ := do(t, s, http.MethodPost, "/api/v1/mark", mark("Foo", "", "Episode 3", seen.MarkSpec{Description: true}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, s, http.MethodPost, "/api/v1/operator", map[string]any{
		"title": "Foo", "pattern": "Episode", "operator": "startswith",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, "pattern must exist")
	assert.Equal(t, "rule_not_found", body["error"])

	rec, _ = do(t, s, http.MethodPost, "/api/v1/operator", map[string]any{
		"title": "Foo", "pattern": "Episode 3", "operator": "contains",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, s, http.MethodPost, "/api/v1/label", map[string]any{
		"title": "Foo", "pattern": "Episode 3", "label": "S01E03",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	descs := body["descriptions"].(map[string]any)
	entry := descs["standard"].([]any)[0].(map[string]any)
	assert.Equal(t, "contains", entry["operator"])
	assert.Equal(t, "S01E03", entry["episode"])
	assert.Empty(t, descs["extended"])

	_, body = do(t, s, http.MethodPost, "/api/v1/check", map[string]string{"title": "Foo", "description": "Best of Episode 3"})
	assert.Equal(t, true, body["seen"])
	assert.Equal(t, "S01E03", body["episode"])

	rec, body = do(t, s, http.MethodPost, "/api/v1/operator", map[string]any{"title": "Foo", "operator": "contains"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_reference", body["error"])

	rec, _ = do(t, s, http.MethodPost, "/api/v1/operator", map[string]any{"title": "Foo", "pattern": "Episode 3", "operator": "regex"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFlushFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	s := New(seen.NewEngine(seen.NewStore(filepath.Join(blocker, "alreadyseen.txt"))), Config{})

	rec, body := do(t, s, http.MethodPost, "/api/v1/mark", mark("Foo", "", "", seen.MarkSpec{}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "flush_failed", body["error"])

	_, body = do(t, s, http.MethodPost, "/api/v1/check", map[string]string{"title": "Foo"})
	assert.Equal(t, true, body["seen"], "change stays active in memory")
}

func TestMetricsAndNotFound(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/v1/check", map[string]string{"title": "Foo"})

	rec, _ := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "e2seen_queries_total")
	assert.Contains(t, rec.Body.String(), "e2seen_http_request_duration_seconds")

	rec, body := do(t, s, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])

	rec, _ = do(t, s, http.MethodGet, "/api/v1/mark", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		res, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return New(s.URL+"/", WithTimeout(500*time.Millisecond))
}

func TestClient_GetTimers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/timerlist", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": true, "timers": [
			{"serviceref": "1:0:19:283D:3FB:1:C00000:0:0:0:", "servicename": "Das Erste HD",
			 "name": "Tatort", "description": "Borowski und der Schatten", "descriptionextended": "Kiel ermittelt.",
			 "begin": 1700000000, "end": "1700005400", "state": 0, "disabled": 0}
		]}`))
	})
	c := newTestServer(t, mux)

	timers, err := c.GetTimers(context.Background())
	require.NoError(t, err)
	require.Len(t, timers, 1)
	tm := timers[0]
	assert.Equal(t, "Tatort", tm.Name)
	assert.Equal(t, "Das Erste HD", tm.ServiceName)
	assert.Equal(t, "Kiel ermittelt.", tm.Extended)
	assert.EqualValues(t, 1700000000, tm.Begin)
	assert.EqualValues(t, 1700005400, tm.End)
}

func TestClient_GetTimersResultFalse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/timerlist", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result": false, "message": "no timers service"}`))
	})
	c := newTestServer(t, mux)

	_, err := c.GetTimers(context.Background())
	require.ErrorIs(t, err, ErrUpstreamBadResponse)
	assert.Contains(t, err.Error(), "no timers service")
}

func TestClient_GetRecordings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/movielist", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media/hdd/movie/", r.URL.Query().Get("dirname"))
		_, _ = w.Write([]byte(`{"result": true, "directory": "/media/hdd/movie/", "movies": [
			{"eventname": "Foo", "servicename": "BBC1", "description": "Episode 3",
			 "descriptionExtended": "Long text", "recordingtime": "1700000000", "filesize": 123456789},
			{"eventname": "Bar", "servicename": "ITV", "extended_description": "Legacy text", "filesize": "42"}
		]}`))
	})
	c := newTestServer(t, mux)

	list, err := c.GetRecordings(context.Background(), "/media/hdd/movie/")
	require.NoError(t, err)
	require.Len(t, list.Movies, 2)
	assert.Equal(t, "Long text", list.Movies[0].ExtendedDescription())
	assert.EqualValues(t, 1700000000, list.Movies[0].Begin)
	assert.Equal(t, StringOrNumberString("123456789"), list.Movies[0].Filesize)
	assert.Equal(t, "Legacy text", list.Movies[1].ExtendedDescription())
}

func TestClient_GetEPGAndSearch(t *testing.T) {
	const sref = "1:0:19:283D:3FB:1:C00000:0:0:0:"
	events := `{"result": true, "events": [
		{"id": 4711, "title": "Foo", "shortdesc": "Episode 3", "longdesc": "Plot", "sname": "BBC1",
		 "sref": "` + sref + `", "begin_timestamp": 1700000000, "duration_sec": "3600"}
	]}`
	mux := http.NewServeMux()
	mux.HandleFunc("/api/epgservice", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sRef") != sref {
			http.Error(w, "Missing sRef parameter", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(events))
	})
	mux.HandleFunc("/api/epgsearch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Foo", r.URL.Query().Get("search"))
		_, _ = w.Write([]byte(events))
	})
	c := newTestServer(t, mux)

	got, err := c.GetEPG(context.Background(), sref)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Plot", got[0].LongDesc)
	assert.EqualValues(t, 3600, got[0].Duration)
	assert.EqualValues(t, 4711, got[0].ID)

	got, err = c.SearchEPG(context.Background(), " Foo ")
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = c.GetEPG(context.Background(), "other")
	require.ErrorIs(t, err, ErrUpstreamBadResponse)
	var owiErr *OWIError
	require.True(t, errors.As(err, &owiErr))
	assert.Equal(t, http.StatusBadRequest, owiErr.Status)
}

func TestClient_ErrorMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/timerlist", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	mux.HandleFunc("/api/movielist", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not-json"))
	})
	mux.HandleFunc("/api/epgservice", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})
	c := newTestServer(t, mux)
	ctx := context.Background()

	_, err := c.GetTimers(ctx)
	assert.ErrorIs(t, err, ErrUpstreamError)
	assert.Contains(t, err.Error(), "HTTP 502")

	_, err = c.GetRecordings(ctx, "")
	assert.ErrorIs(t, err, ErrUpstreamBadResponse)

	_, err = c.GetEPG(ctx, "x")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = c.SearchEPG(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Timeout(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(s.Close)

	c := New(s.URL, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := c.GetTimers(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
}

func TestClient_Unreachable(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	base := s.URL
	s.Close()

	c := New(base, WithCircuitBreaker(NewCircuitBreaker(2, time.Minute)))
	ctx := context.Background()

	_, err := c.GetTimers(ctx)
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	_, err = c.GetTimers(ctx)
	require.ErrorIs(t, err, ErrUpstreamUnavailable)

	_, err = c.GetTimers(ctx)
	require.ErrorIs(t, err, ErrCircuitOpen)
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	mux := http.NewServeMux()
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)

	cb := NewCircuitBreaker(1, time.Minute)
	c := New(s.URL, WithCircuitBreaker(cb))
	for i := 0; i < 3; i++ {
		_, err := c.GetTimers(context.Background())
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, StateClosed, cb.State())
}

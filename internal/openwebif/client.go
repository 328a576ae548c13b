// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package openwebif reads timers, recordings and EPG events from an Enigma2
// receiver's OpenWebIF JSON API.
package openwebif

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuGH/e2seen/internal/log"
	"github.com/ManuGH/e2seen/internal/metrics"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds a single request when no HTTP client is supplied.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes     = 16 << 20
	maxErrorBodySize = 512

	defaultBreakerThreshold = 5
	defaultBreakerReset     = 30 * time.Second
)

// Client talks to one receiver.
type Client struct {
	base    string
	http    *http.Client
	breaker *CircuitBreaker
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithCircuitBreaker replaces the default breaker.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// New returns a client for the receiver at base, e.g. "http://192.168.1.10".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: log.WithComponent("openwebif"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = NewCircuitBreaker(defaultBreakerThreshold, defaultBreakerReset)
	}
	return c
}

// BaseURL returns the receiver base URL without trailing slash.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) loggerFor(ctx context.Context) *zerolog.Logger {
	l := log.WithContext(ctx, c.logger)
	return &l
}

// get performs a GET on path with query and returns the response body.
func (c *Client) get(ctx context.Context, path, operation string, query url.Values) ([]byte, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	start := time.Now()
	var body []byte
	err := c.breaker.Execute(func() error {
		var err error
		body, err = c.do(ctx, u, operation)
		return err
	}, countsAsFailure)

	status := "success"
	switch {
	case errors.Is(err, ErrCircuitOpen):
		status = "circuit_open"
	case errors.Is(err, ErrTimeout):
		status = "timeout"
	case err != nil:
		status = "error"
	}
	metrics.ObserveReceiverRequest(operation, status, time.Since(start).Seconds())

	if err != nil {
		c.loggerFor(ctx).Warn().
			Err(err).
			Str(log.FieldEvent, "openwebif.request_failed").
			Str("operation", operation).
			Str(log.FieldBaseURL, c.base).
			Msg("receiver request failed")
		return nil, err
	}
	c.loggerFor(ctx).Debug().
		Str(log.FieldEvent, "openwebif.request").
		Str("operation", operation).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("receiver request done")
	return body, nil
}

func (c *Client) do(ctx context.Context, u, operation string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("openwebif: %s: build request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(operation, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodySize))
		return nil, statusError(operation, res.StatusCode, strings.TrimSpace(string(snippet)))
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(operation, err)
	}
	return body, nil
}

// countsAsFailure reports whether err says something about receiver health.
func countsAsFailure(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUpstreamError)
}

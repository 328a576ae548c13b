// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound            = errors.New("upstream: resource not found")
	ErrForbidden           = errors.New("upstream: access forbidden")
	ErrUpstreamUnavailable = errors.New("upstream: host unreachable or transport failure")
	ErrUpstreamError       = errors.New("upstream: internal error (5xx)")
	ErrUpstreamBadResponse = errors.New("upstream: invalid response format or malformed data")
	ErrTimeout             = errors.New("upstream: request timed out")
)

// OWIError wraps one of the sentinel errors with request context.
type OWIError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error // lower-level cause, e.g. a net.Error
}

func (e *OWIError) Error() string {
	msg := fmt.Sprintf("openwebif: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OWIError) Unwrap() error {
	return e.Sentinel
}

// statusError maps a non-2xx response to an OWIError.
func statusError(operation string, status int, body string) *OWIError {
	sentinel := ErrUpstreamBadResponse
	switch {
	case status == http.StatusNotFound:
		sentinel = ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = ErrForbidden
	case status >= 500:
		sentinel = ErrUpstreamError
	}
	return &OWIError{Sentinel: sentinel, Operation: operation, Status: status, Body: body}
}

// transportError maps a failed round trip to an OWIError.
func transportError(operation string, err error) *OWIError {
	sentinel := ErrUpstreamUnavailable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		sentinel = ErrTimeout
	}
	return &OWIError{Sentinel: sentinel, Operation: operation, Err: err}
}

// decodeError reports a response body that could not be parsed.
func decodeError(operation string, err error) *OWIError {
	return &OWIError{Sentinel: ErrUpstreamBadResponse, Operation: operation, Err: err}
}

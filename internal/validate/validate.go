// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package validate accumulates configuration validation failures.
package validate

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Error represents a validation error
type Error struct {
	Field   string // Field name that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
}

func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Validator accumulates validation errors.
type Validator struct {
	errors []Error
}

// ValidationError bundles multiple validation errors into a single error value.
type ValidationError struct {
	errors []Error
}

// New creates a new validator
func New() *Validator {
	return &Validator{}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string, value any) {
	v.errors = append(v.errors, Error{Field: field, Value: value, Message: message})
}

// IsValid returns true if no errors have been accumulated
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all accumulated validation errors
func (v *Validator) Errors() []Error {
	return v.errors
}

// Err converts the accumulated validation errors into an error value.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return ValidationError{errors: slices.Clone(v.errors)}
}

// Errors returns the individual validation errors making up the validation failure.
func (e ValidationError) Errors() []Error {
	return e.errors
}

func (e ValidationError) Error() string {
	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// URL validates an absolute URL with one of the allowed schemes.
func (v *Validator) URL(field, value string, allowedSchemes []string) {
	if value == "" {
		v.AddError(field, "URL cannot be empty", value)
		return
	}
	u, err := url.Parse(value)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid URL: %v", err), value)
		return
	}
	if u.Host == "" {
		v.AddError(field, "URL must have a host", value)
		return
	}
	if len(allowedSchemes) > 0 && !slices.Contains(allowedSchemes, u.Scheme) {
		v.AddError(field,
			fmt.Sprintf("unsupported URL scheme %q (allowed: %v)", u.Scheme, allowedSchemes),
			value)
	}
}

// NotEmpty validates that a string is not empty or whitespace-only
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

// OneOf validates that a value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		v.AddError(field, fmt.Sprintf("value must be one of %v, got %q", allowed, value), value)
	}
}

// Positive validates that a number is positive (> 0)
func (v *Validator) Positive(field string, value int) {
	if value <= 0 {
		v.AddError(field, fmt.Sprintf("value must be positive, got %d", value), value)
	}
}

// PositiveDuration validates that a duration is greater than zero.
func (v *Validator) PositiveDuration(field string, d time.Duration) {
	if d <= 0 {
		v.AddError(field, fmt.Sprintf("duration must be positive, got %s", d), d)
	}
}

// ListenAddr validates a host:port pair. The host may be empty.
func (v *Validator) ListenAddr(field, addr string) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid listen address: %v", err), addr)
		return
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		v.AddError(field, fmt.Sprintf("invalid port %q", port), addr)
	}
}

// FilePath validates a path that will hold a regular file. The file itself
// does not have to exist, but the path must not name a directory.
func (v *Validator) FilePath(field, path string) {
	if strings.TrimSpace(path) == "" {
		v.AddError(field, "file path cannot be empty", path)
		return
	}
	if strings.ContainsRune(path, 0) {
		v.AddError(field, "file path contains a NUL byte", path)
		return
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		v.AddError(field, "path is a directory", path)
	}
}

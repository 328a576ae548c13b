// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name           string
		value          string
		allowedSchemes []string
		wantErr        bool
	}{
		{"valid http", "http://example.com", []string{"http", "https"}, false},
		{"valid https", "https://example.com", []string{"http", "https"}, false},
		{"empty url", "", []string{"http"}, true},
		{"no host", "http://", []string{"http"}, true},
		{"invalid scheme", "ftp://example.com", []string{"http", "https"}, true},
		{"no scheme", "example.com", []string{"http"}, true},
		{"with port", "http://192.168.1.10:8080", []string{"http"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.URL("testURL", tt.value, tt.allowedSchemes)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_ListenAddr(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{":8080", false},
		{"127.0.0.1:0", false},
		{"[::1]:9000", false},
		{"8080", true},
		{"host:http", true},
		{":70000", true},
	}
	for _, tt := range tests {
		v := New()
		v.ListenAddr("Listen", tt.addr)
		if got := !v.IsValid(); got != tt.wantErr {
			t.Errorf("ListenAddr(%q) error = %v, want %v", tt.addr, got, tt.wantErr)
		}
	}
}

func TestValidator_FilePath(t *testing.T) {
	dir := t.TempDir()

	v := New()
	v.FilePath("Rules", filepath.Join(dir, "alreadyseen.txt"))
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}

	v = New()
	v.FilePath("Rules", dir)
	v.FilePath("Rules", " ")
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", v.Errors())
	}
}

func TestValidator_Accumulates(t *testing.T) {
	v := New()
	v.NotEmpty("A", "")
	v.Positive("B", 0)
	v.PositiveDuration("C", -time.Second)
	v.OneOf("D", "loud", []string{"debug", "info"})

	err := v.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors()) != 4 {
		t.Fatalf("expected 4 errors, got %d", len(verr.Errors()))
	}
	for _, field := range []string{"A", "B", "C", "D"} {
		if !strings.Contains(err.Error(), "validation failed for "+field) {
			t.Errorf("message misses field %s: %s", field, err)
		}
	}

	if New().Err() != nil {
		t.Error("empty validator must not return an error")
	}
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/e2seen/internal/log"
	"github.com/rs/zerolog"
)

func envLogger() zerolog.Logger { return log.WithComponent("config") }

// ParseString reads a string from environment variable or returns default value.
// An empty variable counts as unset.
func ParseString(key, defaultValue string) string {
	logger := envLogger()
	if value, ok := os.LookupEnv(key); ok && value != "" {
		logger.Debug().
			Str("key", key).
			Str("value", value).
			Str("source", "environment").
			Msg("using environment variable")
		return value
	}
	return defaultValue
}

// ParseInt reads an integer from environment variable or returns default value.
// It falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Int("value", i).
		Str("source", "environment").
		Msg("using environment variable")
	return i
}

// ParseDuration reads a duration in Go syntax (e.g. "5s") from environment
// variable or returns default value.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Dur("value", d).
		Str("source", "environment").
		Msg("using environment variable")
	return d
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader for the YAML file at configPath. An empty path
// skips the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// ConsumedKeys returns the environment keys the loader looked at, sorted.
func (l *Loader) ConsumedKeys() []string {
	keys := make([]string, 0, len(l.ConsumedEnvKeys))
	for k := range l.ConsumedEnvKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Load runs defaults, file, environment and validation in that order.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFile(&cfg, fileCfg)
	}

	l.mergeEnv(&cfg)
	cfg.Version = l.version

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes path strictly: unknown keys and trailing documents fail.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func mergeFile(cfg *AppConfig, f *FileConfig) {
	setString(&cfg.DataDir, f.DataDir)
	setString(&cfg.RulesFile, f.RulesFile)
	setString(&cfg.LogLevel, f.Log.Level)
	setString(&cfg.LogService, f.Log.Service)
	setString(&cfg.Receiver.BaseURL, f.Receiver.BaseURL)
	if f.Receiver.Timeout != 0 {
		cfg.Receiver.Timeout = f.Receiver.Timeout
	}
	setString(&cfg.API.ListenAddr, f.API.ListenAddr)
	if f.API.RateLimit != nil {
		cfg.API.RateLimit = *f.API.RateLimit
	}
	if f.API.RateWindow != 0 {
		cfg.API.RateWindow = f.API.RateWindow
	}
	if f.Watch != nil {
		cfg.Watch = *f.Watch
	}
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.RulesFile = l.envString(EnvRulesFile, cfg.RulesFile)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)
	cfg.Receiver.BaseURL = l.envString(EnvReceiverURL, cfg.Receiver.BaseURL)
	cfg.Receiver.Timeout = l.envDuration(EnvReceiverTimeout, cfg.Receiver.Timeout)
	cfg.API.ListenAddr = l.envString(EnvListenAddr, cfg.API.ListenAddr)
	cfg.API.RateLimit = l.envInt(EnvRateLimit, cfg.API.RateLimit)
	cfg.Watch = l.envBool(EnvWatch, cfg.Watch)
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"path/filepath"
	"time"
)

// Defaults.
const (
	DefaultDataDir         = "/etc/enigma2"
	DefaultRulesFile       = "alreadyseen.txt"
	DefaultLogLevel        = "info"
	DefaultLogService      = "e2seen"
	DefaultReceiverURL     = "http://127.0.0.1"
	DefaultReceiverTimeout = 10 * time.Second
	DefaultListenAddr      = "127.0.0.1:8089"
	DefaultRateLimit       = 120
	DefaultRateWindow      = time.Minute
)

// Environment variable names.
const (
	EnvDataDir         = "E2SEEN_DATA"
	EnvRulesFile       = "E2SEEN_RULES_FILE"
	EnvLogLevel        = "E2SEEN_LOG_LEVEL"
	EnvLogService      = "E2SEEN_LOG_SERVICE"
	EnvReceiverURL     = "E2SEEN_RECEIVER_URL"
	EnvReceiverTimeout = "E2SEEN_RECEIVER_TIMEOUT"
	EnvListenAddr      = "E2SEEN_LISTEN"
	EnvRateLimit       = "E2SEEN_RATE_LIMIT"
	EnvWatch           = "E2SEEN_WATCH"
)

// AppConfig is the effective configuration.
type AppConfig struct {
	Version    string
	DataDir    string
	RulesFile  string
	LogLevel   string
	LogService string
	Receiver   ReceiverConfig
	API        APIConfig
	Watch      bool // reload the rules file when it changes on disk
}

// ReceiverConfig addresses the OpenWebIF interface of the receiver.
type ReceiverConfig struct {
	BaseURL string
	Timeout time.Duration
}

// APIConfig configures the HTTP API started by "serve".
type APIConfig struct {
	ListenAddr string
	RateLimit  int // requests per RateWindow and client IP; 0 disables limiting
	RateWindow time.Duration
}

// RulesPath returns the rules file path. A relative RulesFile is resolved
// against DataDir.
func (c AppConfig) RulesPath() string {
	if filepath.IsAbs(c.RulesFile) {
		return filepath.Clean(c.RulesFile)
	}
	return filepath.Join(c.DataDir, c.RulesFile)
}

// FileConfig is the YAML file layout. Zero values leave the defaults untouched.
type FileConfig struct {
	DataDir   string        `yaml:"dataDir"`
	RulesFile string        `yaml:"rulesFile"`
	Log       FileLogConfig `yaml:"log"`
	Receiver  FileReceiver  `yaml:"receiver"`
	API       FileAPIConfig `yaml:"api"`
	Watch     *bool         `yaml:"watch"`
}

type FileLogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

type FileReceiver struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

type FileAPIConfig struct {
	ListenAddr string        `yaml:"listenAddr"`
	RateLimit  *int          `yaml:"rateLimit"`
	RateWindow time.Duration `yaml:"rateWindow"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:    DefaultDataDir,
		RulesFile:  DefaultRulesFile,
		LogLevel:   DefaultLogLevel,
		LogService: DefaultLogService,
		Receiver: ReceiverConfig{
			BaseURL: DefaultReceiverURL,
			Timeout: DefaultReceiverTimeout,
		},
		API: APIConfig{
			ListenAddr: DefaultListenAddr,
			RateLimit:  DefaultRateLimit,
			RateWindow: DefaultRateWindow,
		},
		Watch: true,
	}
}

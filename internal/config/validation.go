// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/ManuGH/e2seen/internal/validate"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("DataDir", cfg.DataDir)
	v.NotEmpty("RulesFile", cfg.RulesFile)
	if cfg.RulesFile != "" {
		v.FilePath("RulesFile", cfg.RulesPath())
	}
	v.OneOf("LogLevel", cfg.LogLevel, logLevels)

	v.URL("Receiver.BaseURL", cfg.Receiver.BaseURL, []string{"http", "https"})
	v.PositiveDuration("Receiver.Timeout", cfg.Receiver.Timeout)

	v.ListenAddr("API.ListenAddr", cfg.API.ListenAddr)
	if cfg.API.RateLimit < 0 {
		v.AddError("API.RateLimit", "value cannot be negative", cfg.API.RateLimit)
	}
	if cfg.API.RateLimit > 0 {
		v.PositiveDuration("API.RateWindow", cfg.API.RateWindow)
	}

	return v.Err()
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ManuGH/e2seen/internal/config"
	xglog "github.com/ManuGH/e2seen/internal/log"
	"github.com/ManuGH/e2seen/internal/openwebif"
	"github.com/ManuGH/e2seen/internal/seen"
	"github.com/spf13/cobra"
)

const autoConfigName = "e2seen.yaml"

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	configPath string
	config     config.AppConfig
	configErr  error

	engineOnce sync.Once
	engine     *seen.Engine
	engineErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// resolveConfigPath returns the explicit --config path, or ${E2SEEN_DATA}/e2seen.yaml
// if that file exists, or "" for environment and defaults only.
func (c *commandContext) resolveConfigPath() string {
	if c.configFlag != nil {
		if p := strings.TrimSpace(*c.configFlag); p != "" {
			return p
		}
	}
	dataDir := strings.TrimSpace(config.ParseString(config.EnvDataDir, config.DefaultDataDir))
	if dataDir == "" {
		return ""
	}
	autoPath := filepath.Join(dataDir, autoConfigName)
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}

func (c *commandContext) ensureConfig() (config.AppConfig, error) {
	c.configOnce.Do(func() {
		c.configPath = c.resolveConfigPath()
		cfg, err := config.NewLoader(c.configPath, version).Load()
		if err != nil {
			c.configErr = err
			return
		}
		xglog.Configure(xglog.Config{
			Level:   cfg.LogLevel,
			Service: cfg.LogService,
			Version: cfg.Version,
		})
		source := "env+defaults"
		if c.configPath != "" {
			source = "file"
		}
		logger := xglog.WithComponent("cli")
		logger.Debug().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", source).
			Str(xglog.FieldPath, c.configPath).
			Msg("configuration loaded")
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureEngine loads the rules file once per invocation.
func (c *commandContext) ensureEngine() (*seen.Engine, error) {
	c.engineOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.engineErr = err
			return
		}
		store := seen.NewStore(cfg.RulesPath())
		if err := store.Load(); err != nil {
			c.engineErr = fmt.Errorf("load rules from %s: %w", cfg.RulesPath(), err)
			return
		}
		c.engine = seen.NewEngine(store)
	})
	return c.engine, c.engineErr
}

func (c *commandContext) receiver() (*openwebif.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return openwebif.New(cfg.Receiver.BaseURL, openwebif.WithTimeout(cfg.Receiver.Timeout)), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"strings"

	"github.com/ManuGH/e2seen/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Inspect the configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file and environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return fmt.Errorf("configuration error in %s:\n  %w", describeSource(ctx.configPath), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration valid (%s)\n", describeSource(ctx.configPath))
			return nil
		},
	}

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			eff := effectiveFile(cfg)
			switch strings.ToLower(format) {
			case "json":
				return writeJSON(cmd, eff)
			case "yaml", "":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(eff); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or json")

	cmd.AddCommand(validateCmd, dumpCmd)
	return cmd
}

func describeSource(path string) string {
	if path == "" {
		return "environment and defaults"
	}
	return path
}

// effectiveFile renders cfg in the file layout so that a dump can be saved
// and loaded again.
func effectiveFile(cfg config.AppConfig) config.FileConfig {
	rateLimit := cfg.API.RateLimit
	watch := cfg.Watch
	return config.FileConfig{
		DataDir:   cfg.DataDir,
		RulesFile: cfg.RulesFile,
		Log: config.FileLogConfig{
			Level:   cfg.LogLevel,
			Service: cfg.LogService,
		},
		Receiver: config.FileReceiver{
			BaseURL: cfg.Receiver.BaseURL,
			Timeout: cfg.Receiver.Timeout,
		},
		API: config.FileAPIConfig{
			ListenAddr: cfg.API.ListenAddr,
			RateLimit:  &rateLimit,
			RateWindow: cfg.API.RateWindow,
		},
		Watch: &watch,
	}
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "e2seen",
		Short:         "Already-seen rules for Enigma2 receivers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (YAML)")

	rootCmd.AddCommand(newRulesCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newMarkCommand(ctx))
	rootCmd.AddCommand(newUnmarkCommand(ctx))
	rootCmd.AddCommand(newLabelCommand(ctx))
	rootCmd.AddCommand(newOperatorCommand(ctx))
	rootCmd.AddCommand(newGroupCommand(ctx))
	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

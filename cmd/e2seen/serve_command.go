// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ManuGH/e2seen/internal/api"
	"github.com/ManuGH/e2seen/internal/config"
	xglog "github.com/ManuGH/e2seen/internal/log"
	"github.com/ManuGH/e2seen/internal/seen"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rules over HTTP and follow external edits of the rules file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.API.ListenAddr = listen
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(sigCtx, engine, cfg.API, cfg.Watch)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address, overrides the configuration")
	return cmd
}

// runServe runs the API server, and the rules file watcher if enabled, until
// ctx is cancelled or one of them fails.
func runServe(ctx context.Context, engine *seen.Engine, apiCfg config.APIConfig, watch bool) error {
	logger := xglog.WithComponent("cli")

	var watcher *seen.Watcher
	if watch {
		w, err := seen.NewWatcher(engine.Store(), 0)
		if err != nil {
			return err
		}
		watcher = w
	}

	srv := api.New(engine, api.Config{
		ListenAddr: apiCfg.ListenAddr,
		RateLimit:  apiCfg.RateLimit,
		RateWindow: apiCfg.RateWindow,
		Version:    version,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}

	logger.Info().
		Str(xglog.FieldEvent, "serve.started").
		Str("listen", apiCfg.ListenAddr).
		Bool("watch", watch).
		Int(xglog.FieldRules, engine.Store().Len()).
		Msg("serving already-seen rules")

	err := g.Wait()
	logger.Info().Str(xglog.FieldEvent, "serve.stopped").Msg("server stopped")
	return err
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"

	"github.com/ManuGH/e2seen/internal/openwebif"
	"github.com/ManuGH/e2seen/internal/seen"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type scanResult struct {
	Kind    seen.SourceKind `json:"kind"`
	Title   string          `json:"title"`
	Station string          `json:"station,omitempty"`
	Seen    bool            `json:"seen"`
	Rule    string          `json:"rule,omitempty"`
	Episode string          `json:"episode,omitempty"`
}

type scanOptions struct {
	unseenOnly bool
	jsonOut    bool
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var opts scanOptions
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Check receiver timers, recordings or EPG events against the rules",
	}
	cmd.PersistentFlags().BoolVar(&opts.unseenOnly, "unseen", false, "Only list events that are not seen yet")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Output JSON")

	fetchTimers := func(c context.Context, client *openwebif.Client) ([]seen.Source, error) {
		timers, err := client.GetTimers(c)
		if err != nil {
			return nil, err
		}
		out := make([]seen.Source, 0, len(timers))
		for _, t := range timers {
			out = append(out, openwebif.TimerSource{Timer: t})
		}
		return out, nil
	}

	var dirname string
	fetchRecordings := func(c context.Context, client *openwebif.Client) ([]seen.Source, error) {
		list, err := client.GetRecordings(c, dirname)
		if err != nil {
			return nil, err
		}
		out := make([]seen.Source, 0, len(list.Movies))
		for _, m := range list.Movies {
			out = append(out, openwebif.RecordingSource{Movie: m})
		}
		return out, nil
	}

	timersCmd := &cobra.Command{
		Use:   "timers",
		Short: "Scan the timer list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, opts, fetchTimers)
		},
	}

	recordingsCmd := &cobra.Command{
		Use:   "recordings",
		Short: "Scan the recordings of one movie directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, opts, fetchRecordings)
		},
	}
	recordingsCmd.Flags().StringVar(&dirname, "dir", "", "Movie directory (receiver default when empty)")

	epgCmd := &cobra.Command{
		Use:   "epg <service-ref>",
		Short: "Scan the EPG of one service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, opts, func(c context.Context, client *openwebif.Client) ([]seen.Source, error) {
				events, err := client.GetEPG(c, args[0])
				return epgSources(events), err
			})
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Scan the EPG search results for a text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, opts, func(c context.Context, client *openwebif.Client) ([]seen.Source, error) {
				events, err := client.SearchEPG(c, args[0])
				return epgSources(events), err
			})
		},
	}

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Scan timers and recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, opts, func(c context.Context, client *openwebif.Client) ([]seen.Source, error) {
				var timers, recordings []seen.Source
				g, gctx := errgroup.WithContext(c)
				g.Go(func() error {
					var err error
					timers, err = fetchTimers(gctx, client)
					return err
				})
				g.Go(func() error {
					var err error
					recordings, err = fetchRecordings(gctx, client)
					return err
				})
				if err := g.Wait(); err != nil {
					return nil, err
				}
				return append(timers, recordings...), nil
			})
		},
	}
	allCmd.Flags().StringVar(&dirname, "dir", "", "Movie directory (receiver default when empty)")

	cmd.AddCommand(timersCmd, recordingsCmd, epgCmd, searchCmd, allCmd)
	return cmd
}

func epgSources(events []openwebif.EPGEvent) []seen.Source {
	out := make([]seen.Source, 0, len(events))
	for _, e := range events {
		out = append(out, openwebif.EPGSource{Event: e})
	}
	return out
}

func runScan(
	cmd *cobra.Command,
	ctx *commandContext,
	opts scanOptions,
	fetch func(context.Context, *openwebif.Client) ([]seen.Source, error),
) error {
	engine, err := ctx.ensureEngine()
	if err != nil {
		return err
	}
	client, err := ctx.receiver()
	if err != nil {
		return err
	}
	sources, err := fetch(cmd.Context(), client)
	if err != nil {
		return fmt.Errorf("query receiver %s: %w", client.BaseURL(), err)
	}

	results := evaluateSources(engine, sources)
	if opts.unseenOnly {
		unseen := results[:0]
		for _, r := range results {
			if !r.Seen {
				unseen = append(unseen, r)
			}
		}
		results = unseen
	}

	if opts.jsonOut {
		return writeJSON(cmd, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events")
		return nil
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{string(r.Kind), r.Title, r.Station, yesNo(r.Seen), r.Episode})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Source", "Title", "Station", "Seen", "Episode"}, rows, nil,
	))
	return nil
}

func evaluateSources(engine *seen.Engine, sources []seen.Source) []scanResult {
	results := make([]scanResult, 0, len(sources))
	for _, src := range sources {
		title, ok := src.Title()
		if !ok {
			continue
		}
		station, _ := src.Station()
		r := scanResult{Kind: src.Kind(), Title: title, Station: station}
		if m, found := engine.MatchedRule(src); found {
			r.Seen = true
			r.Rule = m.String()
			r.Episode = m.Episode.Text
		}
		results = append(results, r)
	}
	return results
}

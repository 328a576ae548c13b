// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ManuGH/e2seen/internal/seen"
	"github.com/spf13/cobra"
)

type ruleSummary struct {
	Title    string   `json:"title"`
	Group    string   `json:"group,omitempty"`
	Shape    string   `json:"shape"`
	Stations []string `json:"stations,omitempty"`
	Patterns int      `json:"patterns"`
	Episode  string   `json:"episode,omitempty"`
}

func summarize(ecs *seen.EventCriteriaSet) ruleSummary {
	s := ruleSummary{
		Title:   ecs.Title,
		Group:   ecs.Group,
		Shape:   ecs.Shape(),
		Episode: ecs.Episode.Text,
	}
	if maps, ok := ecs.Descriptions.Get(); ok && maps != nil {
		s.Patterns += maps.Len()
	}
	if stations, ok := ecs.Stations.Get(); ok {
		s.Stations = stations.Names()
		for _, st := range stations {
			if maps, ok := st.Descriptions.Get(); ok && maps != nil {
				s.Patterns += maps.Len()
			}
		}
	}
	return s
}

func newRulesCommand(ctx *commandContext) *cobra.Command {
	var (
		group   string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List already-seen rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			filter := cmd.Flags().Changed("group")

			summaries := []ruleSummary{}
			engine.Store().ForEach(func(_ string, ecs *seen.EventCriteriaSet) {
				if filter && ecs.Group != group {
					return
				}
				summaries = append(summaries, summarize(ecs))
			})

			if jsonOut {
				return writeJSON(cmd, summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rules")
				return nil
			}
			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				rows = append(rows, []string{
					s.Title, s.Group, s.Shape, strings.Join(s.Stations, ", "), strconv.Itoa(s.Patterns), s.Episode,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Title", "Group", "Shape", "Stations", "Patterns", "Episode"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "Only list rules filed under this group")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <title>",
		Short: "Print one rule in rules file notation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			ecs, ok := engine.Store().Lookup(args[0])
			if !ok {
				return fmt.Errorf("no rule for %q", args[0])
			}
			return seen.Encode(cmd.OutOrStdout(), map[string]*seen.EventCriteriaSet{ecs.Title: ecs})
		},
	}
}

// sourceFlags builds a manual source and the matching mark level from flags.
type sourceFlags struct {
	station  string
	desc     string
	extended bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.station, "station", "", "Station (service name)")
	cmd.Flags().StringVar(&f.desc, "desc", "", "Description text")
	cmd.Flags().BoolVar(&f.extended, "extended", false, "Treat --desc as the extended description")
}

func (f *sourceFlags) source(title string) seen.Fields {
	src := seen.Fields{SourceKind: seen.SourceManual, TitleText: title, StationName: f.station}
	if f.extended {
		src.ExtendedDescText = f.desc
	} else {
		src.DescriptionText = f.desc
	}
	return src
}

func (f *sourceFlags) spec() seen.MarkSpec {
	hasDesc := strings.TrimSpace(f.desc) != ""
	return seen.MarkSpec{
		Station:     strings.TrimSpace(f.station) != "",
		Description: hasDesc && !f.extended,
		Extended:    hasDesc && f.extended,
	}
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var (
		flags   sourceFlags
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "check <title>",
		Short: "Report whether an event is already seen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			m, ok := engine.MatchedRule(flags.source(args[0]))
			if jsonOut {
				return writeJSON(cmd, struct {
					Seen bool              `json:"seen"`
					Rule *seen.MatchedRule `json:"rule,omitempty"`
				}{ok, m})
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "not seen")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seen: %s\n", m)
			if m.Episode.HasEpisodeLabel() {
				fmt.Fprintf(cmd.OutOrStdout(), "episode: %s\n", m.Episode.Text)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newMarkCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags
	cmd := &cobra.Command{
		Use:   "mark <title>",
		Short: "Mark an event as already seen",
		Long: "Mark an event as already seen. The flags select the level: the title " +
			"alone, one station, one description, or a description on one station.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			spec := flags.spec()
			if err := engine.Mark(flags.source(args[0]), spec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %q (%s)\n", args[0], spec.Level())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newUnmarkCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags
	cmd := &cobra.Command{
		Use:   "unmark <title>",
		Short: "Remove an already-seen mark",
		Long:  "Remove the mark at the level selected by the flags. Without flags the whole rule is removed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			spec := flags.spec()
			if err := engine.Unmark(flags.source(args[0]), spec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unmarked %q (%s)\n", args[0], spec.Level())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// refFlags address a rule node for label and operator edits.
type refFlags struct {
	station  string
	extended bool
}

func (f *refFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.station, "station", "", "Address the rule below this station")
	cmd.Flags().BoolVar(&f.extended, "extended", false, "The pattern is an extended description pattern")
}

func newLabelCommand(ctx *commandContext) *cobra.Command {
	var (
		flags   refFlags
		pattern string
	)
	cmd := &cobra.Command{
		Use:   "label <title> [label]",
		Short: "Set or clear the episode label of a rule, station or pattern",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			label := ""
			if len(args) == 2 {
				label = args[1]
			}
			ref := seen.RuleRef{Title: args[0], Station: flags.station, Pattern: pattern, Extended: flags.extended}
			if err := engine.SetEpisodeLabel(ref, label); err != nil {
				return err
			}
			if label == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared episode label of %q\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Labelled %q as %q\n", args[0], label)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&pattern, "pattern", "", "Address this description pattern")
	return cmd
}

func newOperatorCommand(ctx *commandContext) *cobra.Command {
	var flags refFlags
	cmd := &cobra.Command{
		Use:   "operator <title> <pattern> <equals|contains|startswith>",
		Short: "Change how a description pattern is compared",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := seen.ParseOperator(args[2])
			if err != nil {
				return err
			}
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			ref := seen.RuleRef{Title: args[0], Station: flags.station, Pattern: args[1], Extended: flags.extended}
			if err := engine.SetOperator(ref, op); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pattern %q of %q now uses %s\n", args[1], args[0], op)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newGroupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "group <title> [group]",
		Short: "File a rule under a group, or clear its group",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.ensureEngine()
			if err != nil {
				return err
			}
			group := ""
			if len(args) == 2 {
				group = args[1]
			}
			if err := engine.SetGroup(args[0], group); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Group of %q: %s\n", args[0], valueOrDash(group))
			return nil
		},
	}
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides Prometheus metrics for the e2seen rule engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// No titles or station names in labels; they are user data and unbounded.

var (
	// QueriesTotal counts already-seen queries by result ("seen" | "unseen").
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "e2seen_queries_total",
		Help: "Total number of already-seen queries, by result.",
	}, []string{"result"})

	// MutationsTotal counts rule mutations by operation, level and outcome.
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "e2seen_mutations_total",
		Help: "Total number of rule mutations, by operation, level and outcome.",
	}, []string{"op", "level", "outcome"})

	// FlushFailuresTotal counts failed rewrites of the rules file.
	FlushFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "e2seen_flush_failures_total",
		Help: "Total number of failed rules file writes.",
	})

	// LoadSkippedLinesTotal counts rules file lines skipped while decoding.
	LoadSkippedLinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "e2seen_load_skipped_lines_total",
		Help: "Total number of rules file lines skipped while loading.",
	})

	// Rules tracks the number of rules in the store.
	Rules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "e2seen_rules",
		Help: "Current number of already-seen rules.",
	})
)

// Outcome labels for MutationsTotal.
const (
	OutcomeApplied = "applied"
	OutcomeNoop    = "noop"
	OutcomeRefused = "refused"
	OutcomeFailed  = "flush_failed"
)

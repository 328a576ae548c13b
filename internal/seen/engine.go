// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"errors"

	"github.com/ManuGH/e2seen/internal/log"
	"github.com/ManuGH/e2seen/internal/metrics"
	"github.com/rs/zerolog"
)

// Engine answers already-seen queries and applies rule changes. Every change
// is written to the store's file before the call returns.
type Engine struct {
	store  *Store
	logger zerolog.Logger
}

// NewEngine returns an engine working on store.
func NewEngine(store *Store) *Engine {
	return &Engine{
		store:  store,
		logger: log.WithComponent("seen.engine"),
	}
}

// Store returns the underlying rule store.
func (e *Engine) Store() *Store { return e.store }

// MatchedRule returns the rule fragment that makes src already seen.
func (e *Engine) MatchedRule(src Source) (*MatchedRule, bool) {
	title, ok := src.Title()
	if !ok {
		metrics.QueriesTotal.WithLabelValues("unseen").Inc()
		return nil, false
	}
	q := QueryFrom(src)

	var (
		match *MatchedRule
		found bool
	)
	e.store.view(func(rules map[string]*EventCriteriaSet) {
		match, found = Evaluate(rules[title], q)
	})

	result := "unseen"
	if found {
		result = "seen"
	}
	metrics.QueriesTotal.WithLabelValues(result).Inc()
	return match, found
}

// IsAlreadySeen reports whether any rule matches src.
func (e *Engine) IsAlreadySeen(src Source) bool {
	_, ok := e.MatchedRule(src)
	return ok
}

// Mark adds a rule for src at the specificity selected by spec. Refusals are
// *MarkError values; a failed write wraps ErrFlush and keeps the change in memory.
func (e *Engine) Mark(src Source, spec MarkSpec) error {
	req, err := newMarkRequest(src, spec)
	if err != nil {
		e.record("mark", spec.Level(), false, err)
		return err
	}
	changed, err := e.store.update(func(rules map[string]*EventCriteriaSet) (bool, error) {
		if err := checkMark(rules, req); err != nil {
			return false, err
		}
		return applyMark(rules, req), nil
	})
	e.record("mark", spec.Level(), changed, err)
	if err == nil && changed {
		e.logger.Info().
			Str(log.FieldEvent, "seen.marked").
			Str(log.FieldTitle, req.title).
			Str(log.FieldStation, req.station).
			Str(log.FieldLevel, string(spec.Level())).
			Str(log.FieldSource, string(src.Kind())).
			Msg("marked as already seen")
	}
	return err
}

// Unmark removes the rule part addressed by src and spec. Removing something
// that does not exist is a no-op and writes nothing.
func (e *Engine) Unmark(src Source, spec MarkSpec) error {
	req, err := newMarkRequest(src, spec)
	if err != nil {
		e.record("unmark", spec.Level(), false, err)
		return err
	}
	changed, err := e.store.update(func(rules map[string]*EventCriteriaSet) (bool, error) {
		return applyUnmark(rules, req), nil
	})
	e.record("unmark", spec.Level(), changed, err)
	if err == nil && changed {
		e.logger.Info().
			Str(log.FieldEvent, "seen.unmarked").
			Str(log.FieldTitle, req.title).
			Str(log.FieldStation, req.station).
			Str(log.FieldLevel, string(spec.Level())).
			Msg("removed already-seen rule")
	}
	return err
}

// SetEpisodeLabel sets the episode label of the node addressed by ref.
func (e *Engine) SetEpisodeLabel(ref RuleRef, label string) error {
	changed, err := e.store.update(func(rules map[string]*EventCriteriaSet) (bool, error) {
		t, err := resolveRef(rules, ref)
		if err != nil {
			return false, err
		}
		ep := t.episode()
		if ep.Text == label {
			return false, nil
		}
		ep.Text = label
		return true, nil
	})
	e.record("label", refLevel(ref), changed, err)
	return err
}

// SetOperator changes how the description pattern addressed by ref is compared.
func (e *Engine) SetOperator(ref RuleRef, op Operator) error {
	changed, err := e.store.update(func(rules map[string]*EventCriteriaSet) (bool, error) {
		if ref.Pattern == "" {
			return false, ErrInvalidRef
		}
		t, err := resolveRef(rules, ref)
		if err != nil {
			return false, err
		}
		if t.entry.Operator == op {
			return false, nil
		}
		t.entry.Operator = op
		return true, nil
	})
	e.record("operator", refLevel(ref), changed, err)
	return err
}

// SetGroup files the rule for title under group. An empty group clears it.
func (e *Engine) SetGroup(title, group string) error {
	changed, err := e.store.update(func(rules map[string]*EventCriteriaSet) (bool, error) {
		t, err := resolveRef(rules, RuleRef{Title: title})
		if err != nil {
			return false, err
		}
		if t.rule.Group == group {
			return false, nil
		}
		t.rule.Group = group
		return true, nil
	})
	e.record("group", LevelTitle, changed, err)
	return err
}

func refLevel(ref RuleRef) Level {
	return MarkSpec{Station: ref.Station != "", Description: ref.Pattern != "", Extended: ref.Extended && ref.Pattern != ""}.Level()
}

func (e *Engine) record(op string, level Level, changed bool, err error) {
	outcome := metrics.OutcomeApplied
	switch {
	case errors.Is(err, ErrFlush):
		outcome = metrics.OutcomeFailed
	case err != nil:
		outcome = metrics.OutcomeRefused
	case !changed:
		outcome = metrics.OutcomeNoop
	}
	metrics.MutationsTotal.WithLabelValues(op, string(level), outcome).Inc()
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ManuGH/e2seen/internal/fsutil"
	"github.com/ManuGH/e2seen/internal/log"
	"github.com/ManuGH/e2seen/internal/metrics"
	"github.com/rs/zerolog"
)

// Store maps event titles to their rules and persists them to one file.
type Store struct {
	mu     sync.RWMutex
	rules  map[string]*EventCriteriaSet
	path   string
	logger zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger replaces the store's logger.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore returns an empty store backed by path. Call Load to read the file.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		rules:  make(map[string]*EventCriteriaSet),
		path:   filepath.Clean(path),
		logger: log.WithComponent("seen.store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the rules file path.
func (s *Store) Path() string { return s.path }

// Load replaces the store content with the rules file. A missing file yields
// an empty store. On I/O failure the current content is kept and the error
// wraps ErrLoad. The write lock is held from read to swap so a reload never
// overwrites a change applied while the file was being decoded.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// #nosec G304 -- the rules path comes from operator configuration
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.rules = make(map[string]*EventCriteriaSet)
		metrics.Rules.Set(0)
		s.logger.Info().
			Str(log.FieldEvent, "seen.rules_missing").
			Str(log.FieldPath, s.path).
			Msg("rules file does not exist yet, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer f.Close()

	rules, stats, err := Decode(f)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	for _, issue := range stats.Issues {
		s.logger.Debug().
			Str(log.FieldEvent, "seen.line_skipped").
			Int("line", issue.Line).
			Str("reason", issue.Reason).
			Msg("skipped rules file line")
	}
	metrics.LoadSkippedLinesTotal.Add(float64(stats.Skipped))

	s.rules = rules
	metrics.Rules.Set(float64(len(rules)))

	s.logger.Info().
		Str(log.FieldEvent, "seen.rules_loaded").
		Str(log.FieldPath, s.path).
		Int(log.FieldRules, stats.Rules).
		Int("skipped_lines", stats.Skipped).
		Msg("loaded already-seen rules")
	return nil
}

// Flush rewrites the whole rules file.
func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	err := fsutil.WriteFileAtomic(s.path, 0o600, func(w io.Writer) error {
		return Encode(w, s.rules)
	})
	if err != nil {
		metrics.FlushFailuresTotal.Inc()
		s.logger.Error().
			Err(err).
			Str(log.FieldEvent, "seen.flush_failed").
			Str(log.FieldPath, s.path).
			Msg("failed to write rules file, change is kept in memory only")
		return fmt.Errorf("%w: %w", ErrFlush, err)
	}
	metrics.Rules.Set(float64(len(s.rules)))
	return nil
}

// Close releases the store. Changes are flushed when they are made, so there
// is nothing left to write.
func (s *Store) Close() error { return nil }

// Lookup returns a copy of the rule for title.
func (s *Store) Lookup(title string) (*EventCriteriaSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ecs, ok := s.rules[title]
	if !ok {
		return nil, false
	}
	return ecs.Clone(), true
}

// Upsert returns the rule for title, creating it with build if absent. The
// returned rule is the stored one; it must only be changed by the store's
// single owner and followed by Flush.
func (s *Store) Upsert(title string, build func() *EventCriteriaSet) *EventCriteriaSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertLocked(title, build)
}

func (s *Store) upsertLocked(title string, build func() *EventCriteriaSet) *EventCriteriaSet {
	if ecs, ok := s.rules[title]; ok {
		return ecs
	}
	ecs := build()
	ecs.Title = title
	ecs.normalize()
	s.rules[title] = ecs
	return ecs
}

// Replace stores ecs under title, overwriting any existing rule.
func (s *Store) Replace(title string, ecs *EventCriteriaSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ecs.Title = title
	ecs.normalize()
	s.rules[title] = ecs
}

// Remove deletes the rule for title and reports whether it existed.
func (s *Store) Remove(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rules[title]
	delete(s.rules, title)
	return ok
}

// ForEach calls fn with a copy of every rule, in rules file order.
func (s *Store) ForEach(fn func(title string, ecs *EventCriteriaSet)) {
	s.mu.RLock()
	titles := sortedKeys(s.rules)
	copies := make([]*EventCriteriaSet, len(titles))
	for i, t := range titles {
		copies[i] = s.rules[t].Clone()
	}
	s.mu.RUnlock()

	for i, t := range titles {
		fn(t, copies[i])
	}
}

// Len returns the number of rules.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// update runs fn under the write lock and flushes when fn reports a change.
func (s *Store) update(fn func(rules map[string]*EventCriteriaSet) (changed bool, err error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := fn(s.rules)
	if err != nil || !changed {
		return false, err
	}
	return true, s.flushLocked()
}

// view runs fn under the read lock.
func (s *Store) view(fn func(rules map[string]*EventCriteriaSet)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.rules)
}

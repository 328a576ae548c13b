// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/e2seen/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultWatchDebounce is the quiet period after the last file event before reloading.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher reloads a store when its rules file is changed by someone else,
// e.g. a second instance or a text editor. Our own flushes reload identical
// content.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   zerolog.Logger
}

// NewWatcher starts watching the directory of the store's rules file. The
// directory is watched rather than the file because atomic replaces swap the inode.
func NewWatcher(store *Store, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	dir := filepath.Dir(store.Path())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create rules directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch rules directory: %w", err)
	}

	w := &Watcher{
		store:    store,
		watcher:  fw,
		debounce: debounce,
		logger:   log.WithComponent("seen.watch"),
	}
	w.logger.Info().
		Str(log.FieldEvent, "seen.watcher_started").
		Str(log.FieldPath, store.Path()).
		Msg("watching rules file")
	return w, nil
}

// Run processes file events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Debug().Err(err).Msg("close watcher")
		}
	}()

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.store.Path() {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug().
				Str(log.FieldEvent, "seen.file_changed").
				Str("op", event.Op.String()).
				Msg("rules file changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			reload = timer.C

		case <-reload:
			reload = nil
			if err := w.store.Load(); err != nil {
				w.logger.Error().
					Err(err).
					Str(log.FieldEvent, "seen.reload_failed").
					Msg("failed to reload rules file, keeping current rules")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().
				Err(err).
				Str(log.FieldEvent, "seen.watcher_error").
				Msg("rules file watcher error")
		}
	}
}

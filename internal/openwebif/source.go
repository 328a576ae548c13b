// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"strings"

	"github.com/ManuGH/e2seen/internal/seen"
)

// TimerSource exposes a timer to the rule engine.
type TimerSource struct{ Timer Timer }

func (TimerSource) Kind() seen.SourceKind                 { return seen.SourceTimer }
func (s TimerSource) Title() (string, bool)               { return field(s.Timer.Name) }
func (s TimerSource) Station() (string, bool)             { return field(s.Timer.ServiceName) }
func (s TimerSource) Description() (string, bool)         { return field(s.Timer.Description) }
func (s TimerSource) ExtendedDescription() (string, bool) { return field(s.Timer.Extended) }

// RecordingSource exposes a recording to the rule engine.
type RecordingSource struct{ Movie Movie }

func (RecordingSource) Kind() seen.SourceKind         { return seen.SourceRecording }
func (s RecordingSource) Title() (string, bool)       { return field(s.Movie.Title) }
func (s RecordingSource) Station() (string, bool)     { return field(s.Movie.ServiceName) }
func (s RecordingSource) Description() (string, bool) { return field(s.Movie.Description) }
func (s RecordingSource) ExtendedDescription() (string, bool) {
	return field(s.Movie.ExtendedDescription())
}

// EPGSource exposes an EPG event to the rule engine.
type EPGSource struct{ Event EPGEvent }

func (EPGSource) Kind() seen.SourceKind                 { return seen.SourceEPG }
func (s EPGSource) Title() (string, bool)               { return field(s.Event.Title) }
func (s EPGSource) Station() (string, bool)             { return field(s.Event.ServiceName) }
func (s EPGSource) Description() (string, bool)         { return field(s.Event.Description) }
func (s EPGSource) ExtendedDescription() (string, bool) { return field(s.Event.LongDesc) }

func field(s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

var (
	_ seen.Source = TimerSource{}
	_ seen.Source = RecordingSource{}
	_ seen.Source = EPGSource{}
)

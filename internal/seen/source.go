// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import "strings"

// SourceKind names where a source came from, for error messages.
type SourceKind string

const (
	SourceTimer     SourceKind = "timer"
	SourceRecording SourceKind = "recording"
	SourceEPG       SourceKind = "epg"
	SourceManual    SourceKind = "manual"
)

// Source is the read-only view the engine needs of a timer, recording or EPG event.
// Each accessor reports false when the field is not available.
type Source interface {
	Kind() SourceKind
	Title() (string, bool)
	Station() (string, bool)
	Description() (string, bool)
	ExtendedDescription() (string, bool)
}

// Fields is a Source built from plain strings. Blank fields are absent.
type Fields struct {
	SourceKind       SourceKind `json:"kind,omitempty"`
	TitleText        string     `json:"title"`
	StationName      string     `json:"station,omitempty"`
	DescriptionText  string     `json:"description,omitempty"`
	ExtendedDescText string     `json:"extendedDescription,omitempty"`
}

func (f Fields) Kind() SourceKind {
	if f.SourceKind == "" {
		return SourceManual
	}
	return f.SourceKind
}

func (f Fields) Title() (string, bool)               { return present(f.TitleText) }
func (f Fields) Station() (string, bool)             { return present(f.StationName) }
func (f Fields) Description() (string, bool)         { return present(f.DescriptionText) }
func (f Fields) ExtendedDescription() (string, bool) { return present(f.ExtendedDescText) }

func present(s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"errors"
	"fmt"
)

// ErrInvalidRef is returned when an edit needs a description pattern but the
// reference addresses a rule or station.
var ErrInvalidRef = errors.New("seen: reference does not address a description pattern")

// MarkSpec selects the specificity of a mark or unmark request.
// Description or Extended selects description level; Extended selects the
// extended description field.
type MarkSpec struct {
	Station     bool `json:"station"`
	Description bool `json:"description"`
	Extended    bool `json:"extended"`
}

func (s MarkSpec) usesDescription() bool { return s.Description || s.Extended }

// Level returns the specificity the request addresses.
func (s MarkSpec) Level() Level {
	switch {
	case s.Station && s.usesDescription():
		return LevelStationDescription
	case s.Station:
		return LevelStation
	case s.usesDescription():
		return LevelDescription
	default:
		return LevelTitle
	}
}

type markRequest struct {
	title    string
	station  string
	pattern  string
	spec     MarkSpec
	extended bool
}

func newMarkRequest(src Source, spec MarkSpec) (markRequest, error) {
	req := markRequest{spec: spec, extended: spec.Extended}
	var ok bool
	if req.title, ok = src.Title(); !ok {
		return req, missingField(src, FieldTitle)
	}
	if spec.Station {
		if req.station, ok = src.Station(); !ok {
			return req, missingField(src, FieldStation)
		}
	}
	switch {
	case spec.Extended:
		if req.pattern, ok = src.ExtendedDescription(); !ok {
			return req, missingField(src, FieldExtendedDescription)
		}
	case spec.Description:
		if req.pattern, ok = src.Description(); !ok {
			return req, missingField(src, FieldDescription)
		}
	}
	return req, nil
}

func refuse(code MarkErrorCode, title string, kind CriteriaKind) *MarkError {
	return &MarkError{Code: code, Title: title, Kind: kind}
}

// checkMark returns the refusal for req, if any, without touching rules.
func checkMark(rules map[string]*EventCriteriaSet, req markRequest) error {
	ecs, exists := rules[req.title]
	if !exists {
		return nil
	}
	switch {
	case !req.spec.Station && !req.spec.usesDescription():
		if ecs.StationCount() > 0 {
			return refuse(WouldOverwriteExistingCriteria, req.title, KindStations)
		}
		if ecs.DescriptionCount() > 0 {
			return refuse(WouldOverwriteExistingCriteria, req.title, KindDescriptions)
		}
	case req.spec.Station:
		if !ecs.Stations.IsUsed() && ecs.DescriptionCount() > 0 {
			return refuse(WouldOverwriteExistingCriteria, req.title, KindDescriptions)
		}
		if !req.spec.usesDescription() {
			return nil
		}
		stations, _ := ecs.Stations.Get()
		if st, ok := stations[req.station]; ok && !st.Descriptions.IsUsed() {
			return refuse(DescriptionNotAllowedAtThisLevel, req.title, "")
		}
	default:
		if !ecs.Descriptions.IsUsed() {
			return refuse(DescriptionNotAllowedAtThisLevel, req.title, "")
		}
		if ecs.StationCount() > 0 {
			return refuse(WouldOverwriteExistingCriteria, req.title, KindStations)
		}
	}
	return nil
}

// applyMark changes rules for an already checked request.
func applyMark(rules map[string]*EventCriteriaSet, req markRequest) bool {
	ecs, exists := rules[req.title]

	if !req.spec.Station && !req.spec.usesDescription() {
		if exists && ecs.IsTitleOnly() {
			return false
		}
		fresh := NewTitleRule(req.title)
		if exists {
			// Downgrade: only the organisational data survives.
			fresh.Group = ecs.Group
			fresh.Episode = ecs.Episode
		}
		rules[req.title] = fresh
		return true
	}

	changed := false
	if !exists {
		ecs = &EventCriteriaSet{Title: req.title}
		rules[req.title] = ecs
		changed = true
	}

	if !req.spec.Station {
		maps, ok := ecs.Descriptions.Get()
		if !ok {
			maps = NewDescriptionMaps()
			ecs.Descriptions = Used(maps)
		}
		return insertPattern(maps, req) || changed
	}

	if !ecs.Stations.IsUsed() {
		ecs.Stations = Used(Stations{})
		ecs.Descriptions = NotUsed[*DescriptionMaps]()
		changed = true
	}
	stations, _ := ecs.Stations.Get()
	st, found := stations[req.station]

	if !req.spec.usesDescription() {
		if found && !st.Descriptions.IsUsed() {
			return changed
		}
		if !found {
			st = &StationCriteria{Name: req.station}
			stations[req.station] = st
		}
		st.Descriptions = NotUsed[*DescriptionMaps]()
		return true
	}

	if !found {
		st = &StationCriteria{Name: req.station, Descriptions: Used(NewDescriptionMaps())}
		stations[req.station] = st
		changed = true
	}
	maps, _ := st.Descriptions.Get()
	return insertPattern(maps, req) || changed
}

func insertPattern(maps *DescriptionMaps, req markRequest) bool {
	entries := maps.Field(req.extended)
	if _, ok := entries[req.pattern]; ok {
		return false
	}
	entries[req.pattern] = &DescriptionEntry{Operator: OperatorEquals}
	return true
}

// applyUnmark removes what req addresses. Missing entries are not an error.
func applyUnmark(rules map[string]*EventCriteriaSet, req markRequest) bool {
	ecs, ok := rules[req.title]
	if !ok {
		return false
	}
	if !req.spec.Station && !req.spec.usesDescription() {
		delete(rules, req.title)
		return true
	}

	var maps *DescriptionMaps
	if req.spec.Station {
		stations, _ := ecs.Stations.Get()
		st, found := stations[req.station]
		if !found {
			return false
		}
		if !req.spec.usesDescription() {
			delete(stations, req.station)
			return true
		}
		if maps, ok = st.Descriptions.Get(); !ok {
			return false
		}
	} else if maps, ok = ecs.Descriptions.Get(); !ok {
		return false
	}

	entries := maps.Field(req.extended)
	if _, found := entries[req.pattern]; !found {
		return false
	}
	delete(entries, req.pattern)
	return true
}

// RuleRef addresses one node of a rule: the rule itself, one of its stations,
// or one description pattern at either level.
type RuleRef struct {
	Title    string `json:"title"`
	Station  string `json:"station,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	Extended bool   `json:"extended,omitempty"`
}

type refTarget struct {
	rule    *EventCriteriaSet
	station *StationCriteria
	entry   *DescriptionEntry
}

func resolveRef(rules map[string]*EventCriteriaSet, ref RuleRef) (refTarget, error) {
	var t refTarget
	ecs, ok := rules[ref.Title]
	if !ok {
		return t, fmt.Errorf("%w: %q", ErrRuleNotFound, ref.Title)
	}
	t.rule = ecs

	descriptions := ecs.Descriptions
	if ref.Station != "" {
		stations, _ := ecs.Stations.Get()
		st, found := stations[ref.Station]
		if !found {
			return t, fmt.Errorf("%w: %q on %q", ErrRuleNotFound, ref.Title, ref.Station)
		}
		t.station = st
		descriptions = st.Descriptions
	}
	if ref.Pattern == "" {
		return t, nil
	}

	maps, ok := descriptions.Get()
	if !ok {
		return t, fmt.Errorf("%w: %q has no descriptions at this level", ErrRuleNotFound, ref.Title)
	}
	entry, found := maps.Field(ref.Extended)[ref.Pattern]
	if !found {
		return t, fmt.Errorf("%w: description %q of %q", ErrRuleNotFound, ref.Pattern, ref.Title)
	}
	t.entry = entry
	return t, nil
}

func (t refTarget) episode() *EpisodeInfo {
	switch {
	case t.entry != nil:
		return &t.entry.Episode
	case t.station != nil:
		return &t.station.Episode
	default:
		return &t.rule.Episode
	}
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"fmt"
	"strings"
)

// Level is the specificity at which a rule matched or is marked.
type Level string

const (
	LevelTitle              Level = "title"
	LevelStation            Level = "station"
	LevelDescription        Level = "description"
	LevelStationDescription Level = "station+description"
)

// Query holds the source fields a rule is evaluated against. Empty means absent.
type Query struct {
	Station             string
	Description         string
	ExtendedDescription string
}

// QueryFrom extracts the query fields of src.
func QueryFrom(src Source) Query {
	var q Query
	q.Station, _ = src.Station()
	q.Description, _ = src.Description()
	q.ExtendedDescription, _ = src.ExtendedDescription()
	return q
}

// MatchedRule describes the rule fragment that matched a source.
type MatchedRule struct {
	Title       string      `json:"title"`
	Station     string      `json:"station,omitempty"`
	Description string      `json:"description,omitempty"`
	Extended    bool        `json:"extended,omitempty"`
	Operator    Operator    `json:"operator"`
	Episode     EpisodeInfo `json:"-"`
	Level       Level       `json:"level"`
}

// String renders the match for the end user.
func (m *MatchedRule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q", m.Title)
	if m.Station != "" {
		fmt.Fprintf(&b, " on %q", m.Station)
	}
	if m.Description != "" {
		field := "description"
		if m.Extended {
			field = "extended description"
		}
		fmt.Fprintf(&b, " with %s %s %q", field, m.Operator, m.Description)
	}
	if m.Episode.HasEpisodeLabel() {
		fmt.Fprintf(&b, " (%s)", m.Episode.Text)
	}
	return b.String()
}

// Evaluate checks q against one rule.
//
// A title-only rule always matches. Otherwise a known station either matches
// on its own or supplies the description patterns to use; without a station
// match the rule's own description patterns apply. Standard patterns are
// tried before extended ones, each in rules file order, and the first hit wins.
func Evaluate(ecs *EventCriteriaSet, q Query) (*MatchedRule, bool) {
	if ecs == nil {
		return nil, false
	}
	if ecs.IsTitleOnly() {
		return &MatchedRule{Title: ecs.Title, Episode: ecs.Episode, Level: LevelTitle}, true
	}

	var active *DescriptionMaps
	stationName := ""
	stationMatched := false
	if stations, ok := ecs.Stations.Get(); ok && q.Station != "" {
		if st, found := stations[q.Station]; found {
			maps, used := st.Descriptions.Get()
			if !used {
				ep := st.Episode
				if !ep.HasEpisodeLabel() {
					ep = ecs.Episode
				}
				return &MatchedRule{Title: ecs.Title, Station: st.Name, Episode: ep, Level: LevelStation}, true
			}
			active = maps
			stationName = st.Name
			stationMatched = true
		}
	}
	if !stationMatched {
		maps, ok := ecs.Descriptions.Get()
		if !ok {
			return nil, false
		}
		active = maps
	}
	if active == nil {
		return nil, false
	}

	level := LevelDescription
	if stationMatched {
		level = LevelStationDescription
	}
	if pattern, entry, ok := firstMatch(active.Standard, q.Description); ok {
		return &MatchedRule{
			Title: ecs.Title, Station: stationName, Description: pattern,
			Operator: entry.Operator, Episode: entry.Episode, Level: level,
		}, true
	}
	if pattern, entry, ok := firstMatch(active.Extended, q.ExtendedDescription); ok {
		return &MatchedRule{
			Title: ecs.Title, Station: stationName, Description: pattern, Extended: true,
			Operator: entry.Operator, Episode: entry.Episode, Level: level,
		}, true
	}
	return nil, false
}

func firstMatch(entries map[string]*DescriptionEntry, candidate string) (string, *DescriptionEntry, bool) {
	if candidate == "" || len(entries) == 0 {
		return "", nil, false
	}
	for _, pattern := range sortedKeys(entries) {
		entry := entries[pattern]
		if entry.Operator.Match(candidate, pattern) {
			return pattern, entry, true
		}
	}
	return "", nil, false
}

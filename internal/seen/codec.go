// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Rules file keys.
const (
	sectionRule    = "[EventCriteriaSet]"
	sectionStation = "[Station]"

	keyTitle        = "title"
	keyGroup        = "group"
	keyEpisodeTitle = "episodeT"
	keyUseStations  = "useStations"
	keyUseDesc      = "useDesc"
	keyStation      = "station"
	keyEpisodeStn   = "episodeS"
	keyDesc         = "desc"
	keyExtDesc      = "extdesc"
	keyEpisodeDesc  = "episodeD"
)

const maxDecodeIssues = 50

// DecodeIssue describes one skipped line.
type DecodeIssue struct {
	Line   int
	Reason string
}

// DecodeStats summarises a decode.
type DecodeStats struct {
	Rules   int
	Skipped int
	Issues  []DecodeIssue // capped at maxDecodeIssues
}

func (s *DecodeStats) skip(line int, reason string) {
	s.Skipped++
	if len(s.Issues) < maxDecodeIssues {
		s.Issues = append(s.Issues, DecodeIssue{Line: line, Reason: reason})
	}
}

// Encode writes rules in the rules file format. Blocks, stations and patterns
// are sorted so that rewrites of an unchanged store are byte-identical.
func Encode(w io.Writer, rules map[string]*EventCriteriaSet) error {
	bw := bufio.NewWriter(w)
	for i, title := range sortedKeys(rules) {
		if i > 0 {
			bw.WriteString("\n")
		}
		encodeRule(bw, rules[title])
	}
	return bw.Flush()
}

func encodeRule(w *bufio.Writer, ecs *EventCriteriaSet) {
	w.WriteString(sectionRule + "\n")
	writeKV(w, keyTitle, escape(ecs.Title))
	if ecs.Group != "" {
		writeKV(w, keyGroup, raw(ecs.Group))
	}
	if ecs.Episode.HasEpisodeLabel() {
		writeKV(w, keyEpisodeTitle, raw(ecs.Episode.Text))
	}
	stations, useStations := ecs.Stations.Get()
	if useStations {
		writeKV(w, keyUseStations, "true")
	}
	if maps, ok := ecs.Descriptions.Get(); ok {
		writeKV(w, keyUseDesc, "true")
		encodeDescriptions(w, maps)
	}
	for _, name := range sortedKeys(stations) {
		st := stations[name]
		w.WriteString("\n" + sectionStation + "\n")
		writeKV(w, keyStation, escape(name))
		if st.Episode.HasEpisodeLabel() {
			writeKV(w, keyEpisodeStn, raw(st.Episode.Text))
		}
		if maps, ok := st.Descriptions.Get(); ok {
			writeKV(w, keyUseDesc, "true")
			encodeDescriptions(w, maps)
		}
	}
}

func encodeDescriptions(w *bufio.Writer, maps *DescriptionMaps) {
	if maps == nil {
		return
	}
	for _, field := range []struct {
		key     string
		entries map[string]*DescriptionEntry
	}{{keyDesc, maps.Standard}, {keyExtDesc, maps.Extended}} {
		for _, pattern := range sortedKeys(field.entries) {
			entry := field.entries[pattern]
			key := field.key
			if entry.Operator != OperatorEquals {
				key += " " + entry.Operator.String()
			}
			writeKV(w, key, escape(pattern))
			if entry.Episode.HasEpisodeLabel() {
				writeKV(w, keyEpisodeDesc, raw(entry.Episode.Text))
			}
		}
	}
}

func writeKV(w *bufio.Writer, key, value string) {
	w.WriteString(key)
	w.WriteString(" = ")
	w.WriteString(value)
	w.WriteString("\n")
}

// escape percent-encodes free text so that it never contains a line break or
// leading/trailing blanks.
func escape(s string) string {
	return url.PathEscape(s)
}

func unescape(s string) (string, error) {
	return url.PathUnescape(s)
}

// raw makes a structural value safe for a single line.
func raw(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

// decoder accumulates the block being read. A new rule header closes the
// pending rule and station, a station header closes only the pending station.
type decoder struct {
	rules   map[string]*EventCriteriaSet
	stats   DecodeStats
	rule    *EventCriteriaSet
	station *StationCriteria
	last    *DescriptionEntry
	// ignoring is set inside an unknown or orphaned section.
	ignoring bool
}

// Decode reads a rules file. Lines it cannot use are skipped and reported in
// the stats; only read errors are returned.
func Decode(r io.Reader) (map[string]*EventCriteriaSet, DecodeStats, error) {
	d := &decoder{rules: make(map[string]*EventCriteriaSet)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		d.line(lineNo, strings.TrimSuffix(line, "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, d.stats, fmt.Errorf("read rules: %w", err)
	}
	d.closeRule(lineNo)
	d.stats.Rules = len(d.rules)
	return d.rules, d.stats, nil
}

// line handles one input line. Raw values keep their blanks; only the single
// space written after "=" is removed.
func (d *decoder) line(n int, line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") {
		return
	}
	switch {
	case trimmed == sectionRule:
		d.closeRule(n)
		d.rule = &EventCriteriaSet{}
		d.ignoring = false
		return
	case trimmed == sectionStation:
		d.closeStation(n)
		if d.rule == nil {
			d.stats.skip(n, "station block outside of a rule")
			d.ignoring = true
			return
		}
		d.station = &StationCriteria{}
		d.ignoring = false
		return
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		d.closeStation(n)
		d.stats.skip(n, "unknown section "+trimmed)
		d.ignoring = true
		return
	}

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		d.last = nil
		d.stats.skip(n, "not a key = value line")
		return
	}
	key = strings.TrimSpace(key)
	value = strings.TrimPrefix(value, " ")

	if d.ignoring || d.rule == nil {
		d.stats.skip(n, "key outside of a rule")
		return
	}
	if key == keyEpisodeDesc {
		if d.last == nil {
			d.stats.skip(n, "episodeD without description")
			return
		}
		d.last.Episode.Text = value
		d.last = nil
		return
	}
	d.last = nil

	if base, _, _ := strings.Cut(key, " "); base == keyDesc || base == keyExtDesc {
		d.description(n, key, value)
		return
	}
	if d.station != nil {
		d.stationKey(n, key, value)
		return
	}
	d.ruleKey(n, key, value)
}

func (d *decoder) ruleKey(n int, key, value string) {
	switch key {
	case keyTitle:
		title, err := unescape(strings.TrimSpace(value))
		if err != nil {
			d.stats.skip(n, "bad title encoding")
			return
		}
		d.rule.Title = title
	case keyGroup:
		d.rule.Group = value
	case keyEpisodeTitle:
		d.rule.Episode.Text = value
	case keyUseStations:
		if strings.TrimSpace(value) == "true" && !d.rule.Stations.IsUsed() {
			d.rule.Stations = Used(Stations{})
		}
	case keyUseDesc:
		if strings.TrimSpace(value) == "true" && !d.rule.Descriptions.IsUsed() {
			d.rule.Descriptions = Used(NewDescriptionMaps())
		}
	default:
		d.stats.skip(n, "unknown key "+key)
	}
}

func (d *decoder) stationKey(n int, key, value string) {
	switch key {
	case keyStation:
		name, err := unescape(strings.TrimSpace(value))
		if err != nil {
			d.stats.skip(n, "bad station encoding")
			return
		}
		d.station.Name = name
	case keyEpisodeStn:
		d.station.Episode.Text = value
	case keyUseDesc:
		if strings.TrimSpace(value) == "true" && !d.station.Descriptions.IsUsed() {
			d.station.Descriptions = Used(NewDescriptionMaps())
		}
	default:
		d.stats.skip(n, "unknown key "+key)
	}
}

func (d *decoder) description(n int, key, value string) {
	parts := strings.Fields(key)
	if len(parts) > 2 {
		d.stats.skip(n, "malformed description key")
		return
	}
	op := OperatorEquals
	if len(parts) == 2 {
		var err error
		if op, err = ParseOperator(parts[1]); err != nil {
			d.stats.skip(n, err.Error())
			return
		}
	}
	pattern, err := unescape(strings.TrimSpace(value))
	if err != nil || pattern == "" {
		d.stats.skip(n, "bad description pattern")
		return
	}

	target := &d.rule.Descriptions
	if d.station != nil {
		target = &d.station.Descriptions
	}
	maps, ok := target.Get()
	if !ok {
		maps = NewDescriptionMaps()
		*target = Used(maps)
	}
	entry := &DescriptionEntry{Operator: op}
	maps.Field(parts[0] == keyExtDesc)[pattern] = entry
	d.last = entry
}

func (d *decoder) closeStation(n int) {
	st := d.station
	d.station = nil
	d.last = nil
	if st == nil || d.rule == nil {
		return
	}
	if st.Name == "" {
		d.stats.skip(n, "station block without station name")
		return
	}
	stations, ok := d.rule.Stations.Get()
	if !ok {
		stations = Stations{}
		d.rule.Stations = Used(stations)
	}
	stations[st.Name] = st
}

func (d *decoder) closeRule(n int) {
	d.closeStation(n)
	ecs := d.rule
	d.rule = nil
	if ecs == nil {
		return
	}
	if ecs.Title == "" {
		d.stats.skip(n, "rule block without title")
		return
	}
	d.rules[ecs.Title] = ecs
}

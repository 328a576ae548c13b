// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import "strings"

// EpisodeInfo is the free-text label shown next to a rule. It never takes
// part in matching.
type EpisodeInfo struct {
	Text string
}

// HasEpisodeLabel reports whether the label carries non-blank text.
func (e EpisodeInfo) HasEpisodeLabel() bool {
	return strings.TrimSpace(e.Text) != ""
}

// Criterion marks whether a criterion is part of a rule. NotUsed means the
// level is ignored; Used with an empty value means the level is required but
// has nothing to match yet.
type Criterion[T any] struct {
	used  bool
	value T
}

// NotUsed returns a criterion that is not part of the rule.
func NotUsed[T any]() Criterion[T] {
	return Criterion[T]{}
}

// Used returns a criterion that is part of the rule.
func Used[T any](v T) Criterion[T] {
	return Criterion[T]{used: true, value: v}
}

func (c Criterion[T]) IsUsed() bool { return c.used }

// Get returns the value and whether the criterion is used.
func (c Criterion[T]) Get() (T, bool) {
	return c.value, c.used
}

// DescriptionEntry is the value stored for one description pattern.
type DescriptionEntry struct {
	Operator Operator
	Episode  EpisodeInfo
}

// DescriptionMaps holds the patterns matched against the short (Standard) and
// long (Extended) description of a source.
type DescriptionMaps struct {
	Standard map[string]*DescriptionEntry
	Extended map[string]*DescriptionEntry
}

// NewDescriptionMaps returns empty, ready to fill maps.
func NewDescriptionMaps() *DescriptionMaps {
	return &DescriptionMaps{
		Standard: make(map[string]*DescriptionEntry),
		Extended: make(map[string]*DescriptionEntry),
	}
}

// Len returns the number of patterns in both maps.
func (d *DescriptionMaps) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Standard) + len(d.Extended)
}

// Field returns the map for the standard or extended description, creating it if needed.
func (d *DescriptionMaps) Field(extended bool) map[string]*DescriptionEntry {
	if extended {
		if d.Extended == nil {
			d.Extended = make(map[string]*DescriptionEntry)
		}
		return d.Extended
	}
	if d.Standard == nil {
		d.Standard = make(map[string]*DescriptionEntry)
	}
	return d.Standard
}

func (d *DescriptionMaps) Clone() *DescriptionMaps {
	if d == nil {
		return nil
	}
	out := NewDescriptionMaps()
	for k, v := range d.Standard {
		e := *v
		out.Standard[k] = &e
	}
	for k, v := range d.Extended {
		e := *v
		out.Extended[k] = &e
	}
	return out
}

// Patterns returns the patterns of the standard or extended map in rules file order.
func (d *DescriptionMaps) Patterns(extended bool) []string {
	if d == nil {
		return nil
	}
	if extended {
		return sortedKeys(d.Extended)
	}
	return sortedKeys(d.Standard)
}

// StationCriteria narrows a rule to one station.
type StationCriteria struct {
	Name         string
	Episode      EpisodeInfo
	Descriptions Criterion[*DescriptionMaps]
}

func (s *StationCriteria) Clone() *StationCriteria {
	out := *s
	if maps, ok := s.Descriptions.Get(); ok {
		out.Descriptions = Used(maps.Clone())
	}
	return &out
}

// Stations maps a station name to its criteria.
type Stations map[string]*StationCriteria

// Names returns the station names in rules file order.
func (s Stations) Names() []string { return sortedKeys(s) }

// EventCriteriaSet is the complete rule for one title.
type EventCriteriaSet struct {
	Title        string
	Group        string
	Episode      EpisodeInfo
	Stations     Criterion[Stations]
	Descriptions Criterion[*DescriptionMaps]
}

// NewTitleRule returns a rule that matches every source with the given title.
func NewTitleRule(title string) *EventCriteriaSet {
	return &EventCriteriaSet{Title: title}
}

// IsTitleOnly reports whether neither stations nor descriptions are part of the rule.
func (e *EventCriteriaSet) IsTitleOnly() bool {
	return !e.Stations.IsUsed() && !e.Descriptions.IsUsed()
}

// StationCount returns the number of stored stations.
func (e *EventCriteriaSet) StationCount() int {
	st, _ := e.Stations.Get()
	return len(st)
}

// DescriptionCount returns the number of title-level description patterns.
func (e *EventCriteriaSet) DescriptionCount() int {
	d, _ := e.Descriptions.Get()
	return d.Len()
}

// Shape names the rule's specificity for listings.
func (e *EventCriteriaSet) Shape() string {
	switch {
	case e.IsTitleOnly():
		return "title"
	case e.Stations.IsUsed():
		return "station"
	default:
		return "description"
	}
}

// normalize replaces nil containers inside used criteria with empty ones and
// drops nil station entries, so a stored rule can be changed in place.
func (e *EventCriteriaSet) normalize() {
	if st, ok := e.Stations.Get(); ok {
		if st == nil {
			st = Stations{}
			e.Stations = Used(st)
		}
		for name, sc := range st {
			if sc == nil {
				delete(st, name)
				continue
			}
			if sc.Name == "" {
				sc.Name = name
			}
			normalizeDescriptions(&sc.Descriptions)
		}
	}
	normalizeDescriptions(&e.Descriptions)
}

func normalizeDescriptions(c *Criterion[*DescriptionMaps]) {
	maps, ok := c.Get()
	if !ok {
		return
	}
	if maps == nil {
		*c = Used(NewDescriptionMaps())
		return
	}
	maps.Field(false)
	maps.Field(true)
}

func (e *EventCriteriaSet) Clone() *EventCriteriaSet {
	out := *e
	if st, ok := e.Stations.Get(); ok {
		cp := make(Stations, len(st))
		for k, v := range st {
			cp[k] = v.Clone()
		}
		out.Stations = Used(cp)
	}
	if d, ok := e.Descriptions.Get(); ok {
		out.Descriptions = Used(d.Clone())
	}
	return &out
}

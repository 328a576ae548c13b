// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import "github.com/ManuGH/e2seen/internal/seen"

type ruleView struct {
	Title        string           `json:"title"`
	Group        string           `json:"group,omitempty"`
	Episode      string           `json:"episode,omitempty"`
	Shape        string           `json:"shape"`
	Stations     []stationView    `json:"stations,omitempty"`
	Descriptions *descriptionView `json:"descriptions,omitempty"`
}

type stationView struct {
	Name         string           `json:"name"`
	Episode      string           `json:"episode,omitempty"`
	Descriptions *descriptionView `json:"descriptions,omitempty"`
}

// descriptionView is present whenever descriptions are in use, even if empty.
type descriptionView struct {
	Standard []patternView `json:"standard"`
	Extended []patternView `json:"extended"`
}

type patternView struct {
	Pattern  string        `json:"pattern"`
	Operator seen.Operator `json:"operator"`
	Episode  string        `json:"episode,omitempty"`
}

func newRuleView(ecs *seen.EventCriteriaSet) ruleView {
	v := ruleView{
		Title:   ecs.Title,
		Group:   ecs.Group,
		Episode: ecs.Episode.Text,
		Shape:   ecs.Shape(),
	}
	if stations, ok := ecs.Stations.Get(); ok {
		v.Stations = make([]stationView, 0, len(stations))
		for _, name := range stations.Names() {
			st := stations[name]
			v.Stations = append(v.Stations, stationView{
				Name:         st.Name,
				Episode:      st.Episode.Text,
				Descriptions: newDescriptionView(st.Descriptions),
			})
		}
	}
	v.Descriptions = newDescriptionView(ecs.Descriptions)
	return v
}

func newDescriptionView(c seen.Criterion[*seen.DescriptionMaps]) *descriptionView {
	maps, ok := c.Get()
	if !ok {
		return nil
	}
	return &descriptionView{
		Standard: patternViews(maps, false),
		Extended: patternViews(maps, true),
	}
}

func patternViews(maps *seen.DescriptionMaps, extended bool) []patternView {
	out := []patternView{}
	if maps == nil {
		return out
	}
	entries := maps.Field(extended)
	for _, p := range maps.Patterns(extended) {
		e := entries[p]
		out = append(out, patternView{Pattern: p, Operator: e.Operator, Episode: e.Episode.Text})
	}
	return out
}

type checkResponse struct {
	Seen    bool              `json:"seen"`
	Rule    *seen.MatchedRule `json:"rule,omitempty"`
	Episode string            `json:"episode,omitempty"`
}

type markRequest struct {
	Source seen.Fields `json:"source"`
	seen.MarkSpec
}

type labelRequest struct {
	seen.RuleRef
	Label string `json:"label"`
}

type operatorRequest struct {
	seen.RuleRef
	Operator seen.Operator `json:"operator"`
}

type groupRequest struct {
	Title string `json:"title"`
	Group string `json:"group"`
}

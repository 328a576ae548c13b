// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ManuGH/e2seen/internal/seen"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.cfg.Version,
		"rules":   s.engine.Store().Len(),
	})
}

// handleListRules lists all rules in rules file order, optionally filtered by ?group=.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	group, filter := r.URL.Query()["group"]
	rules := []ruleView{}
	s.engine.Store().ForEach(func(_ string, ecs *seen.EventCriteriaSet) {
		if filter && ecs.Group != group[0] {
			return
		}
		rules = append(rules, newRuleView(ecs))
	})
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	if r.URL.RawPath != "" {
		// chi routed on the escaped path, so the parameter is still escaped.
		unescaped, err := url.PathUnescape(title)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_title", err.Error())
			return
		}
		title = unescaped
	}
	ecs, ok := s.engine.Store().Lookup(title)
	if !ok {
		writeError(w, r, http.StatusNotFound, "rule_not_found", "no rule for "+title)
		return
	}
	writeJSON(w, http.StatusOK, newRuleView(ecs))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var src seen.Fields
	if !decodeBody(w, r, &src) {
		return
	}
	if strings.TrimSpace(src.TitleText) == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "missing_title", "title is required")
		return
	}
	m, ok := s.engine.MatchedRule(src)
	resp := checkResponse{Seen: ok, Rule: m}
	if ok {
		resp.Episode = m.Episode.Text
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMark(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, s.engine.Mark)
}

func (s *Server) handleUnmark(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, s.engine.Unmark)
}

func (s *Server) handleMutation(w http.ResponseWriter, r *http.Request, apply func(seen.Source, seen.MarkSpec) error) {
	var req markRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := apply(req.Source, req.MarkSpec); err != nil {
		writeEngineError(w, r, err)
		return
	}
	s.writeRule(w, req.Source.TitleText)
}

func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.SetEpisodeLabel(req.RuleRef, req.Label); err != nil {
		writeEngineError(w, r, err)
		return
	}
	s.writeRule(w, req.Title)
}

func (s *Server) handleOperator(w http.ResponseWriter, r *http.Request) {
	var req operatorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.SetOperator(req.RuleRef, req.Operator); err != nil {
		writeEngineError(w, r, err)
		return
	}
	s.writeRule(w, req.Title)
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.SetGroup(req.Title, req.Group); err != nil {
		writeEngineError(w, r, err)
		return
	}
	s.writeRule(w, req.Title)
}

// writeRule answers a successful change with the rule as it is now, or
// {"title": ..., "removed": true} if the change deleted it.
func (s *Server) writeRule(w http.ResponseWriter, title string) {
	ecs, ok := s.engine.Store().Lookup(title)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"title": title, "removed": true})
		return
	}
	writeJSON(w, http.StatusOK, newRuleView(ecs))
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/e2seen/internal/log"
	"github.com/ManuGH/e2seen/internal/seen"
)

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error:     code,
		Message:   message,
		RequestID: log.RequestIDFromContext(r.Context()),
	})
}

// writeEngineError maps engine errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var me *seen.MarkError
	switch {
	case errors.As(err, &me):
		status := http.StatusConflict
		if me.Code == seen.MissingSourceField {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, errorResponse{
			Error:     string(me.Code),
			Message:   me.Error(),
			Field:     string(me.Field),
			RequestID: log.RequestIDFromContext(r.Context()),
		})
	case errors.Is(err, seen.ErrRuleNotFound):
		writeError(w, r, http.StatusNotFound, "rule_not_found", err.Error())
	case errors.Is(err, seen.ErrInvalidRef):
		writeError(w, r, http.StatusBadRequest, "invalid_reference", err.Error())
	case errors.Is(err, seen.ErrFlush):
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "api.flush_failed").
			Msg("rule change could not be written")
		writeError(w, r, http.StatusInternalServerError, "flush_failed",
			"the change is active but could not be saved to the rules file")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// decodeBody decodes a JSON request body strictly.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
		return false
	}
	return true
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package middleware holds the HTTP ingress middleware of the API.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ManuGH/e2seen/internal/log"
)

// HeaderRequestID carries the correlation ID in requests and responses.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID adds a unique ID to every request. A client-supplied ID is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, reqID)
		ctx := log.ContextWithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"net/http"
	"time"
)

// Middleware logs one line per HTTP request, after the handler returned.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			logger := WithComponentFromContext(r.Context(), "api")
			ev := logger.Info()
			if sw.status >= http.StatusInternalServerError {
				ev = logger.Error()
			}
			ev.Str(FieldEvent, "api.request").
				Str("method", r.Method).
				Str(FieldPath, r.URL.Path).
				Int("status", sw.status).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

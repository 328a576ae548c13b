// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldEvent     = "event"

	// Rule fields
	FieldTitle   = "title"
	FieldStation = "station"
	FieldLevel   = "level"
	FieldSource  = "source_kind"
	FieldRules   = "rules"

	// Path / URL fields
	FieldPath    = "path"
	FieldBaseURL = "base_url"
)

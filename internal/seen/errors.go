// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad wraps I/O failures while reading the rules file.
	ErrLoad = errors.New("seen: load rules")
	// ErrFlush wraps I/O failures while writing the rules file. The in-memory
	// change that triggered the flush is kept.
	ErrFlush = errors.New("seen: flush rules")
	// ErrRuleNotFound is returned when an edit addresses a rule node that does not exist.
	ErrRuleNotFound = errors.New("seen: rule not found")
)

// MarkErrorCode classifies refused mark requests.
type MarkErrorCode string

const (
	WouldOverwriteExistingCriteria   MarkErrorCode = "would_overwrite_existing_criteria"
	DescriptionNotAllowedAtThisLevel MarkErrorCode = "description_not_allowed"
	MissingSourceField               MarkErrorCode = "missing_source_field"
)

// CriteriaKind names the criteria that a refused downgrade would discard.
type CriteriaKind string

const (
	KindStations     CriteriaKind = "stations"
	KindDescriptions CriteriaKind = "descriptions"
)

// SourceField names a source accessor.
type SourceField string

const (
	FieldTitle               SourceField = "title"
	FieldStation             SourceField = "station"
	FieldDescription         SourceField = "description"
	FieldExtendedDescription SourceField = "extended description"
)

// MarkError is a refused mark request. Its message is meant for the end user.
type MarkError struct {
	Code   MarkErrorCode
	Title  string
	Kind   CriteriaKind
	Field  SourceField
	Source SourceKind
}

func (e *MarkError) Error() string {
	switch e.Code {
	case WouldOverwriteExistingCriteria:
		return fmt.Sprintf("%q already has %s criteria; remove them before marking the whole title", e.Title, e.Kind)
	case DescriptionNotAllowedAtThisLevel:
		return fmt.Sprintf("%q is marked without description at this level; remove that rule before adding descriptions", e.Title)
	case MissingSourceField:
		return fmt.Sprintf("the %s has no %s", e.Source, e.Field)
	default:
		return string(e.Code)
	}
}

// Is matches another *MarkError with the same code, so callers can test
// errors.Is(err, &MarkError{Code: ...}).
func (e *MarkError) Is(target error) bool {
	t, ok := target.(*MarkError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func missingField(src Source, field SourceField) *MarkError {
	return &MarkError{Code: MissingSourceField, Field: field, Source: src.Kind()}
}

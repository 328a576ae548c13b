// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"fmt"
	"strings"
)

// Operator selects how a description is compared against a stored pattern.
// All comparisons are case-sensitive.
type Operator int

const (
	OperatorEquals Operator = iota
	OperatorContains
	OperatorStartsWith
)

// Match reports whether candidate satisfies pattern under the operator.
func (o Operator) Match(candidate, pattern string) bool {
	switch o {
	case OperatorContains:
		return strings.Contains(candidate, pattern)
	case OperatorStartsWith:
		return strings.HasPrefix(candidate, pattern)
	default:
		return candidate == pattern
	}
}

// String returns the word used in the rules file.
func (o Operator) String() string {
	switch o {
	case OperatorContains:
		return "contains"
	case OperatorStartsWith:
		return "startswith"
	default:
		return "equals"
	}
}

// ParseOperator parses the persisted operator word. The empty word means equals.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "equals":
		return OperatorEquals, nil
	case "contains":
		return OperatorContains, nil
	case "startswith":
		return OperatorStartsWith, nil
	default:
		return OperatorEquals, fmt.Errorf("unknown operator %q", s)
	}
}

func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Operator) UnmarshalText(b []byte) error {
	op, err := ParseOperator(string(b))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

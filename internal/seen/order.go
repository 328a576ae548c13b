// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// compareKeys orders case-insensitively first and by plain string order second,
// so keys differing only in case still sort deterministically.
func compareKeys(a, b string) int {
	// A Caser keeps state, so it is not shared between callers.
	fold := cases.Fold()
	if c := strings.Compare(fold.String(a), fold.String(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// sortedKeys returns the keys of m in rules file order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

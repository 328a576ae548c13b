// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package seen implements the "already seen" rule engine.
//
// A rule is keyed by event title and can be narrowed by station and by
// description patterns. The Store owns the rules and persists them to a
// line-oriented text file after every change; the Engine answers queries for
// timers, recordings and EPG events and applies mark/unmark requests.
package seen

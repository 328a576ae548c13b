// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command e2seen manages the already-seen rules of an Enigma2 receiver.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

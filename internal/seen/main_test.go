// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alreadyseen.txt")
	store := NewStore(path)
	require.NoError(t, store.Load())
	return NewEngine(store), path
}

func movie(title, station, desc string) Fields {
	return Fields{SourceKind: SourceRecording, TitleText: title, StationName: station, DescriptionText: desc}
}

func descMaps(standard map[string]*DescriptionEntry, extended map[string]*DescriptionEntry) *DescriptionMaps {
	m := NewDescriptionMaps()
	for k, v := range standard {
		m.Standard[k] = v
	}
	for k, v := range extended {
		m.Extended[k] = v
	}
	return m
}

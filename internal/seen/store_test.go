// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package seen

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingFileIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "sub", "alreadyseen.txt"))
	require.NoError(t, store.Load())
	assert.Zero(t, store.Len())
	require.NoError(t, store.Close())
}

func TestStore_LoadErrorKeepsRules(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	store := NewStore(filepath.Join(blocker, "alreadyseen.txt"))
	store.Replace("Foo", NewTitleRule("Foo"))
	err := store.Load()
	require.ErrorIs(t, err, ErrLoad)
	assert.Equal(t, 1, store.Len())
}

func TestStore_LoadReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alreadyseen.txt")
	require.NoError(t, os.WriteFile(path, []byte("[EventCriteriaSet]\ntitle = A\n\n[EventCriteriaSet]\ntitle = B\nbroken line\n"), 0o600))

	store := NewStore(path)
	store.Replace("Stale", NewTitleRule("Stale"))
	require.NoError(t, store.Load())
	assert.Equal(t, 2, store.Len())
	_, ok := store.Lookup("Stale")
	assert.False(t, ok)
}

func TestStore_FlushWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "alreadyseen.txt")
	store := NewStore(path)
	store.Replace("Foo", NewTitleRule("Foo"))
	require.NoError(t, store.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[EventCriteriaSet]\ntitle = Foo\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_LookupReturnsCopy(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "alreadyseen.txt"))
	store.Replace("Foo", &EventCriteriaSet{Stations: Used(Stations{"BBC": {Name: "BBC"}})})

	ecs, ok := store.Lookup("Foo")
	require.True(t, ok)
	stations, _ := ecs.Stations.Get()
	delete(stations, "BBC")
	ecs.Group = "changed"

	again, _ := store.Lookup("Foo")
	assert.Equal(t, 1, again.StationCount())
	assert.Empty(t, again.Group)
}

func TestStore_UpsertRemoveForEach(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "alreadyseen.txt"))

	built := 0
	build := func() *EventCriteriaSet { built++; return &EventCriteriaSet{} }
	first := store.Upsert("b", build)
	second := store.Upsert("b", build)
	assert.Same(t, first, second)
	assert.Equal(t, 1, built)
	assert.Equal(t, "b", first.Title)

	store.Upsert("A", build)
	store.Upsert("c", build)

	var titles []string
	store.ForEach(func(title string, ecs *EventCriteriaSet) {
		assert.Equal(t, title, ecs.Title)
		titles = append(titles, title)
	})
	assert.Equal(t, []string{"A", "b", "c"}, titles)

	assert.True(t, store.Remove("b"))
	assert.False(t, store.Remove("b"))
	assert.Equal(t, 2, store.Len())
}

func TestStore_ReplaceFillsNilContainers(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "alreadyseen.txt"))
	store.Replace("Foo", &EventCriteriaSet{
		Stations: Used(Stations{
			"BBC1": {Descriptions: Used[*DescriptionMaps](nil)},
			"ITV":  nil,
		}),
	})

	ecs, ok := store.Lookup("Foo")
	require.True(t, ok)
	stations, used := ecs.Stations.Get()
	require.True(t, used)
	require.Len(t, stations, 1)
	assert.Equal(t, "BBC1", stations["BBC1"].Name)
	maps, used := stations["BBC1"].Descriptions.Get()
	require.True(t, used)
	require.NotNil(t, maps)
	assert.NotNil(t, maps.Standard)
	assert.NotNil(t, maps.Extended)
}

func TestStore_LoadDoesNotDropConcurrentMarks(t *testing.T) {
	engine, _ := newTestEngine(t)
	store := engine.Store()

	const marks = 50
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				assert.NoError(t, store.Load())
			}
		}
	}()

	for i := 0; i < marks; i++ {
		require.NoError(t, engine.Mark(movie(fmt.Sprintf("Title %d", i), "", ""), MarkSpec{}))
	}
	close(done)
	wg.Wait()

	assert.Equal(t, marks, store.Len())
	require.NoError(t, store.Load())
	assert.Equal(t, marks, store.Len())
}

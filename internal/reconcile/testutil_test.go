package reconcile

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmunix/postersync/internal/codec"
	"github.com/vmunix/postersync/internal/state"
)

// fakeIDs is a ValidIDSource backed by a map.
type fakeIDs map[codec.MediaType]state.IDSet

func (f fakeIDs) AllValidIDs(mt codec.MediaType) state.IDSet {
	return state.NewIDSet().Union(f[mt])
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

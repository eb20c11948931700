package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/postersync/internal/codec"
)

func TestRegistry_DetectMissingClearsValidIDs(t *testing.T) {
	dir := t.TempDir()
	ids, err := OpenValidIDStore(filepath.Join(dir, "valid_ids.json"))
	require.NoError(t, err)
	reg, err := OpenRegistry(filepath.Join(dir, "libraries.json"), ids)
	require.NoError(t, err)

	movies := Library{ID: "1", Title: "Movies", Kind: codec.KindMovie}
	kids := Library{ID: "2", Title: "Kids", Kind: codec.KindMovie}

	require.NoError(t, reg.RecordLibrariesSeen([]Library{movies, kids}, codec.MediaMovie))
	require.NoError(t, ids.StoreValidIDs(NewIDSet("a", "b"), codec.MediaMovie, "2", true))
	require.NoError(t, ids.StoreValidIDs(NewIDSet("c"), codec.MediaMovie, "1", true))

	missing, err := reg.DetectMissingLibraries([]Library{movies}, codec.MediaMovie)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "2", missing[0].ID)
	assert.Equal(t, "Kids", missing[0].Title)

	all := ids.AllValidIDs(codec.MediaMovie)
	assert.False(t, all.Has("a"))
	assert.False(t, all.Has("b"))
	assert.True(t, all.Has("c"))

	again, err := reg.DetectMissingLibraries([]Library{movies}, codec.MediaMovie)
	require.NoError(t, err)
	assert.Empty(t, again, "missing library is removed from the registry")
}

func TestRegistry_MediaTypesAreIndependent(t *testing.T) {
	dir := t.TempDir()
	ids, err := OpenValidIDStore(filepath.Join(dir, "valid_ids.json"))
	require.NoError(t, err)
	reg, err := OpenRegistry(filepath.Join(dir, "libraries.json"), ids)
	require.NoError(t, err)

	tv := Library{ID: "5", Title: "TV", Kind: codec.KindShow}
	require.NoError(t, reg.RecordLibrariesSeen([]Library{tv}, codec.MediaShow))

	missing, err := reg.DetectMissingLibraries(nil, codec.MediaMovie)
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Len(t, reg.Entries(codec.MediaShow), 1)
}

func TestRegistry_PersistsLastSeen(t *testing.T) {
	dir := t.TempDir()
	ids, err := OpenValidIDStore(filepath.Join(dir, "valid_ids.json"))
	require.NoError(t, err)
	reg, err := OpenRegistry(filepath.Join(dir, "libraries.json"), ids)
	require.NoError(t, err)
	reg.now = func() time.Time { return time.Unix(1700000000, 0) }

	require.NoError(t, reg.RecordLibrariesSeen([]Library{{ID: "1", Title: "Movies", Kind: codec.KindMovie}}, codec.MediaMovie))

	reopened, err := OpenRegistry(filepath.Join(dir, "libraries.json"), ids)
	require.NoError(t, err)
	entries := reopened.Entries(codec.MediaMovie)
	require.Len(t, entries, 1)
	assert.Equal(t, "Movies", entries[0].Title)
	assert.Equal(t, int64(1700000000), entries[0].LastSeen.Unix())
}

package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/postersync/internal/codec"
)

func openTestStore(t *testing.T) *ValidIDStore {
	t.Helper()
	s, err := OpenValidIDStore(filepath.Join(t.TempDir(), "valid_ids.json"))
	require.NoError(t, err, "open store")
	return s
}

func TestValidIDStore_ReplaceAndMerge(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.StoreValidIDs(NewIDSet("a", "b"), codec.MediaMovie, "1", true))
	require.NoError(t, s.StoreValidIDs(NewIDSet("c"), codec.MediaMovie, "1", false))
	assert.Equal(t, []string{"a", "b", "c"}, s.LibraryIDs(codec.MediaMovie, "1").Sorted())

	require.NoError(t, s.StoreValidIDs(NewIDSet("z"), codec.MediaMovie, "1", true))
	assert.Equal(t, []string{"z"}, s.LibraryIDs(codec.MediaMovie, "1").Sorted())
}

func TestValidIDStore_ReadAfterWriteAcrossOpen(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.StoreValidIDs(NewIDSet("a"), codec.MediaMovie, "1", true))
	require.NoError(t, s.StoreValidIDs(NewIDSet("b"), codec.MediaMovie, "2", true))
	require.NoError(t, s.StoreValidIDs(NewIDSet("s1"), codec.MediaShow, "3", true))

	reopened, err := OpenValidIDStore(s.Path())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, reopened.AllValidIDs(codec.MediaMovie).Sorted())
	assert.Equal(t, []string{"s1"}, reopened.AllValidIDs(codec.MediaShow).Sorted())
	assert.Empty(t, reopened.AllValidIDs(codec.MediaSeason))
}

func TestValidIDStore_Clear(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.StoreValidIDs(NewIDSet("a", "b"), codec.MediaMovie, "1", true))
	require.NoError(t, s.StoreValidIDs(NewIDSet("c"), codec.MediaMovie, "2", true))

	require.NoError(t, s.ClearStoredIDs(codec.MediaMovie, "1"))
	require.NoError(t, s.ClearStoredIDs(codec.MediaMovie, "unknown"))
	assert.Equal(t, []string{"c"}, s.AllValidIDs(codec.MediaMovie).Sorted())

	assert.ErrorIs(t, s.ClearStoredIDs(codec.MediaMovie, ""), ErrNoLibraryID)
	assert.ErrorIs(t, s.StoreValidIDs(nil, codec.MediaMovie, "", true), ErrNoLibraryID)
}

func TestValidIDStore_StoredCopyIsIndependent(t *testing.T) {
	s := openTestStore(t)
	ids := NewIDSet("a")
	require.NoError(t, s.StoreValidIDs(ids, codec.MediaMovie, "1", true))

	ids.Add("b")
	assert.False(t, s.AllValidIDs(codec.MediaMovie).Has("b"))
}

func TestValidIDStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valid_ids.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := OpenValidIDStore(path)
	assert.ErrorIs(t, err, ErrCorruptDocument)
}

func TestOverlay_FlushReplacesPerLibrary(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.StoreValidIDs(NewIDSet("old"), codec.MediaMovie, "1", true))
	require.NoError(t, s.StoreValidIDs(NewIDSet("other"), codec.MediaMovie, "2", true))

	o := NewOverlay()
	o.Add(codec.MediaMovie, "1", "a", "b")
	o.Add(codec.MediaMovie, "1", "b", "")
	require.NoError(t, o.Flush(s, codec.MediaMovie, "1", true))

	assert.Equal(t, []string{"a", "b"}, s.LibraryIDs(codec.MediaMovie, "1").Sorted())
	assert.Equal(t, []string{"a", "b", "other"}, s.AllValidIDs(codec.MediaMovie).Sorted())
	assert.Equal(t, []string{"a", "b"}, o.Union(codec.MediaMovie).Sorted())

	o.Reset(codec.MediaMovie)
	assert.Empty(t, o.Union(codec.MediaMovie))
}

func TestLastRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "last_run")

	_, ok, err := ReadLastRun(path)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Unix(1700000000, 0)
	require.NoError(t, WriteLastRun(path, now))

	got, ok, err := ReadLastRun(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, now.Equal(got))
}

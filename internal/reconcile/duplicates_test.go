package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/postersync/internal/codec"
)

func TestPickBest(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"current with timestamp wins", []string{
			"A [1] --Orphaned--.jpg",
			"A [1] --Plex--.jpg",
			"A [1] (A1700000000) --Plex--.jpg",
			"A [1] (A1700000000) --Orphaned--.jpg",
		}, "A [1] (A1700000000) --Plex--.jpg"},
		{"current beats timestamp", []string{
			"A [1] (A1700000000) --Orphaned--.jpg",
			"A [1] --Plex--.jpg",
		}, "A [1] --Plex--.jpg"},
		{"timestamp beats plain orphan", []string{
			"A [1] --Orphaned--.jpg",
			"A [1] (A1700000000) --Orphaned--.jpg",
		}, "A [1] (A1700000000) --Orphaned--.jpg"},
		{"first seen on tie", []string{
			"A [1] [[One]] --Plex--.jpg",
			"A [1] [[Two]] --Plex--.jpg",
		}, "A [1] [[One]] --Plex--.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep, drop := PickBest(tt.names)
			assert.Equal(t, tt.want, keep)
			assert.Len(t, drop, len(tt.names)-1)
			assert.NotContains(t, drop, keep)
		})
	}
}

func TestCleanupDuplicates_KeepsCurrentAndReencodes(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"Heat Collection [999] (Movies) --Orphaned--.jpg",
		"Heat Collection [999] (Movies) --Plex--.jpg",
		"Other Collection [5] (A1700000000) (Movies) --Plex--.jpg",
	)

	known := map[string]codec.Name{
		"999": {Title: "Heat", ID: "999", AddedAt: 1700000000, LibraryKind: codec.KindMovie, MediaType: codec.MediaCollection},
	}

	e := New(fakeIDs{}, nil)
	res, err := e.CleanupDuplicates(context.Background(), dir, codec.MediaCollection, known)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Groups)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.Renamed)
	assert.Equal(t, []string{
		"Heat Collection [999] (A1700000000) (Movies) --Plex--.jpg",
		"Other Collection [5] (A1700000000) (Movies) --Plex--.jpg",
	}, listDir(t, dir))
}

func TestCleanupDuplicates_WithoutRemoteRecord(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"Heat (1995) [999] --Orphaned--.jpg",
		"Heat (1995) [999] --Plex--.jpg",
		"Heat (1995) [999] [[Movies]] --Plex--.jpg",
	)

	e := New(fakeIDs{}, nil)
	res, err := e.CleanupDuplicates(context.Background(), dir, codec.MediaMovie, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Deleted)
	assert.Zero(t, res.Renamed)
	assert.Equal(t, []string{"Heat (1995) [999] --Plex--.jpg"}, listDir(t, dir))
}

func TestCleanupDuplicates_SingleFilesUntouched(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Heat (1995) [999] --Orphaned--.jpg", "Alien (1979) [1] --Plex--.jpg")

	e := New(fakeIDs{}, nil)
	res, err := e.CleanupDuplicates(context.Background(), dir, codec.MediaMovie, map[string]codec.Name{
		"999": {Title: "Heat", Year: 1995, ID: "999", AddedAt: 1700000000, MediaType: codec.MediaMovie},
	})
	require.NoError(t, err)
	assert.Zero(t, res.Groups)
	assert.Len(t, listDir(t, dir), 2)
}

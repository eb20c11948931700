package importer_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/postersync/internal/codec"
	"github.com/vmunix/postersync/internal/importer"
	"github.com/vmunix/postersync/internal/plex"
	"go.uber.org/mock/gomock"
)

func TestImporter_Push_Collection(t *testing.T) {
	f := newFixture(t, importer.Config{})
	name := "Alien Collection [500] (A1650000000) (Movies) --Plex--.jpg"
	touch(t, f.dirs.Collections, name, "poster")

	gomock.InOrder(
		f.server.EXPECT().GetMetadata(gomock.Any(), "500").
			Return(&plex.Item{RatingKey: "500", Title: "Alien", Type: "collection", LibrarySectionID: "1"}, nil),
		f.server.EXPECT().UploadPoster(gomock.Any(), "500", []byte("poster"), true).Return(nil),
		f.server.EXPECT().LockPoster(gomock.Any(), "1", "500", "collection").Return(nil),
	)

	res, err := f.imp.Push(context.Background(), filepath.Join(f.dirs.Collections, name), "")
	require.NoError(t, err)
	assert.Equal(t, codec.MediaCollection, res.MediaType)
	assert.Equal(t, "500", res.ID)
	assert.Equal(t, 6, res.Bytes)
	assert.True(t, res.Locked)
}

func TestImporter_Push_Movie(t *testing.T) {
	f := newFixture(t, importer.Config{})
	touch(t, f.dirs.Movies, duneFile, "poster")

	f.server.EXPECT().GetMetadata(gomock.Any(), "12345").
		Return(&plex.Item{RatingKey: "12345", Title: "Dune", LibrarySectionID: "1"}, nil)
	f.server.EXPECT().UploadPoster(gomock.Any(), "12345", gomock.Any(), false).Return(nil)
	f.server.EXPECT().LockPoster(gomock.Any(), "1", "12345", "movie").Return(nil)

	res, err := f.imp.Push(context.Background(), filepath.Join(f.dirs.Movies, duneFile), "")
	require.NoError(t, err)
	assert.Equal(t, codec.MediaMovie, res.MediaType)
}

func TestImporter_Push_UploadFailure(t *testing.T) {
	f := newFixture(t, importer.Config{})
	touch(t, f.dirs.Movies, duneFile, "poster")

	f.server.EXPECT().GetMetadata(gomock.Any(), "12345").Return(&plex.Item{RatingKey: "12345", LibrarySectionID: "1"}, nil)
	f.server.EXPECT().UploadPoster(gomock.Any(), "12345", gomock.Any(), false).Return(plex.ErrAllStrategiesFailed)

	res, err := f.imp.Push(context.Background(), filepath.Join(f.dirs.Movies, duneFile), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, plex.ErrAllStrategiesFailed)
	require.NotNil(t, res)
	assert.False(t, res.Locked)
}

func TestImporter_Push_Errors(t *testing.T) {
	f := newFixture(t, importer.Config{})
	touch(t, f.dirs.Movies, "no id --Plex--.jpg", "x")

	_, err := f.imp.Push(context.Background(), filepath.Join(f.dirs.Movies, "no id --Plex--.jpg"), "")
	assert.ErrorIs(t, err, importer.ErrMalformedItem)

	_, err = f.imp.Push(context.Background(), filepath.Join(t.TempDir(), duneFile), "")
	assert.ErrorIs(t, err, importer.ErrUnknownMediaType)

	_, err = f.imp.Push(context.Background(), filepath.Join(t.TempDir(), duneFile), codec.MediaMovie)
	assert.ErrorIs(t, err, importer.ErrPathTraversal)

	f.server.EXPECT().GetMetadata(gomock.Any(), "12345").Return(nil, plex.ErrNotFound)
	touch(t, f.dirs.Movies, duneFile, "poster")
	_, err = f.imp.Push(context.Background(), filepath.Join(f.dirs.Movies, duneFile), "")
	assert.True(t, errors.Is(err, plex.ErrNotFound))
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, importer.ValidatePath("/posters/movies/a.jpg", "/posters/movies"))
	assert.NoError(t, importer.ValidatePath("/posters/movies", "/posters/movies"))
	assert.ErrorIs(t, importer.ValidatePath("/posters/movies/../shows/a.jpg", "/posters/movies"), importer.ErrPathTraversal)
	assert.ErrorIs(t, importer.ValidatePath("/posters/movies2/a.jpg", "/posters/movies"), importer.ErrPathTraversal)
}

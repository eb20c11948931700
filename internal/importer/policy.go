package importer

import (
	"fmt"

	"github.com/vmunix/postersync/internal/codec"
	"github.com/vmunix/postersync/internal/plex"
	"github.com/vmunix/postersync/internal/state"
)

// policy describes how one media type is imported: where its posters live
// and how a remote item becomes a filename.
type policy struct {
	mediaType codec.MediaType
	dir       string
	name      func(item plex.Item, lib state.Library, addedAt int64) codec.Name
}

// SeasonTitle returns the display title of a season poster.
func SeasonTitle(show string, index int) string {
	if index == 0 {
		return show + " - Specials"
	}
	return fmt.Sprintf("%s - Season %d", show, index)
}

func movieName(item plex.Item, lib state.Library, addedAt int64) codec.Name {
	return codec.Name{
		Title:       item.Title,
		Year:        item.Year,
		ID:          item.RatingKey,
		MediaType:   codec.MediaMovie,
		LibraryKind: lib.Kind,
		LibraryName: lib.Title,
		AddedAt:     addedAt,
	}
}

func showName(item plex.Item, lib state.Library, addedAt int64) codec.Name {
	return codec.Name{
		Title:       item.Title,
		ID:          item.RatingKey,
		MediaType:   codec.MediaShow,
		LibraryKind: lib.Kind,
		LibraryName: lib.Title,
		AddedAt:     addedAt,
	}
}

// seasonName expects item.ParentTitle to hold the show title.
func seasonName(item plex.Item, lib state.Library, addedAt int64) codec.Name {
	return codec.Name{
		Title:       SeasonTitle(item.ParentTitle, item.Index),
		ID:          item.RatingKey,
		MediaType:   codec.MediaSeason,
		LibraryKind: lib.Kind,
		AddedAt:     addedAt,
	}
}

func collectionName(item plex.Item, lib state.Library, addedAt int64) codec.Name {
	kind := lib.Kind
	if kind == codec.KindUnknown {
		kind = libraryKind(item.Subtype)
	}
	return codec.Name{
		Title:       item.Title,
		ID:          item.RatingKey,
		MediaType:   codec.MediaCollection,
		LibraryKind: kind,
		AddedAt:     addedAt,
	}
}

// libraryKind maps a Plex section or subtype to a library kind.
func libraryKind(plexType string) codec.LibraryKind {
	switch plexType {
	case "movie":
		return codec.KindMovie
	case "show":
		return codec.KindShow
	default:
		return codec.KindUnknown
	}
}

// Dirs locates the poster directory of each media type.
type Dirs struct {
	Movies      string
	Shows       string
	Seasons     string
	Collections string
}

// For returns the directory holding posters of mediaType.
func (d Dirs) For(mediaType codec.MediaType) string {
	switch mediaType {
	case codec.MediaMovie:
		return d.Movies
	case codec.MediaShow:
		return d.Shows
	case codec.MediaSeason:
		return d.Seasons
	case codec.MediaCollection:
		return d.Collections
	default:
		return ""
	}
}

func (d Dirs) policies() map[codec.MediaType]policy {
	return map[codec.MediaType]policy{
		codec.MediaMovie:      {mediaType: codec.MediaMovie, dir: d.Movies, name: movieName},
		codec.MediaShow:       {mediaType: codec.MediaShow, dir: d.Shows, name: showName},
		codec.MediaSeason:     {mediaType: codec.MediaSeason, dir: d.Seasons, name: seasonName},
		codec.MediaCollection: {mediaType: codec.MediaCollection, dir: d.Collections, name: collectionName},
	}
}

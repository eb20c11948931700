package importer

import (
	"context"

	"github.com/vmunix/postersync/internal/plex"
)

//go:generate mockgen -destination=mocks/mock_mediaserver.go -package=mocks github.com/vmunix/postersync/internal/importer MediaServer

// MediaServer defines the media server operations the orchestrator needs.
type MediaServer interface {
	// GetSections lists every library section.
	GetSections(ctx context.Context) ([]plex.Section, error)

	// ListItems returns one page of the movies or shows of a section.
	ListItems(ctx context.Context, sectionKey string, start, size int) (*plex.Page, error)

	// ListCollections returns one page of the collections of a section.
	ListCollections(ctx context.Context, sectionKey string, start, size int) (*plex.Page, error)

	// ListChildren returns the seasons of a show.
	ListChildren(ctx context.Context, ratingKey string) ([]plex.Item, error)

	// GetMetadata returns a single item.
	GetMetadata(ctx context.Context, ratingKey string) (*plex.Item, error)

	// FetchImage downloads poster bytes.
	FetchImage(ctx context.Context, path string) ([]byte, error)

	// UploadPoster replaces the poster of an item.
	UploadPoster(ctx context.Context, ratingKey string, data []byte, collection bool) error

	// LockPoster stops the server from replacing an item's poster.
	LockPoster(ctx context.Context, sectionID, ratingKey, itemType string) error
}

// Ensure plex.Client implements MediaServer.
var _ MediaServer = (*plex.Client)(nil)

package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmunix/postersync/internal/codec"
)

// PushResult describes a poster sent back to the media server.
type PushResult struct {
	ID        string          `json:"id"`
	MediaType codec.MediaType `json:"media_type"`
	Title     string          `json:"title"`
	Bytes     int             `json:"bytes"`
	Locked    bool            `json:"locked"`
}

// MediaTypeOf infers the media type of a poster from the directory holding it.
func (i *Importer) MediaTypeOf(path string) (codec.MediaType, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(abs)
	for _, mt := range codec.AllMediaTypes {
		root := i.cfg.Dirs.For(mt)
		if root == "" {
			continue
		}
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if dir == filepath.Clean(rootAbs) {
			return mt, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownMediaType, path)
}

// Push uploads the poster at path to the item whose id the filename
// carries, then locks it. An empty mediaType is inferred from the
// directory. Collections try every upload endpoint in order.
func (i *Importer) Push(ctx context.Context, path string, mediaType codec.MediaType) (*PushResult, error) {
	if mediaType == "" {
		mt, err := i.MediaTypeOf(path)
		if err != nil {
			return nil, err
		}
		mediaType = mt
	}
	if root := i.cfg.Dirs.For(mediaType); root != "" {
		if err := ValidatePath(path, root); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	id, ok := codec.ExtractID(filepath.Base(path))
	if !ok {
		return nil, fmt.Errorf("%w: no id in %s", ErrMalformedItem, filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read poster: %w", err)
	}

	item, err := i.server.GetMetadata(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up item %s: %w", id, err)
	}

	res := &PushResult{ID: id, MediaType: mediaType, Title: item.Title, Bytes: len(data)}
	if err := i.server.UploadPoster(ctx, id, data, mediaType == codec.MediaCollection); err != nil {
		return res, fmt.Errorf("upload poster: %w", err)
	}

	itemType := item.Type
	if itemType == "" {
		itemType = string(mediaType)
	}
	if err := i.server.LockPoster(ctx, item.LibrarySectionID, id, itemType); err != nil {
		return res, fmt.Errorf("lock poster: %w", err)
	}
	res.Locked = true

	i.log.Info("poster pushed", "id", id, "media_type", mediaType, "title", item.Title, "locked", res.Locked)
	return res, nil
}

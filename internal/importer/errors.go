package importer

import "errors"

var (
	// ErrMalformedItem indicates a remote record is missing a required field.
	ErrMalformedItem = errors.New("malformed item")

	// ErrNoPoster indicates the remote item has no poster to download.
	ErrNoPoster = errors.New("item has no poster")

	// ErrPathTraversal indicates a path escapes the poster root.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrCursorDone indicates Step was called on a finished cursor.
	ErrCursorDone = errors.New("cursor already done")

	// ErrUnknownMediaType indicates a poster path outside every media directory.
	ErrUnknownMediaType = errors.New("cannot determine media type")
)

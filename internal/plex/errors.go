package plex

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus indicates Plex answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrNotFound indicates the requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrImageTooLarge indicates a poster download exceeded the size limit.
	ErrImageTooLarge = errors.New("image too large")

	// ErrAllStrategiesFailed indicates every upload strategy was rejected.
	ErrAllStrategiesFailed = errors.New("all upload strategies failed")
)

// APIError describes a failed Plex call.
type APIError struct {
	Op         string
	Path       string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("plex %s %s: status %d: %v", e.Op, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("plex %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

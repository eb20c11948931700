package state

import "errors"

var (
	// ErrCorruptDocument indicates a state file exists but cannot be decoded.
	ErrCorruptDocument = errors.New("corrupt state document")

	// ErrNoLibraryID indicates an operation was called without a library id.
	ErrNoLibraryID = errors.New("library id is required")
)

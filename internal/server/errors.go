package server

import "errors"

// ErrNoHistory indicates a Syncer was built without a history store.
var ErrNoHistory = errors.New("history store is required")

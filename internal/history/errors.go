package history

import "errors"

// ErrRunNotFound indicates the run record doesn't exist.
var ErrRunNotFound = errors.New("run not found")

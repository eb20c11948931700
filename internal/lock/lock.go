// Package lock provides the process-wide mutual exclusion used by scheduled
// runs: a lock file holding the acquisition time, reclaimed once stale.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultStaleAfter is the age after which a lock is treated as abandoned.
const DefaultStaleAfter = 2 * time.Hour

// ErrLocked indicates another run holds a fresh lock.
var ErrLocked = errors.New("another run holds the lock")

// Lock is a held lock file.
type Lock struct {
	path string
}

// Acquire creates the lock file at path. If a lock exists and is younger than
// staleAfter, ErrLocked is returned; an older lock is reclaimed.
func Acquire(path string, staleAfter time.Duration, now time.Time) (*Lock, error) {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			_, werr := f.WriteString(strconv.FormatInt(now.Unix(), 10) + "\n")
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("write lock: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock: %w", err)
		}

		held, err := heldSince(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read lock: %w", err)
		}
		if now.Sub(held) < staleAfter {
			return nil, fmt.Errorf("%w (since %s)", ErrLocked, held.Format(time.RFC3339))
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lock: %w", err)
		}
	}
	return nil, ErrLocked
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// heldSince reports when the lock was taken. A lock whose body is empty or
// unparseable, such as one a concurrent Acquire has created but not yet
// written, is dated by its modification time.
func heldSince(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, err
	}
	if secs, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

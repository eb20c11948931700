package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// WriteLastRun records t as the completion time of the last full run.
func WriteLastRun(path string, t time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.FormatInt(t.Unix(), 10)+"\n"), 0644); err != nil {
		return fmt.Errorf("write last run: %w", err)
	}
	return nil
}

// ReadLastRun returns the recorded last-run time. ok is false when no run
// has been recorded.
func ReadLastRun(path string) (t time.Time, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read last run: %w", err)
	}
	secs, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, path, err)
	}
	return time.Unix(secs, 0), true, nil
}

package state

import "path/filepath"

// Paths locates the sidecar state files under one directory.
type Paths struct {
	Dir string
}

func (p Paths) ValidIDs() string  { return filepath.Join(p.Dir, "valid_ids.json") }
func (p Paths) Libraries() string { return filepath.Join(p.Dir, "libraries.json") }
func (p Paths) LastRun() string   { return filepath.Join(p.Dir, "last_run") }
func (p Paths) Lock() string      { return filepath.Join(p.Dir, "postersync.lock") }
func (p Paths) History() string   { return filepath.Join(p.Dir, "history.db") }
func (p Paths) Cursor() string    { return filepath.Join(p.Dir, "cursor.json") }

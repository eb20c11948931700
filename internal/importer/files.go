package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmunix/postersync/internal/codec"
)

// writePoster writes data to path through a temporary file in the same
// directory, so a poster is either fully present or absent.
func writePoster(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".poster-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write poster: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// sameContent reports whether the file at path holds exactly data.
func sameContent(path string, data []byte) bool {
	existing, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return string(existing) == string(data)
}

// dirIndex maps poster ids to the managed files carrying them.
type dirIndex struct {
	dir  string
	byID map[string][]string
}

// indexDir scans dir once. A missing directory yields an empty index.
func indexDir(dir string) (*dirIndex, error) {
	idx := &dirIndex{dir: dir, byID: make(map[string][]string)}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !codec.IsManaged(e.Name()) {
			continue
		}
		if id, ok := codec.ExtractID(e.Name()); ok {
			idx.byID[id] = append(idx.byID[id], e.Name())
		}
	}
	return idx, nil
}

func (d *dirIndex) path(name string) string {
	return filepath.Join(d.dir, name)
}

func (d *dirIndex) set(id string, names ...string) {
	d.byID[id] = names
}

// ValidatePath ensures the path is within the expected root directory.
// Returns ErrPathTraversal if the path would escape the root.
func ValidatePath(path, expectedRoot string) error {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(expectedRoot)

	if cleanPath == cleanRoot {
		return nil
	}
	if !strings.HasSuffix(cleanRoot, string(filepath.Separator)) {
		cleanRoot += string(filepath.Separator)
	}
	if !strings.HasPrefix(cleanPath, cleanRoot) {
		return ErrPathTraversal
	}
	return nil
}

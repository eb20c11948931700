// Package state persists the sidecar documents that let reconciliation run
// without a database: the last known valid ids per library, the registry of
// libraries seen, and the last-run marker.
package state

import (
	"fmt"
	"sync"

	"github.com/vmunix/postersync/internal/codec"
)

// validIDDoc is the on-disk shape: media type -> library id -> ids.
type validIDDoc map[codec.MediaType]map[string]IDSet

// ValidIDStore is the persisted mapping from (media type, library id) to the
// ids seen in the most recent scan of that library. Every mutation is
// written to disk before the call returns.
type ValidIDStore struct {
	path string

	mu   sync.RWMutex
	data validIDDoc
}

// OpenValidIDStore loads the store at path. A missing file is an empty store.
func OpenValidIDStore(path string) (*ValidIDStore, error) {
	s := &ValidIDStore{path: path, data: make(validIDDoc)}
	if err := ReadJSON(path, &s.data); err != nil {
		return nil, err
	}
	if s.data == nil {
		s.data = make(validIDDoc)
	}
	return s, nil
}

// Path returns the backing file.
func (s *ValidIDStore) Path() string {
	return s.path
}

// StoreValidIDs records ids for (mediaType, libraryID). With replace the
// stored set is overwritten; otherwise ids are merged into it.
func (s *ValidIDStore) StoreValidIDs(ids IDSet, mediaType codec.MediaType, libraryID string, replace bool) error {
	if libraryID == "" {
		return ErrNoLibraryID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	libs := s.data[mediaType]
	if libs == nil {
		libs = make(map[string]IDSet)
		s.data[mediaType] = libs
	}

	if replace || libs[libraryID] == nil {
		libs[libraryID] = NewIDSet().Union(ids)
	} else {
		libs[libraryID].Merge(ids)
	}

	return s.flushLocked()
}

// ClearStoredIDs empties the set for (mediaType, libraryID).
func (s *ValidIDStore) ClearStoredIDs(mediaType codec.MediaType, libraryID string) error {
	if libraryID == "" {
		return ErrNoLibraryID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	libs := s.data[mediaType]
	if libs == nil {
		return nil
	}
	if _, ok := libs[libraryID]; !ok {
		return nil
	}
	delete(libs, libraryID)
	return s.flushLocked()
}

// AllValidIDs returns the union of ids across every library of mediaType.
func (s *ValidIDStore) AllValidIDs(mediaType codec.MediaType) IDSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(IDSet)
	for _, ids := range s.data[mediaType] {
		out.Merge(ids)
	}
	return out
}

// LibraryIDs returns a copy of the ids stored for one library.
func (s *ValidIDStore) LibraryIDs(mediaType codec.MediaType, libraryID string) IDSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return NewIDSet().Union(s.data[mediaType][libraryID])
}

// Counts reports the number of stored ids per media type and library.
func (s *ValidIDStore) Counts() map[codec.MediaType]map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[codec.MediaType]map[string]int, len(s.data))
	for mt, libs := range s.data {
		out[mt] = make(map[string]int, len(libs))
		for lib, ids := range libs {
			out[mt][lib] = len(ids)
		}
	}
	return out
}

func (s *ValidIDStore) flushLocked() error {
	if err := WriteJSON(s.path, s.data); err != nil {
		return fmt.Errorf("persist valid ids: %w", err)
	}
	return nil
}

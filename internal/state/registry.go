package state

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/vmunix/postersync/internal/codec"
)

// Library identifies a remote library.
type Library struct {
	ID    string            `json:"id"`
	Title string            `json:"title"`
	Kind  codec.LibraryKind `json:"kind"`
}

// LibraryEntry is a registry record.
type LibraryEntry struct {
	Title    string            `json:"title"`
	Kind     codec.LibraryKind `json:"kind"`
	LastSeen int64             `json:"last_seen"`
}

type registryDoc map[codec.MediaType]map[string]LibraryEntry

// Registry records which libraries have been seen per media type, so that a
// library that disappears remotely can have its stored ids cleared.
type Registry struct {
	path string
	ids  *ValidIDStore
	now  func() time.Time

	mu   sync.Mutex
	data registryDoc
}

// OpenRegistry loads the registry at path. Stored ids of libraries later
// reported missing are cleared from ids.
func OpenRegistry(path string, ids *ValidIDStore) (*Registry, error) {
	r := &Registry{path: path, ids: ids, now: time.Now, data: make(registryDoc)}
	if err := ReadJSON(path, &r.data); err != nil {
		return nil, err
	}
	if r.data == nil {
		r.data = make(registryDoc)
	}
	return r, nil
}

// RecordLibrariesSeen upserts libraries for mediaType with last-seen = now.
func (r *Registry) RecordLibrariesSeen(libraries []Library, mediaType codec.MediaType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.data[mediaType]
	if entries == nil {
		entries = make(map[string]LibraryEntry)
		r.data[mediaType] = entries
	}

	now := r.now().Unix()
	for _, lib := range libraries {
		entries[lib.ID] = LibraryEntry{Title: lib.Title, Kind: lib.Kind, LastSeen: now}
	}

	if err := WriteJSON(r.path, r.data); err != nil {
		return fmt.Errorf("persist library registry: %w", err)
	}
	return nil
}

// DetectMissingLibraries returns every library recorded for mediaType that is
// absent from current. Each missing library has its stored ids cleared and is
// removed from the registry.
func (r *Registry) DetectMissingLibraries(current []Library, mediaType codec.MediaType) ([]Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	present := lo.SliceToMap(current, func(l Library) (string, struct{}) {
		return l.ID, struct{}{}
	})

	var missing []Library
	for id, entry := range r.data[mediaType] {
		if _, ok := present[id]; ok {
			continue
		}
		missing = append(missing, Library{ID: id, Title: entry.Title, Kind: entry.Kind})
	}
	if len(missing) == 0 {
		return nil, nil
	}
	slices.SortFunc(missing, func(a, b Library) int { return strings.Compare(a.ID, b.ID) })

	for _, lib := range missing {
		if err := r.ids.ClearStoredIDs(mediaType, lib.ID); err != nil {
			return nil, fmt.Errorf("clear ids for vanished library %s: %w", lib.ID, err)
		}
		delete(r.data[mediaType], lib.ID)
	}

	if err := WriteJSON(r.path, r.data); err != nil {
		return nil, fmt.Errorf("persist library registry: %w", err)
	}
	return missing, nil
}

// Entries returns the libraries recorded for mediaType, ordered by id.
func (r *Registry) Entries(mediaType codec.MediaType) []LibraryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]LibraryRecord, 0, len(r.data[mediaType]))
	for id, e := range r.data[mediaType] {
		out = append(out, LibraryRecord{
			Library:  Library{ID: id, Title: e.Title, Kind: e.Kind},
			LastSeen: time.Unix(e.LastSeen, 0),
		})
	}
	slices.SortFunc(out, func(a, b LibraryRecord) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// LibraryRecord is a registry entry with its id.
type LibraryRecord struct {
	Library
	LastSeen time.Time
}

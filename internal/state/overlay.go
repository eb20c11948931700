package state

import (
	"fmt"

	"github.com/vmunix/postersync/internal/codec"
)

// Overlay is the session view of ids gathered during one import run. It is
// authoritative for the run and is flushed to the ValidIDStore wholesale,
// one library at a time, once that library's scan completes. It is plain
// data so that batch callers can persist it between steps.
type Overlay struct {
	IDs map[codec.MediaType]map[string]IDSet `json:"ids"`
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{IDs: make(map[codec.MediaType]map[string]IDSet)}
}

// Add records ids seen for (mediaType, libraryID).
func (o *Overlay) Add(mediaType codec.MediaType, libraryID string, ids ...string) {
	if o.IDs == nil {
		o.IDs = make(map[codec.MediaType]map[string]IDSet)
	}
	libs := o.IDs[mediaType]
	if libs == nil {
		libs = make(map[string]IDSet)
		o.IDs[mediaType] = libs
	}
	set := libs[libraryID]
	if set == nil {
		set = make(IDSet)
		libs[libraryID] = set
	}
	set.Add(ids...)
}

// Library returns the ids gathered for one library.
func (o *Overlay) Library(mediaType codec.MediaType, libraryID string) IDSet {
	return NewIDSet().Union(o.IDs[mediaType][libraryID])
}

// Union returns the ids gathered for mediaType across all libraries.
func (o *Overlay) Union(mediaType codec.MediaType) IDSet {
	out := make(IDSet)
	for _, ids := range o.IDs[mediaType] {
		out.Merge(ids)
	}
	return out
}

// Flush writes the overlay's ids for one library to the store.
func (o *Overlay) Flush(store *ValidIDStore, mediaType codec.MediaType, libraryID string, replace bool) error {
	if err := store.StoreValidIDs(o.Library(mediaType, libraryID), mediaType, libraryID, replace); err != nil {
		return fmt.Errorf("flush %s/%s: %w", mediaType, libraryID, err)
	}
	return nil
}

// Reset drops everything gathered for mediaType.
func (o *Overlay) Reset(mediaType codec.MediaType) {
	delete(o.IDs, mediaType)
}

// Package reconcile compares the posters on disk with the ids seen in the
// latest remote scan and marks the ones that no longer validate as orphaned.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmunix/postersync/internal/codec"
	"github.com/vmunix/postersync/internal/state"
)

// Reasons recorded for each change.
const (
	ReasonIDNotValid                 = "id_not_valid"
	ReasonMissingTimestamp           = "missing_timestamp"
	ReasonCollectionMissingTimestamp = "collection_missing_timestamp"
	ReasonDuplicateRemoved           = "duplicate_removed"
	ReasonDuplicateReencoded         = "duplicate_reencoded"
)

// ValidIDSource supplies the stored ids of every library of a media type.
type ValidIDSource interface {
	AllValidIDs(mediaType codec.MediaType) state.IDSet
}

// Request describes one reconciliation pass over one directory.
type Request struct {
	Dir       string
	MediaType codec.MediaType

	// LibraryKind selects collection files by type marker. Collections only.
	LibraryKind codec.LibraryKind
	LibraryID   string
	LibraryName string

	// ShowTitle restricts a season pass to one show.
	ShowTitle string

	// ImportedIDs are the ids seen by the scan that just completed.
	ImportedIDs state.IDSet

	// SingleLibrary is set when exactly one library was requested.
	SingleLibrary bool
}

// Change is one rename performed (or attempted) by a pass.
type Change struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	Reason  string `json:"reason"`
}

// Result summarizes a pass.
type Result struct {
	Scanned    int      `json:"scanned"`
	OutOfScope int      `json:"out_of_scope"`
	NoID       int      `json:"no_id"`
	Orphaned   int      `json:"orphaned"`
	OldFormat  int      `json:"old_format"`
	Unmarked   int      `json:"unmarked"`
	Details    []Change `json:"details,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// Engine runs reconciliation passes.
type Engine struct {
	ids ValidIDSource
	log *slog.Logger
}

// New creates an engine reading stored ids from ids.
func New(ids ValidIDSource, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		ids: ids,
		log: logger.With("component", "reconcile"),
	}
}

// ShouldProcessFile reports whether filename belongs to the scope of req.
// Files outside the scope belong to another library, library type or show
// and are never touched by the pass.
func ShouldProcessFile(req Request, filename string) bool {
	switch req.MediaType {
	case codec.MediaCollection:
		if req.LibraryKind == codec.KindUnknown {
			return true
		}
		kind, ok := codec.CollectionKind(filename)
		return ok && kind == req.LibraryKind

	case codec.MediaSeason:
		if req.ShowTitle == "" {
			return true
		}
		return codec.HasShowPrefix(filename, req.ShowTitle)

	default:
		if !req.SingleLibrary || req.LibraryName == "" {
			return true
		}
		return codec.MatchesLibrary(filename, req.LibraryName)
	}
}

// attributable reports whether the scope filter pins in-scope files to the
// scanned ids exactly. Seasons carry no library name and collection markers
// are shared by every library of a kind, so those passes fall back to the
// union with the stored ids of all libraries.
func attributable(req Request) bool {
	switch req.MediaType {
	case codec.MediaSeason:
		return req.ShowTitle != ""
	case codec.MediaCollection:
		return false
	default:
		return req.SingleLibrary && req.LibraryName != ""
	}
}

// applicableIDs returns the set a file's id must belong to.
func (e *Engine) applicableIDs(req Request) state.IDSet {
	if attributable(req) {
		return state.NewIDSet().Union(req.ImportedIDs)
	}
	return req.ImportedIDs.Union(e.ids.AllValidIDs(req.MediaType))
}

// classify returns the orphan reason for an in-scope file, or "".
func classify(req Request, filename, id string, valid state.IDSet) string {
	hasTimestamp := codec.HasTimestamp(filename)

	// A single library's collections need a timestamp regardless of id:
	// collection membership across libraries is ambiguous, and only a
	// fresh, fully processed record carries one.
	if req.MediaType == codec.MediaCollection && req.SingleLibrary && !hasTimestamp {
		return ReasonCollectionMissingTimestamp
	}
	if !valid.Has(id) {
		return ReasonIDNotValid
	}
	if !hasTimestamp {
		return ReasonMissingTimestamp
	}
	return ""
}

// Reconcile runs one pass over req.Dir. Filesystem failures on individual
// files are counted in the result and never abort the pass. A missing
// directory yields an empty result.
func (e *Engine) Reconcile(ctx context.Context, req Request) (*Result, error) {
	res := &Result{}

	entries, err := os.ReadDir(req.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.Dir, err)
	}

	valid := e.applicableIDs(req)
	e.log.Debug("reconcile started",
		"dir", req.Dir,
		"media_type", req.MediaType,
		"library_id", req.LibraryID,
		"library_kind", req.LibraryKind,
		"show", req.ShowTitle,
		"single_library", req.SingleLibrary,
		"imported", len(req.ImportedIDs),
		"valid", len(valid))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if codec.IsOrphaned(name) || !codec.HasStatusTag(name, codec.TagCurrent) {
			continue
		}
		res.Scanned++

		if !ShouldProcessFile(req, name) {
			res.OutOfScope++
			continue
		}

		id, ok := codec.ExtractID(name)
		if !ok {
			res.NoID++
			continue
		}

		reason := classify(req, name, id, valid)
		if reason == "" {
			continue
		}

		newName := codec.Orphan(name)
		if err := os.Rename(filepath.Join(req.Dir, name), filepath.Join(req.Dir, newName)); err != nil {
			res.Unmarked++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", name, err))
			e.log.Warn("failed to mark orphaned", "file", name, "error", err)
			continue
		}

		res.Orphaned++
		if reason == ReasonMissingTimestamp {
			res.OldFormat++
		}
		res.Details = append(res.Details, Change{OldName: name, NewName: newName, Reason: reason})
		e.log.Info("marked orphaned", "file", name, "reason", reason, "media_type", req.MediaType)
	}

	e.log.Info("reconcile complete",
		"dir", req.Dir,
		"media_type", req.MediaType,
		"scanned", res.Scanned,
		"orphaned", res.Orphaned,
		"old_format", res.OldFormat,
		"unmarked", res.Unmarked)

	return res, nil
}

package importer

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/vmunix/postersync/internal/codec"
	"github.com/vmunix/postersync/internal/reconcile"
	"github.com/vmunix/postersync/internal/state"
)

const cursorVersion = 1

// JobKind names one pass over a group of libraries.
type JobKind string

const (
	JobMovies           JobKind = "movies"
	JobShows            JobKind = "shows"
	JobMovieCollections JobKind = "movie_collections"
	JobShowCollections  JobKind = "show_collections"
)

// libraryKind returns the kind of library a job enumerates.
func (k JobKind) libraryKind() codec.LibraryKind {
	switch k {
	case JobMovies, JobMovieCollections:
		return codec.KindMovie
	default:
		return codec.KindShow
	}
}

// Options narrows a run.
type Options struct {
	// LibraryIDs restricts the run to these libraries. Exactly one id
	// switches reconciliation to single-library mode.
	LibraryIDs []string `json:"library_ids,omitempty"`

	// ShowTitle restricts the run to one show and its seasons.
	ShowTitle string `json:"show_title,omitempty"`
}

// SingleLibrary reports whether exactly one library was requested.
func (o Options) SingleLibrary() bool {
	return len(o.LibraryIDs) == 1
}

// Full reports whether the run covers every library.
func (o Options) Full() bool {
	return len(o.LibraryIDs) == 0 && o.ShowTitle == ""
}

// partial runs merge into the stored ids instead of replacing them.
func (o Options) partial() bool {
	return o.ShowTitle != ""
}

func (o Options) selects(libraryID string) bool {
	return len(o.LibraryIDs) == 0 || slices.Contains(o.LibraryIDs, libraryID)
}

// Job is one pass of a run.
type Job struct {
	Kind      JobKind         `json:"kind"`
	Libraries []state.Library `json:"libraries"`

	// Missing is set when a library of this job's media types vanished,
	// which forces reconciliation even with no libraries to scan.
	Missing bool `json:"missing,omitempty"`

	// SkipReconcile holds media types whose scan was incomplete.
	SkipReconcile map[codec.MediaType]bool `json:"skip_reconcile,omitempty"`

	// Failed holds, per media type, the libraries whose scan was incomplete.
	// Their ids are merged into the store instead of replacing it.
	Failed map[codec.MediaType][]string `json:"failed,omitempty"`
}

// fail records an incomplete scan of libraryID for mediaType. Other
// libraries of the job are unaffected, but reconciliation of mediaType is
// skipped for the run.
func (j *Job) fail(mediaType codec.MediaType, libraryID string) {
	if j.SkipReconcile == nil {
		j.SkipReconcile = make(map[codec.MediaType]bool)
	}
	j.SkipReconcile[mediaType] = true

	if j.Failed == nil {
		j.Failed = make(map[codec.MediaType][]string)
	}
	if !slices.Contains(j.Failed[mediaType], libraryID) {
		j.Failed[mediaType] = append(j.Failed[mediaType], libraryID)
	}
}

func (j *Job) failed(mediaType codec.MediaType, libraryID string) bool {
	return slices.Contains(j.Failed[mediaType], libraryID)
}

// Change is one file operation, tagged with its media type.
type Change struct {
	MediaType codec.MediaType `json:"media_type"`
	reconcile.Change
}

// Totals accumulates counts over a run.
type Totals struct {
	Items      int `json:"items"`
	Created    int `json:"created"`
	Renamed    int `json:"renamed"`
	Updated    int `json:"updated"`
	Unchanged  int `json:"unchanged"`
	Malformed  int `json:"malformed"`
	NoPoster   int `json:"no_poster"`
	Failed     int `json:"failed"`
	Duplicates int `json:"duplicates_removed"`
	Orphaned   int `json:"orphaned"`
	OldFormat  int `json:"old_format"`
	Unmarked   int `json:"unmarked"`

	MissingLibraries []state.Library `json:"missing_libraries,omitempty"`
	Changes          []Change        `json:"changes,omitempty"`
	Errors           []string        `json:"errors,omitempty"`
}

func (t *Totals) addError(format string, args ...any) {
	t.Errors = append(t.Errors, fmt.Sprintf(format, args...))
}

func (t *Totals) addChange(mediaType codec.MediaType, c reconcile.Change) {
	t.Changes = append(t.Changes, Change{MediaType: mediaType, Change: c})
}

// Cursor is the complete state of a run between steps. It is plain data so
// a batch driver can persist it between invocations.
type Cursor struct {
	Version      int            `json:"version"`
	StartedAt    int64          `json:"started_at"`
	Options      Options        `json:"options"`
	Jobs         []Job          `json:"jobs"`
	JobIndex     int            `json:"job_index"`
	LibraryIndex int            `json:"library_index"`
	Offset       int            `json:"offset"`
	Overlay      *state.Overlay `json:"overlay"`
	Totals       Totals         `json:"totals"`
	Done         bool           `json:"done"`

	// RunID is an opaque reference owned by the batch driver.
	RunID int64 `json:"run_id,omitempty"`
}

// StepResult reports the progress made by one Step.
type StepResult struct {
	Job         JobKind `json:"job"`
	LibraryID   string  `json:"library_id,omitempty"`
	Items       int     `json:"items"`
	NextOffset  int     `json:"next_offset"`
	LibraryDone bool    `json:"library_done"`
	JobDone     bool    `json:"job_done"`
	Done        bool    `json:"done"`
	Totals      Totals  `json:"totals"`
}

// LoadCursor reads a cursor written by SaveCursor. It returns nil when no
// cursor exists at path.
func LoadCursor(path string) (*Cursor, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	var c Cursor
	if err := state.ReadJSON(path, &c); err != nil {
		return nil, err
	}
	if c.Version != cursorVersion {
		return nil, fmt.Errorf("%w: cursor version %d", state.ErrCorruptDocument, c.Version)
	}
	if c.Overlay == nil {
		c.Overlay = state.NewOverlay()
	}
	return &c, nil
}

// SaveCursor persists c atomically.
func SaveCursor(path string, c *Cursor) error {
	return state.WriteJSON(path, c)
}

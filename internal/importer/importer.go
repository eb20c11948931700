// Package importer downloads posters from the media server into the poster
// directories, keeps their filenames current and drives reconciliation once
// each group of libraries has been scanned.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/vmunix/postersync/internal/codec"
	"github.com/vmunix/postersync/internal/plex"
	"github.com/vmunix/postersync/internal/reconcile"
	"github.com/vmunix/postersync/internal/state"
)

// DefaultPageSize is used when Config.PageSize is zero.
const DefaultPageSize = 50

// ReasonReencoded is recorded when a poster is renamed to its current
// canonical name.
const ReasonReencoded = "reencoded"

// Config for the importer.
type Config struct {
	Dirs             Dirs
	Movies           bool
	Shows            bool
	Seasons          bool
	Collections      bool
	ExcludeLibraries []string
	PageSize         int

	// RefreshExisting re-downloads posters whose name is already current
	// and rewrites them when the bytes differ.
	RefreshExisting bool
}

// Importer orchestrates poster import runs.
type Importer struct {
	server   MediaServer
	ids      *state.ValidIDStore
	registry *state.Registry
	engine   *reconcile.Engine
	cfg      Config
	policies map[codec.MediaType]policy
	now      func() time.Time
	log      *slog.Logger
}

// New creates a new importer.
func New(server MediaServer, ids *state.ValidIDStore, registry *state.Registry, cfg Config, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Importer{
		server:   server,
		ids:      ids,
		registry: registry,
		engine:   reconcile.New(ids, log),
		cfg:      cfg,
		policies: cfg.Dirs.policies(),
		now:      time.Now,
		log:      log.With("component", "importer"),
	}
}

// Run executes a complete run in one call.
func (i *Importer) Run(ctx context.Context, opts Options) (*Totals, error) {
	c, err := i.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	for !c.Done {
		if _, err := i.Step(ctx, c); err != nil {
			return &c.Totals, err
		}
	}
	return &c.Totals, nil
}

// Begin lists the libraries, clears the stored ids of libraries that
// vanished since the last run and returns a cursor positioned at the first
// job. A failure to list libraries aborts the run.
func (i *Importer) Begin(ctx context.Context, opts Options) (*Cursor, error) {
	sections, err := i.server.GetSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}

	all := make([]state.Library, 0, len(sections))
	for _, s := range sections {
		kind := libraryKind(s.Type)
		if kind == codec.KindUnknown {
			continue
		}
		all = append(all, state.Library{ID: s.Key, Title: s.Title, Kind: kind})
	}

	c := &Cursor{
		Version:   cursorVersion,
		StartedAt: i.now().Unix(),
		Options:   opts,
		Overlay:   state.NewOverlay(),
	}

	// Excluded libraries still exist remotely, so vanish detection sees
	// the full listing.
	missing := make(map[codec.MediaType]bool)
	for _, mt := range i.enabledMediaTypes() {
		current := all
		if mt != codec.MediaCollection {
			current = librariesOfKind(all, kindOf(mt))
		}
		gone, err := i.registry.DetectMissingLibraries(current, mt)
		if err != nil {
			return nil, fmt.Errorf("detect missing libraries: %w", err)
		}
		for _, lib := range gone {
			i.log.Warn("library vanished, stored ids cleared",
				"library_id", lib.ID, "library", lib.Title, "media_type", mt)
		}
		if len(gone) > 0 {
			missing[mt] = true
			c.Totals.MissingLibraries = append(c.Totals.MissingLibraries, gone...)
		}
	}

	selected := lo.Filter(all, func(l state.Library, _ int) bool {
		return opts.selects(l.ID) && !i.excluded(l)
	})

	for _, kind := range i.jobKinds(opts) {
		job := Job{Kind: kind, Libraries: librariesOfKind(selected, kind.libraryKind())}
		for _, mt := range i.jobMediaTypes(kind) {
			job.Missing = job.Missing || missing[mt]
		}
		c.Jobs = append(c.Jobs, job)
	}
	c.Done = len(c.Jobs) == 0

	i.log.Info("run started",
		"jobs", len(c.Jobs),
		"libraries", len(selected),
		"single_library", opts.SingleLibrary(),
		"show", opts.ShowTitle)
	return c, nil
}

// Step scans one page of one library. When the page completes a library its
// ids are flushed to the store; when it completes the last library of a job
// the job's directories are reconciled. Remote failures are recorded in the
// totals and never returned; the returned error is fatal to the run.
func (i *Importer) Step(ctx context.Context, c *Cursor) (*StepResult, error) {
	if c.Done {
		return nil, ErrCursorDone
	}
	if c.Overlay == nil {
		c.Overlay = state.NewOverlay()
	}

	job := &c.Jobs[c.JobIndex]
	res := &StepResult{Job: job.Kind}

	libraryDone := true
	if c.LibraryIndex < len(job.Libraries) {
		lib := job.Libraries[c.LibraryIndex]
		res.LibraryID = lib.ID

		n, done, err := i.scanPage(ctx, c, job, lib)
		if err != nil {
			return nil, err
		}
		res.Items = n
		libraryDone = done
	}

	if libraryDone {
		c.LibraryIndex++
		c.Offset = 0
	}
	res.NextOffset = c.Offset
	res.LibraryDone = libraryDone

	if c.LibraryIndex >= len(job.Libraries) {
		if err := i.finishJob(ctx, c, job); err != nil {
			return nil, err
		}
		res.JobDone = true
		c.JobIndex++
		c.LibraryIndex = 0
		c.Offset = 0
		c.Done = c.JobIndex >= len(c.Jobs)
	}

	res.Done = c.Done
	res.Totals = c.Totals
	if c.Done {
		i.log.Info("run complete",
			"items", c.Totals.Items,
			"created", c.Totals.Created,
			"renamed", c.Totals.Renamed,
			"updated", c.Totals.Updated,
			"orphaned", c.Totals.Orphaned,
			"errors", len(c.Totals.Errors))
	}
	return res, nil
}

// scanPage imports one page of lib and reports whether the library is done.
func (i *Importer) scanPage(ctx context.Context, c *Cursor, job *Job, lib state.Library) (int, bool, error) {
	mediaTypes := i.jobMediaTypes(job.Kind)
	replace := !c.Options.partial()

	if c.Offset == 0 && replace {
		for _, mt := range mediaTypes {
			if err := i.ids.ClearStoredIDs(mt, lib.ID); err != nil {
				return 0, false, err
			}
		}
	}

	page, err := i.fetchPage(ctx, job.Kind, lib.ID, c.Offset)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		i.log.Error("page fetch failed, library abandoned",
			"library_id", lib.ID, "library", lib.Title, "offset", c.Offset, "error", err)
		c.Totals.addError("library %s offset %d: %v", lib.Title, c.Offset, err)
		for _, mt := range mediaTypes {
			job.fail(mt, lib.ID)
		}
		if err := i.flushLibrary(c, job, lib, mediaTypes, replace); err != nil {
			return 0, false, err
		}
		return 0, true, nil
	}

	indexes := make(map[codec.MediaType]*dirIndex)
	for _, mt := range mediaTypes {
		idx, err := indexDir(i.cfg.Dirs.For(mt))
		if err != nil {
			return 0, false, err
		}
		indexes[mt] = idx
	}

	for _, item := range page.Items {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		i.importItem(ctx, c, job, lib, item, indexes)
	}

	c.Offset += len(page.Items)
	done := len(page.Items) == 0 || c.Offset >= page.TotalSize

	i.log.Debug("page imported",
		"job", job.Kind,
		"library_id", lib.ID,
		"items", len(page.Items),
		"offset", c.Offset,
		"total", page.TotalSize)

	if done {
		if err := i.flushLibrary(c, job, lib, mediaTypes, replace); err != nil {
			return 0, false, err
		}
	}
	return len(page.Items), done, nil
}

// flushLibrary writes the ids imported from lib to the store. A library
// whose scan failed only has its partial ids merged; every other library
// replaces its stored set.
func (i *Importer) flushLibrary(c *Cursor, job *Job, lib state.Library, mediaTypes []codec.MediaType, replace bool) error {
	for _, mt := range mediaTypes {
		if err := c.Overlay.Flush(i.ids, mt, lib.ID, replace && !job.failed(mt, lib.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (i *Importer) fetchPage(ctx context.Context, kind JobKind, sectionKey string, offset int) (*plex.Page, error) {
	switch kind {
	case JobMovieCollections, JobShowCollections:
		return i.server.ListCollections(ctx, sectionKey, offset, i.cfg.PageSize)
	default:
		return i.server.ListItems(ctx, sectionKey, offset, i.cfg.PageSize)
	}
}

// importItem imports one listed item, plus a show's seasons.
func (i *Importer) importItem(ctx context.Context, c *Cursor, job *Job, lib state.Library, item plex.Item, indexes map[codec.MediaType]*dirIndex) {
	switch job.Kind {
	case JobMovies:
		i.syncItem(ctx, c, i.policies[codec.MediaMovie], lib, item, indexes[codec.MediaMovie])

	case JobShows:
		if c.Options.ShowTitle != "" && !sameTitle(item.Title, c.Options.ShowTitle) {
			return
		}
		if i.cfg.Shows {
			i.syncItem(ctx, c, i.policies[codec.MediaShow], lib, item, indexes[codec.MediaShow])
		}
		if i.cfg.Seasons {
			i.importSeasons(ctx, c, job, lib, item, indexes[codec.MediaSeason])
		}

	default:
		i.syncItem(ctx, c, i.policies[codec.MediaCollection], lib, item, indexes[codec.MediaCollection])
	}
}

func (i *Importer) importSeasons(ctx context.Context, c *Cursor, job *Job, lib state.Library, show plex.Item, idx *dirIndex) {
	seasons, err := i.server.ListChildren(ctx, show.RatingKey)
	if err != nil {
		i.log.Error("season listing failed", "show", show.Title, "rating_key", show.RatingKey, "error", err)
		c.Totals.addError("seasons of %s: %v", show.Title, err)
		job.fail(codec.MediaSeason, lib.ID)
		return
	}

	for _, season := range seasons {
		if season.Type != "" && season.Type != "season" {
			continue
		}
		season.ParentTitle = show.Title
		i.syncItem(ctx, c, i.policies[codec.MediaSeason], lib, season, idx)
	}
}

// syncItem finds or creates the poster of one item. Every failure is local
// to the item and counted in the totals.
func (i *Importer) syncItem(ctx context.Context, c *Cursor, p policy, lib state.Library, item plex.Item, idx *dirIndex) {
	c.Totals.Items++

	addedAt := item.AddedAt
	if addedAt <= 0 {
		addedAt = knownAddedAt(idx.byID[item.RatingKey], c.StartedAt)
	}
	name := p.name(item, lib, addedAt)

	want, err := codec.Encode(name)
	if err != nil {
		c.Totals.Malformed++
		i.log.Warn("skipping item", "media_type", p.mediaType, "rating_key", item.RatingKey,
			"title", item.Title, "error", fmt.Errorf("%w: %w", ErrMalformedItem, err))
		return
	}
	c.Overlay.Add(p.mediaType, lib.ID, name.ID)

	existing := idx.byID[name.ID]
	if len(existing) > 1 {
		existing = i.dropDuplicates(c, p.mediaType, idx, existing)
	}

	switch {
	case len(existing) == 0:
		if i.download(ctx, c, p, item, idx.path(want), false) {
			c.Totals.Created++
			idx.set(name.ID, want)
		}

	case existing[0] == want:
		if i.cfg.RefreshExisting && i.download(ctx, c, p, item, idx.path(want), true) {
			c.Totals.Updated++
		} else {
			c.Totals.Unchanged++
		}

	default:
		old := existing[0]
		if err := os.Rename(idx.path(old), idx.path(want)); err != nil {
			c.Totals.Failed++
			c.Totals.addError("rename %s: %v", old, err)
			i.log.Warn("rename failed", "old_name", old, "new_name", want, "error", err)
			return
		}
		idx.set(name.ID, want)
		c.Totals.Renamed++
		c.Totals.addChange(p.mediaType, reconcile.Change{OldName: old, NewName: want, Reason: ReasonReencoded})
		i.log.Info("poster renamed", "media_type", p.mediaType, "old_name", old, "new_name", want)

		if (reconcile.NeedsRefresh(old) || i.cfg.RefreshExisting) && i.download(ctx, c, p, item, idx.path(want), true) {
			c.Totals.Updated++
		}
	}
}

// knownAddedAt returns the timestamp already carried by one of names, so an
// item the server reports without addedAt keeps a stable filename. New
// files get fallback.
func knownAddedAt(names []string, fallback int64) int64 {
	for _, n := range names {
		if ts, ok := codec.Timestamp(n); ok {
			return ts
		}
	}
	return fallback
}

// dropDuplicates keeps the best of several files sharing one id.
func (i *Importer) dropDuplicates(c *Cursor, mediaType codec.MediaType, idx *dirIndex, names []string) []string {
	keep, drop := reconcile.PickBest(names)
	for _, name := range drop {
		if err := os.Remove(idx.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.Totals.Failed++
			c.Totals.addError("remove duplicate %s: %v", name, err)
			continue
		}
		c.Totals.Duplicates++
		c.Totals.addChange(mediaType, reconcile.Change{OldName: name, Reason: reconcile.ReasonDuplicateRemoved})
		i.log.Info("duplicate removed", "media_type", mediaType, "file", name, "kept", keep)
	}
	return []string{keep}
}

// download fetches the item's poster into path. With onlyIfChanged, an
// existing file holding the same bytes is left alone and false returned.
func (i *Importer) download(ctx context.Context, c *Cursor, p policy, item plex.Item, path string, onlyIfChanged bool) bool {
	if item.Thumb == "" {
		c.Totals.NoPoster++
		i.log.Debug("no poster", "media_type", p.mediaType, "rating_key", item.RatingKey, "error", ErrNoPoster)
		return false
	}

	data, err := i.server.FetchImage(ctx, item.Thumb)
	if err != nil {
		c.Totals.Failed++
		c.Totals.addError("download %s %s: %v", p.mediaType, item.RatingKey, err)
		i.log.Warn("poster download failed", "media_type", p.mediaType, "rating_key", item.RatingKey, "error", err)
		return false
	}
	if onlyIfChanged && sameContent(path, data) {
		return false
	}
	if err := writePoster(path, data); err != nil {
		c.Totals.Failed++
		c.Totals.addError("write %s: %v", path, err)
		i.log.Warn("poster write failed", "path", path, "error", err)
		return false
	}

	i.log.Debug("poster written", "media_type", p.mediaType, "path", path, "size", humanize.Bytes(uint64(len(data))))
	return true
}

// finishJob reconciles the directories of a job once all of its libraries
// have been scanned.
func (i *Importer) finishJob(ctx context.Context, c *Cursor, job *Job) error {
	if len(job.Libraries) == 0 && !job.Missing {
		return nil
	}

	single := c.Options.SingleLibrary() && len(job.Libraries) == 1
	for _, mt := range i.reconcileMediaTypes(c.Options, job.Kind) {
		if job.SkipReconcile[mt] {
			i.log.Warn("reconcile skipped after incomplete scan", "job", job.Kind, "media_type", mt)
			continue
		}
		dir := i.cfg.Dirs.For(mt)

		cleanup, err := i.engine.CleanupDuplicates(ctx, dir, mt, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Totals.addError("cleanup %s: %v", mt, err)
			continue
		}
		c.Totals.Duplicates += cleanup.Deleted
		c.Totals.Failed += cleanup.Failed
		c.Totals.Errors = append(c.Totals.Errors, cleanup.Errors...)
		for _, ch := range cleanup.Details {
			c.Totals.addChange(mt, ch)
		}

		req := reconcile.Request{
			Dir:           dir,
			MediaType:     mt,
			ImportedIDs:   c.Overlay.Union(mt),
			SingleLibrary: single,
		}
		if single {
			req.LibraryID = job.Libraries[0].ID
			req.LibraryName = job.Libraries[0].Title
		}
		switch mt {
		case codec.MediaCollection:
			req.LibraryKind = job.Kind.libraryKind()
		case codec.MediaSeason:
			req.ShowTitle = c.Options.ShowTitle
		}

		result, err := i.engine.Reconcile(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Totals.addError("reconcile %s: %v", mt, err)
			continue
		}
		c.Totals.Orphaned += result.Orphaned
		c.Totals.OldFormat += result.OldFormat
		c.Totals.Unmarked += result.Unmarked
		c.Totals.Errors = append(c.Totals.Errors, result.Errors...)
		for _, ch := range result.Details {
			c.Totals.addChange(mt, ch)
		}

		if err := i.registry.RecordLibrariesSeen(job.Libraries, mt); err != nil {
			return err
		}
	}
	return nil
}

// enabledMediaTypes lists the media types turned on in the config.
func (i *Importer) enabledMediaTypes() []codec.MediaType {
	enabled := map[codec.MediaType]bool{
		codec.MediaMovie:      i.cfg.Movies,
		codec.MediaShow:       i.cfg.Shows,
		codec.MediaSeason:     i.cfg.Seasons,
		codec.MediaCollection: i.cfg.Collections,
	}
	return lo.Filter(codec.AllMediaTypes, func(mt codec.MediaType, _ int) bool { return enabled[mt] })
}

func (i *Importer) jobKinds(opts Options) []JobKind {
	var kinds []JobKind
	if opts.ShowTitle != "" {
		if i.cfg.Shows || i.cfg.Seasons {
			kinds = append(kinds, JobShows)
		}
		return kinds
	}
	if i.cfg.Movies {
		kinds = append(kinds, JobMovies)
	}
	if i.cfg.Shows || i.cfg.Seasons {
		kinds = append(kinds, JobShows)
	}
	if i.cfg.Collections {
		kinds = append(kinds, JobMovieCollections, JobShowCollections)
	}
	return kinds
}

// jobMediaTypes lists the media types whose ids a job gathers.
func (i *Importer) jobMediaTypes(kind JobKind) []codec.MediaType {
	switch kind {
	case JobMovies:
		return []codec.MediaType{codec.MediaMovie}
	case JobShows:
		var out []codec.MediaType
		if i.cfg.Shows {
			out = append(out, codec.MediaShow)
		}
		if i.cfg.Seasons {
			out = append(out, codec.MediaSeason)
		}
		return out
	default:
		return []codec.MediaType{codec.MediaCollection}
	}
}

// reconcileMediaTypes lists the directories a job reconciles. A one-show
// run never sees the other shows, so the show directory is left alone.
func (i *Importer) reconcileMediaTypes(opts Options, kind JobKind) []codec.MediaType {
	types := i.jobMediaTypes(kind)
	if kind == JobShows && opts.ShowTitle != "" {
		types = lo.Without(types, codec.MediaShow)
	}
	return types
}

func (i *Importer) excluded(lib state.Library) bool {
	return lo.ContainsBy(i.cfg.ExcludeLibraries, func(name string) bool {
		return strings.EqualFold(strings.TrimSpace(name), lib.Title)
	})
}

func kindOf(mediaType codec.MediaType) codec.LibraryKind {
	if mediaType == codec.MediaMovie {
		return codec.KindMovie
	}
	return codec.KindShow
}

func librariesOfKind(libs []state.Library, kind codec.LibraryKind) []state.Library {
	return lo.Filter(libs, func(l state.Library, _ int) bool { return l.Kind == kind })
}

func sameTitle(a, b string) bool {
	return strings.EqualFold(codec.Sanitize(a), codec.Sanitize(b))
}

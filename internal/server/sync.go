package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/vmunix/postersync/internal/history"
	"github.com/vmunix/postersync/internal/importer"
	"github.com/vmunix/postersync/internal/lock"
	"github.com/vmunix/postersync/internal/state"
)

// Config for sync runs.
type Config struct {
	Paths          state.Paths
	Interval       time.Duration
	LockStaleAfter time.Duration
}

// Syncer runs the importer under the process lock and records every run in
// the history store.
type Syncer struct {
	importer *importer.Importer
	history  *history.Store
	cfg      Config
	now      func() time.Time
	log      *slog.Logger
}

// Outcome describes a finished or skipped sync.
type Outcome struct {
	Run     *history.Run
	Totals  *importer.Totals
	Skipped bool
}

// NewSyncer creates a new syncer.
func NewSyncer(imp *importer.Importer, hist *history.Store, cfg Config, log *slog.Logger) (*Syncer, error) {
	if hist == nil {
		return nil, ErrNoHistory
	}
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{
		importer: imp,
		history:  hist,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With("component", "sync"),
	}, nil
}

// Due reports whether the interval has elapsed since the last full run. It
// also returns the last run time, zero when none is recorded.
func (s *Syncer) Due() (bool, time.Time, error) {
	last, ok, err := state.ReadLastRun(s.cfg.Paths.LastRun())
	if err != nil {
		return false, time.Time{}, err
	}
	if !ok {
		return true, time.Time{}, nil
	}
	return s.now().Sub(last) >= s.cfg.Interval, last, nil
}

// Sync performs a complete run. A run already holding a fresh lock makes
// this one a skipped no-op, which is not an error.
func (s *Syncer) Sync(ctx context.Context, trigger string, opts importer.Options) (*Outcome, error) {
	l, err := s.acquire()
	if errors.Is(err, lock.ErrLocked) {
		return s.skip(trigger, err)
	}
	if err != nil {
		return nil, err
	}
	defer s.release(l)

	run := &history.Run{Trigger: trigger}
	if err := s.history.StartRun(run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	s.log.Info("sync started", "run_id", run.ID, "trigger", trigger, "full", opts.Full())

	totals, runErr := s.importer.Run(ctx, opts)
	return s.finish(run, totals, opts, runErr)
}

// Step advances the batch run persisted at cursorPath by one page, starting
// a new run when no cursor exists. The cursor file is removed once the run
// is done. Unlike Sync, a held lock is returned as an error so the driver
// can retry the same step.
func (s *Syncer) Step(ctx context.Context, cursorPath string, opts importer.Options) (*importer.StepResult, error) {
	l, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer s.release(l)

	c, err := importer.LoadCursor(cursorPath)
	if err != nil {
		return nil, fmt.Errorf("load cursor: %w", err)
	}

	var run *history.Run
	if c == nil {
		run = &history.Run{Trigger: history.TriggerBatch}
		if err := s.history.StartRun(run); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
		if c, err = s.importer.Begin(ctx, opts); err != nil {
			_, _ = s.finish(run, nil, opts, err)
			return nil, err
		}
		c.RunID = run.ID
		s.log.Info("batch started", "run_id", run.ID, "jobs", len(c.Jobs))
	} else {
		run = s.batchRun(c.RunID)
	}

	res, stepErr := s.importer.Step(ctx, c)
	if stepErr != nil {
		_, _ = s.finish(run, &c.Totals, c.Options, stepErr)
		s.removeCursor(cursorPath)
		return nil, stepErr
	}

	if !c.Done {
		if err := importer.SaveCursor(cursorPath, c); err != nil {
			return nil, fmt.Errorf("save cursor: %w", err)
		}
		return res, nil
	}

	s.removeCursor(cursorPath)
	if _, err := s.finish(run, &c.Totals, c.Options, nil); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Syncer) batchRun(id int64) *history.Run {
	run, err := s.history.GetRun(id)
	if err != nil {
		s.log.Warn("batch run not found in history", "run_id", id, "error", err)
		return &history.Run{ID: id, Trigger: history.TriggerBatch}
	}
	return run
}

func (s *Syncer) acquire() (*lock.Lock, error) {
	return lock.Acquire(s.cfg.Paths.Lock(), s.cfg.LockStaleAfter, s.now())
}

func (s *Syncer) release(l *lock.Lock) {
	if err := l.Release(); err != nil {
		s.log.Error("release lock failed", "error", err)
	}
}

func (s *Syncer) removeCursor(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("remove cursor failed", "path", path, "error", err)
	}
}

func (s *Syncer) skip(trigger string, cause error) (*Outcome, error) {
	s.log.Info("another run is active, skipping", "trigger", trigger, "reason", cause.Error())

	run := &history.Run{Trigger: trigger}
	if err := s.history.StartRun(run); err != nil {
		s.log.Warn("record skipped run failed", "error", err)
		return &Outcome{Skipped: true}, nil
	}
	run.Status = history.StatusSkipped
	run.Message = cause.Error()
	if err := s.history.FinishRun(run); err != nil {
		s.log.Warn("record skipped run failed", "run_id", run.ID, "error", err)
	}
	return &Outcome{Run: run, Skipped: true}, nil
}

// finish records the totals and status of run. The last-run marker is only
// advanced by successful full runs.
func (s *Syncer) finish(run *history.Run, totals *importer.Totals, opts importer.Options, runErr error) (*Outcome, error) {
	if totals != nil {
		run.Items = totals.Items
		run.Created = totals.Created
		run.Renamed = totals.Renamed
		run.Updated = totals.Updated
		run.Orphaned = totals.Orphaned
		run.Errors = len(totals.Errors)
		if len(totals.Errors) > 0 {
			run.Message = totals.Errors[0]
		}
		if err := s.history.AddChanges(run.ID, historyChanges(run.ID, totals.Changes)); err != nil {
			s.log.Error("record changes failed", "run_id", run.ID, "error", err)
		}
	}

	run.Status = history.StatusCompleted
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Message = runErr.Error()
	}
	if err := s.history.FinishRun(run); err != nil {
		s.log.Error("record run result failed", "run_id", run.ID, "error", err)
	}

	out := &Outcome{Run: run, Totals: totals}
	if runErr != nil {
		s.log.Error("sync failed", "run_id", run.ID, "error", runErr)
		return out, runErr
	}

	if opts.Full() {
		if err := state.WriteLastRun(s.cfg.Paths.LastRun(), s.now()); err != nil {
			return out, err
		}
	}
	s.log.Info("sync finished",
		"run_id", run.ID,
		"status", run.Status,
		"items", run.Items,
		"orphaned", run.Orphaned,
		"errors", run.Errors,
		"duration_ms", run.Duration().Milliseconds())
	return out, nil
}

func historyChanges(runID int64, changes []importer.Change) []history.Change {
	return lo.Map(changes, func(c importer.Change, _ int) history.Change {
		return history.Change{
			RunID:     runID,
			MediaType: string(c.MediaType),
			OldName:   c.OldName,
			NewName:   c.NewName,
			Reason:    c.Reason,
		}
	})
}

// Package server runs sync jobs: one-off runs under the process lock and the
// long-running scheduler used by serve mode.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/errgroup"
)

// JobFunc is the work the runner schedules.
type JobFunc func(ctx context.Context) error

// RunnerConfig for the scheduler.
type RunnerConfig struct {
	Interval time.Duration
	// StartImmediately runs the job once as soon as the scheduler starts.
	StartImmediately bool
}

// Runner invokes a job on a fixed interval, never overlapping itself.
type Runner struct {
	job    JobFunc
	config RunnerConfig
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(job JobFunc, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		job:    job,
		config: cfg,
		logger: logger.With("component", "runner"),
	}
}

// Run starts the scheduler. It blocks until the context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	if r.config.Interval <= 0 {
		return fmt.Errorf("invalid interval %s", r.config.Interval)
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLogger(r.logger))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	opts := []gocron.JobOption{
		gocron.WithName("sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if r.config.StartImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	job, err := scheduler.NewJob(
		gocron.DurationJob(r.config.Interval),
		gocron.NewTask(func(jobCtx context.Context) {
			start := time.Now()
			if err := r.job(jobCtx); err != nil {
				r.logger.Error("scheduled sync failed", "error", err)
				return
			}
			r.logger.Debug("scheduled sync done", "duration_ms", time.Since(start).Milliseconds())
		}),
		opts...,
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("schedule job: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start()
		if next, err := job.NextRun(); err == nil {
			r.logger.Info("scheduler started", "interval", r.config.Interval.String(), "next_run", next.Format(time.RFC3339))
		}

		<-ctx.Done()
		r.logger.Info("scheduler stopping")
		if err := scheduler.Shutdown(); err != nil {
			return fmt.Errorf("shutdown scheduler: %w", err)
		}
		return ctx.Err()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

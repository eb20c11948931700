package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vmunix/postersync/internal/history"
	"github.com/vmunix/postersync/internal/importer"
	"github.com/vmunix/postersync/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run syncs on the configured interval until stopped",
	Long: `Stay in the foreground and run a full sync every schedule.interval.

The first sync starts immediately when the last full run is older than the
interval. Runs never overlap, and a run held by another process is skipped.
Stop with SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServeCmd,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	due, _, err := a.syncer.Due()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := func(ctx context.Context) error {
		_, err := a.syncer.Sync(ctx, history.TriggerServe, importer.Options{})
		return err
	}

	a.log.Info("serve starting",
		"interval", a.interval.String(),
		"state_dir", a.paths.Dir,
		"posters", a.cfg.Posters.Root,
		"start_immediately", due)

	runner := server.NewRunner(job, server.RunnerConfig{
		Interval:         a.interval,
		StartImmediately: due,
	}, a.log)
	return runner.Run(ctx)
}

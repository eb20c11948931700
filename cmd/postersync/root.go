package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vmunix/postersync/internal/history"
	"github.com/vmunix/postersync/internal/importer"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
	forceRun   bool
)

var rootCmd = &cobra.Command{
	Use:   "postersync",
	Short: "Sync Plex posters into local poster directories",
	Long: `postersync - keep a local mirror of Plex posters

Without a subcommand, postersync performs a scheduled sync: it runs a full
import only when the configured interval has elapsed since the last full
run, and exits quietly otherwise. Suitable for cron.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScheduled,
}

// Execute runs the root command and exits 1 on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.Flags().BoolVarP(&forceRun, "force", "f", false, "Run even if the interval has not elapsed")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("postersync {{.Version}}\n")
}

func runScheduled(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !forceRun {
		due, last, err := a.syncer.Due()
		if err != nil {
			return err
		}
		if !due {
			next := last.Add(a.interval)
			a.log.Info("interval not elapsed, skipping",
				"last_run", last.Format(time.RFC3339),
				"next_run", next.Format(time.RFC3339))
			if !jsonOutput {
				fmt.Printf("Last run %s; next run due %s.\n", humanize.Time(last), humanize.Time(next))
			}
			return nil
		}
	}

	out, err := a.syncer.Sync(cmd.Context(), history.TriggerScheduled, importer.Options{})
	if err != nil {
		return err
	}
	printOutcome(out)
	return nil
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

package main

import (
	"github.com/spf13/cobra"
	"github.com/vmunix/postersync/internal/history"
	"github.com/vmunix/postersync/internal/importer"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a sync now",
	Long: `Run a sync immediately, ignoring the schedule.

With --library, only the given library ids are imported; a single id also
limits reconciliation to that library's posters. With --show, only that
show and its seasons are imported.

Examples:
  postersync run                     # Full sync
  postersync run --library 1         # Only library 1
  postersync run --show "The Expanse"`,
	Args: cobra.NoArgs,
	RunE: runRunCmd,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringSlice("library", nil, "Library id to sync (repeatable)")
	runCmd.Flags().String("show", "", "Only sync this show and its seasons")
}

func runOptions(cmd *cobra.Command) importer.Options {
	libs, _ := cmd.Flags().GetStringSlice("library")
	show, _ := cmd.Flags().GetString("show")
	return importer.Options{LibraryIDs: libs, ShowTitle: show}
}

func runRunCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.syncer.Sync(cmd.Context(), history.TriggerManual, runOptions(cmd))
	if err != nil {
		return err
	}
	printOutcome(out)
	return nil
}

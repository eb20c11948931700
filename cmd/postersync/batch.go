package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Advance a resumable run by one page",
	Long: `Run one step of a batched sync: one page of one library.

The run's progress lives in the cursor file. The first call creates it and
later calls resume from it; it is removed when the run completes. Drivers
call batch repeatedly until the result reports done.

Examples:
  postersync batch --json
  postersync batch --cursor /tmp/run.json --library 2`,
	Args: cobra.NoArgs,
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().String("cursor", "", "Cursor file (default: <state.dir>/cursor.json)")
	batchCmd.Flags().StringSlice("library", nil, "Library id to sync (repeatable, new runs only)")
	batchCmd.Flags().String("show", "", "Only sync this show and its seasons (new runs only)")
}

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cursor, _ := cmd.Flags().GetString("cursor")
	if cursor == "" {
		cursor = a.paths.Cursor()
	}

	res, err := a.syncer.Step(cmd.Context(), cursor, runOptions(cmd))
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(res)
		return nil
	}

	fmt.Printf("Job %s, library %s: %d items (next offset %d)\n", res.Job, res.LibraryID, res.Items, res.NextOffset)
	switch {
	case res.Done:
		fmt.Println("Run complete.")
		printTotals(cmd.OutOrStdout(), &res.Totals)
	case res.JobDone:
		fmt.Println("Job complete; more jobs remain.")
	case res.LibraryDone:
		fmt.Println("Library complete; more libraries remain.")
	}
	return nil
}

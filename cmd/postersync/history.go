package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vmunix/postersync/internal/config"
	"github.com/vmunix/postersync/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past runs, or the changes made by one run",
	Long: `List recent sync runs. With a run id, list the poster files that run
renamed, orphaned or removed.

Examples:
  postersync history
  postersync history --status failed
  postersync history 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistoryCmd,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than a cutoff",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPruneCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)
	historyCmd.Flags().Int("limit", 20, "Maximum runs to list")
	historyCmd.Flags().String("status", "", "Filter by status (running, completed, failed, skipped)")
	historyCmd.Flags().String("trigger", "", "Filter by trigger (scheduled, manual, batch, serve)")
	historyPruneCmd.Flags().String("older-than", "90d", "Age cutoff as <N><unit>, unit m, h, d or w")
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id: %s", args[0])
		}
		return showRun(a.history, id)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	filter := history.RunFilter{Limit: limit}
	if s, _ := cmd.Flags().GetString("status"); s != "" {
		filter.Status = &s
	}
	if t, _ := cmd.Flags().GetString("trigger"); t != "" {
		filter.Trigger = &t
	}

	runs, err := a.history.ListRuns(filter)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(runs)
		return nil
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("  %-5s %-10s %-10s %-16s %-9s %6s %7s %8s %6s\n",
		"ID", "TRIGGER", "STATUS", "STARTED", "DURATION", "ITEMS", "CREATED", "ORPHANED", "ERRORS")
	fmt.Println("  " + strings.Repeat("-", 90))
	for _, r := range runs {
		duration := "-"
		if r.FinishedAt != nil {
			duration = r.Duration().Round(time.Second).String()
		}
		fmt.Printf("  %-5d %-10s %-10s %-16s %-9s %6d %7d %8d %6d\n",
			r.ID, r.Trigger, r.Status, humanize.Time(r.StartedAt), duration,
			r.Items, r.Created, r.Orphaned, r.Errors)
	}
	return nil
}

func showRun(store *history.Store, id int64) error {
	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	changes, err := store.ListChanges(id)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]any{"run": run, "changes": changes})
		return nil
	}

	fmt.Printf("Run %d (%s, %s)\n", run.ID, run.Trigger, run.Status)
	fmt.Printf("  Started:  %s (%s)\n", run.StartedAt.Format(time.RFC3339), humanize.Time(run.StartedAt))
	if run.FinishedAt != nil {
		fmt.Printf("  Duration: %s\n", run.Duration().Round(time.Second))
	}
	fmt.Printf("  Items %d, created %d, renamed %d, updated %d, orphaned %d, errors %d\n",
		run.Items, run.Created, run.Renamed, run.Updated, run.Orphaned, run.Errors)
	if run.Message != "" {
		fmt.Printf("  Message:  %s\n", run.Message)
	}

	if len(changes) == 0 {
		return nil
	}
	fmt.Printf("\nChanges (%d):\n", len(changes))
	for _, c := range changes {
		fmt.Printf("  [%s] %s %s\n", c.MediaType, c.Reason, c.OldName)
		if c.NewName != "" {
			fmt.Printf("      -> %s\n", c.NewName)
		}
	}
	return nil
}

func runHistoryPruneCmd(cmd *cobra.Command, _ []string) error {
	olderThan, _ := cmd.Flags().GetString("older-than")
	age, err := config.ParseInterval(olderThan)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.history.Prune(time.Now().Add(-age))
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %s runs.\n", humanize.Comma(n))
	return nil
}

package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vmunix/postersync/internal/codec"
	"github.com/vmunix/postersync/internal/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show known libraries, valid-id counts and the last run",
	Args:  cobra.NoArgs,
	RunE:  runStateCmd,
}

func init() {
	rootCmd.AddCommand(stateCmd)
}

type libraryState struct {
	MediaType codec.MediaType `json:"media_type"`
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Kind      string          `json:"kind,omitempty"`
	LastSeen  time.Time       `json:"last_seen"`
	ValidIDs  int             `json:"valid_ids"`
}

type stateReport struct {
	LastRun   *time.Time     `json:"last_run,omitempty"`
	NextRun   *time.Time     `json:"next_run,omitempty"`
	Libraries []libraryState `json:"libraries"`
	// Untracked are libraries holding valid ids but absent from the registry.
	Untracked []libraryState `json:"untracked,omitempty"`
}

func runStateCmd(_ *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	last, ok, err := state.ReadLastRun(a.paths.LastRun())
	if err != nil {
		return err
	}

	report := buildStateReport(a.registry, a.ids)
	if ok {
		next := last.Add(a.interval)
		report.LastRun = &last
		report.NextRun = &next
	}

	if jsonOutput {
		printJSON(report)
		return nil
	}

	if report.LastRun != nil {
		fmt.Printf("Last full run: %s (%s)\n", report.LastRun.Format(time.RFC3339), humanize.Time(*report.LastRun))
		fmt.Printf("Next due:      %s\n", humanize.Time(*report.NextRun))
	} else {
		fmt.Println("Last full run: never")
	}
	fmt.Println()

	if len(report.Libraries) == 0 {
		fmt.Println("No libraries recorded yet.")
		return nil
	}
	fmt.Printf("  %-11s %-6s %-30s %-10s %s\n", "MEDIA TYPE", "ID", "LIBRARY", "VALID IDS", "LAST SEEN")
	for _, l := range report.Libraries {
		fmt.Printf("  %-11s %-6s %-30s %-10s %s\n",
			l.MediaType, l.ID, truncate(l.Title, 30), humanize.Comma(int64(l.ValidIDs)), humanize.Time(l.LastSeen))
	}
	for _, l := range report.Untracked {
		fmt.Printf("  %-11s %-6s %-30s %-10s %s\n",
			l.MediaType, l.ID, "(untracked)", humanize.Comma(int64(l.ValidIDs)), "-")
	}
	return nil
}

func buildStateReport(registry *state.Registry, ids *state.ValidIDStore) stateReport {
	counts := ids.Counts()
	report := stateReport{}

	for _, mt := range codec.AllMediaTypes {
		entries := registry.Entries(mt)
		for _, e := range entries {
			report.Libraries = append(report.Libraries, libraryState{
				MediaType: mt,
				ID:        e.ID,
				Title:     e.Title,
				Kind:      string(e.Kind),
				LastSeen:  e.LastSeen,
				ValidIDs:  counts[mt][e.ID],
			})
		}

		known := lo.Map(entries, func(e state.LibraryRecord, _ int) string { return e.ID })
		untracked := lo.Without(lo.Keys(counts[mt]), known...)
		slices.Sort(untracked)
		for _, id := range untracked {
			report.Untracked = append(report.Untracked, libraryState{MediaType: mt, ID: id, ValidIDs: counts[mt][id]})
		}
	}
	return report
}

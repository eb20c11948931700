package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vmunix/postersync/internal/importer"
	"github.com/vmunix/postersync/internal/server"
)

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printOutcome(out *server.Outcome) {
	if jsonOutput {
		printJSON(out)
		return
	}
	if out.Skipped {
		fmt.Println("Another run is in progress; skipped.")
		return
	}
	if out.Totals != nil {
		printTotals(os.Stdout, out.Totals)
	}
}

func printTotals(w io.Writer, t *importer.Totals) {
	fmt.Fprintf(w, "Items:      %d\n", t.Items)
	fmt.Fprintf(w, "Created:    %d\n", t.Created)
	fmt.Fprintf(w, "Renamed:    %d\n", t.Renamed)
	fmt.Fprintf(w, "Updated:    %d\n", t.Updated)
	fmt.Fprintf(w, "Unchanged:  %d\n", t.Unchanged)
	fmt.Fprintf(w, "Orphaned:   %d", t.Orphaned)
	if t.OldFormat > 0 {
		fmt.Fprintf(w, " (%d old format)", t.OldFormat)
	}
	fmt.Fprintln(w)

	var skipped []string
	for _, s := range []struct {
		n     int
		label string
	}{
		{t.Malformed, "malformed"},
		{t.NoPoster, "without poster"},
		{t.Failed, "failed"},
		{t.Duplicates, "duplicates removed"},
		{t.Unmarked, "could not be marked"},
	} {
		if s.n > 0 {
			skipped = append(skipped, fmt.Sprintf("%d %s", s.n, s.label))
		}
	}
	if len(skipped) > 0 {
		fmt.Fprintf(w, "Other:      %s\n", strings.Join(skipped, ", "))
	}

	for _, lib := range t.MissingLibraries {
		fmt.Fprintf(w, "Library vanished: %s (%s)\n", lib.Title, lib.ID)
	}
	if len(t.Errors) > 0 {
		fmt.Fprintf(w, "Errors (%d):\n", len(t.Errors))
		for _, e := range t.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmunix/postersync/internal/tmdb"
)

var searchCmd = &cobra.Command{
	Use:   "search [title]",
	Short: "Find poster candidates on TMDB",
	Long: `Search TMDB for posters matching a title. Results are ranked by how
closely their title matches the query.

With --tmdb-id, looks up a single movie by its TMDB id instead.

Requires [tmdb] api_key in the config.

Examples:
  postersync search "Dune" --year 2021
  postersync search "The Expanse" --type show
  postersync search --tmdb-id 438631`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Int("year", 0, "Release year")
	searchCmd.Flags().String("type", "movie", "movie or show")
	searchCmd.Flags().Int("limit", 10, "Maximum results")
	searchCmd.Flags().String("size", "w500", "Poster size in URLs (w92 to original)")
	searchCmd.Flags().Int64("tmdb-id", 0, "Look up one movie by TMDB id")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")
	kindFlag, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")
	size, _ := cmd.Flags().GetString("size")
	tmdbID, _ := cmd.Flags().GetInt64("tmdb-id")

	if tmdbID == 0 && len(args) == 0 {
		return errors.New("give a title or --tmdb-id")
	}

	var kind tmdb.MediaKind
	switch kindFlag {
	case "movie":
		kind = tmdb.KindMovie
	case "show", "tv":
		kind = tmdb.KindTV
	default:
		return fmt.Errorf("invalid --type %q: want movie or show", kindFlag)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, os.Stderr)

	opts := []tmdb.Option{tmdb.WithLogger(logger)}
	if cfg.TMDB.BaseURL != "" {
		opts = append(opts, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	}
	client := tmdb.NewClient(cfg.TMDB.APIKey, opts...)

	if tmdbID != 0 {
		movie, err := client.GetMovie(cmd.Context(), tmdbID)
		if err != nil {
			return tmdbError(err)
		}
		if jsonOutput {
			printJSON(movie)
			return nil
		}
		printMovie(cmd.OutOrStdout(), movie, size)
		return nil
	}

	results, err := client.Search(cmd.Context(), tmdb.Query{Title: args[0], Year: year, Kind: kind})
	if err != nil {
		return tmdbError(err)
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if jsonOutput {
		printJSON(results)
		return nil
	}
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}

	fmt.Fprintf(out, "  %-5s %-40s %-6s %s\n", "SCORE", "TITLE", "YEAR", "POSTER")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
	for i := range results {
		r := &results[i]
		yr := "-"
		if r.Year > 0 {
			yr = strconv.Itoa(r.Year)
		}
		poster := r.PosterURL(size)
		if poster == "" {
			poster = "(none)"
		}
		fmt.Fprintf(out, "  %-5.2f %-40s %-6s %s\n", r.Score, truncate(r.Title, 40), yr, poster)
	}
	return nil
}

func tmdbError(err error) error {
	switch {
	case errors.Is(err, tmdb.ErrNoAPIKey):
		return fmt.Errorf("%w: set [tmdb] api_key", err)
	case errors.Is(err, tmdb.ErrNotFound):
		return fmt.Errorf("tmdb id: %w", err)
	}
	return err
}

func printMovie(w io.Writer, m *tmdb.Movie, size string) {
	fmt.Fprintf(w, "Title:   %s\n", m.Title)
	if y := m.Year(); y > 0 {
		fmt.Fprintf(w, "Year:    %d\n", y)
	}
	poster := m.PosterURL(size)
	if poster == "" {
		poster = "(none)"
	}
	fmt.Fprintf(w, "Poster:  %s\n", poster)
}

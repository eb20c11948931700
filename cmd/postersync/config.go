package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmunix/postersync/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without contacting Plex.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		p, err := config.Discover()
		if err != nil {
			return err
		}
		path = p
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(out, configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Plex:       %s (page size %d, timeout %s)\n", cfg.Plex.URL, cfg.Plex.PageSize, cfg.Plex.Timeout)
	fmt.Fprintf(w, "  Posters:    %s\n", cfg.Posters.Root)

	var types []string
	for _, t := range []struct {
		on   bool
		name string
	}{
		{cfg.Posters.Movies, "movies"},
		{cfg.Posters.Shows, "shows"},
		{cfg.Posters.Seasons, "seasons"},
		{cfg.Posters.Collections, "collections"},
	} {
		if t.on {
			types = append(types, t.name)
		}
	}
	fmt.Fprintf(w, "  Media:      %s\n", strings.Join(types, ", "))
	if len(cfg.Posters.ExcludeLibraries) > 0 {
		fmt.Fprintf(w, "  Excluded:   %s\n", strings.Join(cfg.Posters.ExcludeLibraries, ", "))
	}
	fmt.Fprintf(w, "  Schedule:   every %s (stale lock after %s)\n", cfg.Schedule.Interval, cfg.Schedule.LockStaleAfter)
	fmt.Fprintf(w, "  State:      %s\n", cfg.State.Dir)
	if cfg.TMDB.APIKey != "" {
		fmt.Fprintln(w, "  TMDB:       configured")
	}
	fmt.Fprintf(w, "  Log:        %s (%s)\n", cfg.Log.Level, cfg.Log.Format)
}

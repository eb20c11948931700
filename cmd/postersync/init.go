package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmunix/postersync/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file",
	Long: `Write the default configuration to path (default ./config.toml).

Plex credentials are read from PLEX_URL and PLEX_TOKEN by default; edit the
file to change them. Passing any of --plex-url, --token, --posters or
--state-dir writes a config with those values filled in instead.

Examples:
  postersync init
  postersync init /etc/postersync.toml --plex-url http://nas:32400 --posters /srv/posters`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInitCmd,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	initCmd.Flags().String("plex-url", "", "Plex server URL")
	initCmd.Flags().String("token", "", "Plex token")
	initCmd.Flags().String("posters", "", "Poster root directory")
	initCmd.Flags().String("state-dir", "", "Directory for the state database")
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	path := "config.toml"
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	cfg := initConfig(cmd)
	if cfg == nil {
		if err := config.WriteDefault(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
	} else if err := cfg.Write(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	if cfg == nil || cfg.Plex.Token == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Set PLEX_TOKEN, then check it with: postersync config test")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Check it with: postersync config test")
	}
	return nil
}

// initConfig returns the defaults overlaid with the values given on the
// command line, or nil when none were given.
func initConfig(cmd *cobra.Command) *config.Config {
	plexURL, _ := cmd.Flags().GetString("plex-url")
	token, _ := cmd.Flags().GetString("token")
	posters, _ := cmd.Flags().GetString("posters")
	stateDir, _ := cmd.Flags().GetString("state-dir")
	if plexURL == "" && token == "" && posters == "" && stateDir == "" {
		return nil
	}

	cfg := config.Default()
	if plexURL != "" {
		cfg.Plex.URL = plexURL
	}
	cfg.Plex.Token = token
	if token == "" {
		cfg.Plex.Token = "${PLEX_TOKEN}"
	}
	if posters != "" {
		cfg.Posters.Root = posters
	}
	if stateDir != "" {
		cfg.State.Dir = stateDir
	}
	return cfg
}

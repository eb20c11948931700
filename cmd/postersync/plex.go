package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/vmunix/postersync/internal/plex"
)

var plexCmd = &cobra.Command{
	Use:   "plex",
	Short: "Plex media server commands",
}

var plexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show Plex connection status and libraries",
	Args:  cobra.NoArgs,
	RunE:  runPlexStatusCmd,
}

func init() {
	rootCmd.AddCommand(plexCmd)
	plexCmd.AddCommand(plexStatusCmd)
}

// PlexStatus is the output of plex status.
type PlexStatus struct {
	URL        string         `json:"url"`
	Connected  bool           `json:"connected"`
	ServerName string         `json:"server_name,omitempty"`
	Version    string         `json:"version,omitempty"`
	Libraries  []plex.Section `json:"libraries,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func runPlexStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	status := &PlexStatus{URL: a.cfg.Plex.URL}
	identity, err := a.plex.GetIdentity(cmd.Context())
	if err == nil {
		status.Connected = true
		status.ServerName = identity.Name
		status.Version = identity.Version
		status.Libraries, err = a.plex.GetSections(cmd.Context())
	}
	if err != nil {
		status.Error = err.Error()
	}

	if jsonOutput {
		printJSON(status)
	} else {
		printPlexStatusHuman(status)
	}
	if !status.Connected {
		return fmt.Errorf("plex unreachable at %s", status.URL)
	}
	return nil
}

func printPlexStatusHuman(s *PlexStatus) {
	if !s.Connected {
		fmt.Printf("Plex: connection failed (%s)\n", s.URL)
		fmt.Printf("  Error: %s\n", s.Error)
		return
	}

	fmt.Printf("Plex: %s (%s)\n", s.ServerName, s.Version)
	fmt.Printf("  URL: %s\n", s.URL)
	if s.Error != "" {
		fmt.Printf("  Libraries unavailable: %s\n", s.Error)
		return
	}
	fmt.Println()
	fmt.Println("Libraries:")
	for _, lib := range s.Libraries {
		scanned := "never scanned"
		if lib.ScannedAt > 0 {
			scanned = "scanned " + humanize.Time(time.Unix(lib.ScannedAt, 0))
		}
		if lib.Refreshing() {
			scanned = "scanning now"
		}
		fmt.Printf("  %-4s %-30s %-8s %s\n", lib.Key, truncate(lib.Title, 30), lib.Type, scanned)
	}
}

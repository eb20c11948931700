package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vmunix/postersync/internal/codec"
)

var pushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Upload a local poster to Plex and lock it",
	Long: `Upload a poster file to the Plex item whose id its filename carries,
then lock the poster so Plex does not replace it.

The media type is inferred from the poster directory unless --type is given.

Examples:
  postersync push "posters/movies/Dune (2021) [12345] [[Movies]] --Plex--.jpg"
  postersync push ./custom.jpg --type collection`,
	Args: cobra.ExactArgs(1),
	RunE: runPushCmd,
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().String("type", "", "Media type: movie, show, season or collection")
}

func runPushCmd(cmd *cobra.Command, args []string) error {
	mediaType, _ := cmd.Flags().GetString("type")
	if mediaType != "" && !lo.Contains(codec.AllMediaTypes, codec.MediaType(mediaType)) {
		return fmt.Errorf("invalid --type %q", mediaType)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.importer.Push(cmd.Context(), args[0], codec.MediaType(mediaType))
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(res)
		return nil
	}
	fmt.Printf("Uploaded %s to %s %q [%s]", humanize.Bytes(uint64(res.Bytes)), res.MediaType, res.Title, res.ID)
	if res.Locked {
		fmt.Print(", locked")
	}
	fmt.Println()
	return nil
}

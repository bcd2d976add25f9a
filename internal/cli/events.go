package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/karaoke/internal/lyrics"
	"github.com/mgpai22/karaoke/internal/timing"
)

var eventsCmd = &cobra.Command{
	Use:   "events [timings_file]",
	Short: "Validate and summarize a timing events file",
	Long: `Check that a timing events file only holds START (1) and END (2) markers
in chronological order, and print a summary. With --lyrics the START count
is compared with the number of lyric segments.

Examples:
  karaoke events song.json
  karaoke events song.json --lyrics song.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().
		String("lyrics", "", "Lyrics file to compare the START count against")
}

func runEvents(cmd *cobra.Command, args []string) error {
	lyricsPath, _ := cmd.Flags().GetString("lyrics")

	events, err := timing.ReadEventsFile(args[0])
	if err != nil {
		return err
	}
	if err := timing.ValidateEvents(events); err != nil {
		return fmt.Errorf("invalid timing events: %w", err)
	}

	starts, ends := timing.CountMarkers(events)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Events: %d\n", len(events))
	fmt.Fprintf(out, "  START: %d\n", starts)
	fmt.Fprintf(out, "  END: %d\n", ends)
	if len(events) > 0 {
		fmt.Fprintf(out, "  First: %s\n", events[0].Timestamp)
		fmt.Fprintf(out, "  Last: %s\n", events[len(events)-1].Timestamp)
	}

	if lyricsPath == "" {
		return nil
	}

	text, err := lyrics.ReadFile(lyricsPath)
	if err != nil {
		return err
	}
	segments := len(lyrics.Parse(text))
	fmt.Fprintf(out, "  Lyric segments: %d\n", segments)

	switch {
	case starts > segments:
		logger.Warnw("More START marks than lyric segments",
			"starts", starts, "segments", segments)
	case starts < segments:
		logger.Warnw("Some lyric segments have no START mark",
			"starts", starts, "segments", segments)
	}
	return nil
}

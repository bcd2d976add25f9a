package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgpai22/karaoke/internal/lyrics"
)

var segmentsCmd = &cobra.Command{
	Use:   "segments [lyrics_file]",
	Short: "Print the segments a lyrics file splits into",
	Long: `Print every timed segment of a lyrics file, one per row, in the order the
START marks are matched against them. A segment closing its line shows a
trailing \n, one closing its screen shows \n\n.

Examples:
  karaoke segments song.txt
  karaoke segments song.txt --keep-markup`,
	Args: cobra.ExactArgs(1),
	RunE: runSegments,
}

func init() {
	rootCmd.AddCommand(segmentsCmd)

	segmentsCmd.Flags().
		Bool("keep-markup", false, "Keep '/' and '_' in the printed segments")
}

func runSegments(cmd *cobra.Command, args []string) error {
	keepMarkup, _ := cmd.Flags().GetBool("keep-markup")

	text, err := lyrics.ReadFile(args[0])
	if err != nil {
		return err
	}

	segments := lyrics.ParseWithOptions(text, lyrics.ParseOptions{KeepMarkup: keepMarkup})
	out := cmd.OutOrStdout()
	width := len(strconv.Itoa(len(segments)))
	for i, seg := range segments {
		fmt.Fprintf(out, "%*d  %s\n", width, i+1, strconv.Quote(seg))
	}

	logger.Debugw("Parsed lyrics", "segments", len(segments))
	return nil
}

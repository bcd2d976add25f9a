package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/karaoke/internal/subtitle"
)

var shiftCmd = &cobra.Command{
	Use:   "shift [subtitle_file]",
	Short: "Move every event of a subtitle file by a fixed offset",
	Long: `Shift the start and end of every event in an ASS, SRT or VTT file.

Karaoke tags inside ASS events are relative to the event start, so the
sweep moves with the event. Times that would fall before zero are written
as zero.

Examples:
  karaoke shift song.ass --by 350ms
  karaoke shift song.ass --by=-1.2s -o song.fixed.ass
  karaoke shift song.srt --by 2s`,
	Args: cobra.ExactArgs(1),
	RunE: runShift,
}

func init() {
	rootCmd.AddCommand(shiftCmd)

	shiftCmd.Flags().
		Duration("by", 0, "Offset to add, e.g. 500ms or -1.5s (required)")

	_ = shiftCmd.MarkFlagRequired("by")
}

func runShift(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	delta, _ := cmd.Flags().GetDuration("by")
	outputPath, _ := cmd.Flags().GetString("output")

	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + ".shifted" + ext
	}

	file, err := subtitle.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	entries := len(file.Subtitle().Entries)
	if entries == 0 {
		return fmt.Errorf("subtitle file contains no events")
	}

	logger.Infow("Shifting subtitle file",
		"input", inputPath,
		"output", outputPath,
		"format", file.Format(),
		"delta", delta,
	)

	file.Shift(delta)
	if err := file.Write(outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Shifted %d events by %s: %s\n", entries, delta, absOutput)
	return nil
}

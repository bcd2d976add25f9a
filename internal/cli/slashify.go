package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/karaoke/internal/lyrics"
)

var slashifyCmd = &cobra.Command{
	Use:   "slashify [lyrics_file]",
	Short: "Split every occurrence of a word into syllables",
	Long: `Apply a syllable split to every occurrence of a word in a lyrics file.
Matching ignores case and the characters / , ! and —, and each occurrence
keeps its own casing.

The result goes to --output, or to stdout when no output is given.

Examples:
  karaoke slashify song.txt --word alchemy --as al/chem/y
  karaoke slashify song.txt --word tonight --as to/night -o song.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runSlashify,
}

func init() {
	rootCmd.AddCommand(slashifyCmd)

	slashifyCmd.Flags().
		String("word", "", "Word to split (required)")
	slashifyCmd.Flags().
		String("as", "", "The word with '/' between syllables (required)")

	_ = slashifyCmd.MarkFlagRequired("word")
	_ = slashifyCmd.MarkFlagRequired("as")
}

func runSlashify(cmd *cobra.Command, args []string) error {
	word, _ := cmd.Flags().GetString("word")
	slashed, _ := cmd.Flags().GetString("as")
	outputPath, _ := cmd.Flags().GetString("output")

	if err := checkSlashed(word, slashed); err != nil {
		return err
	}

	text, err := lyrics.ReadFile(args[0])
	if err != nil {
		return err
	}

	result := lyrics.SlashifyAll(text, word, slashed)

	if outputPath == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), result)
		return err
	}
	if err := os.WriteFile(outputPath, []byte(result), 0644); err != nil {
		return fmt.Errorf("failed to write lyrics: %w", err)
	}
	logger.Infow("Rewrote lyrics", "output", outputPath, "word", word, "as", slashed)
	return nil
}

// the slashed form must spell the same word
func checkSlashed(word, slashed string) error {
	if strings.TrimSpace(word) == "" {
		return fmt.Errorf("word must not be empty")
	}
	plain := strings.ReplaceAll(slashed, string(lyrics.SubBreak), "")
	if !strings.EqualFold(plain, strings.ReplaceAll(word, string(lyrics.SubBreak), "")) {
		return fmt.Errorf("%q does not spell %q", slashed, word)
	}
	return nil
}

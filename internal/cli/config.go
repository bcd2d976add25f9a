package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/karaoke/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the effective configuration as YAML",
	Long: `Write the configuration in effect (built-in defaults merged with the loaded
file) to --output, or to karaoke.yaml in the current directory.

Examples:
  karaoke config
  karaoke config --config base.yaml -o karaoke.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().
		Bool("force", false, "Overwrite an existing file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if outputPath == "" {
		outputPath = config.DefaultPath
	}
	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", outputPath)
	}

	if err := cfg.Save(outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Config written: %s\n", absOutput)
	return nil
}

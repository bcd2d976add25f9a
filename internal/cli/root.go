package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mgpai22/karaoke/internal/config"
	"github.com/mgpai22/karaoke/internal/logging"
)

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "karaoke",
	Short: "Compile timed lyrics into karaoke subtitles",
	Long: `Karaoke turns marked-up lyrics and a recorded stream of timing events
into an ASS karaoke script with a syllable-by-syllable sweep.

Lyrics are split into segments by line feeds, '/' and '_'. A blank line
starts a new screen. Timing events are the START/END marks recorded while
the song plays.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		logger = logging.NewLoggerWithFile(verbose, logging.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})

		warnings, err := cfg.Validate()
		for _, w := range warnings {
			logger.Warnw("Config warning", "warning", w)
		}
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if cfg.Path() != "" {
			logger.Debugw("Loaded config", "path", cfg.Path())
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file (default karaoke.yaml if present)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}

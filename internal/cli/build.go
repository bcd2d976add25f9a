package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mgpai22/karaoke/internal/audio"
	"github.com/mgpai22/karaoke/internal/lyrics"
	"github.com/mgpai22/karaoke/internal/subtitle"
	"github.com/mgpai22/karaoke/internal/timing"
	"github.com/mgpai22/karaoke/internal/translate"
)

var buildCmd = &cobra.Command{
	Use:   "build [lyrics_file]",
	Short: "Compile lyrics and timing events into an ASS karaoke script",
	Long: `Compile a lyrics file and its recorded timing events into an ASS karaoke
script.

The length of the backing track is needed to end the last segment. Pass it
with --duration or let ffprobe read it from --audio.

With --autocorrect the vocal stem (--vocals, or --audio when no stem is
given) is scanned for silence and the whole timeline is shifted so the
first marked segment lands on the closest preceding vocal onset.

Next to the script the command writes the normalized timing events as
<output>.timings.json, and with --srt a plain lyric SRT.

Examples:
  karaoke build song.txt --timings song.json --duration 214.5
  karaoke build song.txt --timings song.json --audio song.mp3 --srt
  karaoke build song.txt --timings song.json --audio song.mp3 --vocals vocals.wav --autocorrect
  karaoke build song.txt --timings song.json --duration 180 --translate-to japanese -o song.ja.ass`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().
		StringP("timings", "t", "", "Timing events JSON file (required)")
	buildCmd.Flags().
		Float64P("duration", "d", 0, "Backing track length in seconds")
	buildCmd.Flags().
		StringP("audio", "a", "", "Backing track, used for its length and as the fallback for --autocorrect")
	buildCmd.Flags().
		String("vocals", "", "Isolated vocal stem used for --autocorrect")
	buildCmd.Flags().
		Bool("autocorrect", false, "Align the first marked segment with the detected vocal onset")
	buildCmd.Flags().
		Bool("count-in", false, "Add count-ins before long instrumental gaps")
	buildCmd.Flags().
		Bool("srt", false, "Also write the lyric lines as an SRT file")
	buildCmd.Flags().
		String("translate-to", "", "Add a translated line under every karaoke line")
	buildCmd.Flags().
		StringP("language", "l", "", "Language of the lyrics, passed to the translator")
	buildCmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	buildCmd.Flags().
		String("model", "", "Translation model (provider default when empty)")
	buildCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")

	_ = buildCmd.MarkFlagRequired("timings")
}

func runBuild(cmd *cobra.Command, args []string) error {
	lyricsPath := args[0]
	ctx := cmd.Context()

	timingsPath, _ := cmd.Flags().GetString("timings")
	durationSecs, _ := cmd.Flags().GetFloat64("duration")
	audioPath, _ := cmd.Flags().GetString("audio")
	vocalsPath, _ := cmd.Flags().GetString("vocals")
	autocorrect, _ := cmd.Flags().GetBool("autocorrect")
	writeSRT, _ := cmd.Flags().GetBool("srt")
	translateTo, _ := cmd.Flags().GetString("translate-to")
	outputPath, _ := cmd.Flags().GetString("output")

	if cmd.Flags().Changed("autocorrect") {
		cfg.Autocorrect.Enabled = autocorrect
	}
	if countIn, _ := cmd.Flags().GetBool("count-in"); cmd.Flags().Changed("count-in") {
		cfg.Timing.CountIn.Enabled = countIn
	}

	if durationSecs < 0 {
		return fmt.Errorf("duration must not be negative, got %g", durationSecs)
	}
	if outputPath == "" {
		outputPath = strings.TrimSuffix(lyricsPath, filepath.Ext(lyricsPath)) + ".ass"
	}

	log := logger.With("run_id", uuid.NewString())
	log.Infow("Starting karaoke build",
		"lyrics", lyricsPath,
		"timings", timingsPath,
		"output", outputPath,
		"autocorrect", cfg.Autocorrect.Enabled,
	)

	text, err := lyrics.ReadFile(lyricsPath)
	if err != nil {
		return err
	}
	events, err := timing.ReadEventsFile(timingsPath)
	if err != nil {
		return err
	}
	if err := timing.ValidateEvents(events); err != nil {
		return fmt.Errorf("invalid timing events: %w", err)
	}
	starts, ends := timing.CountMarkers(events)
	log.Debugw("Loaded timing events", "starts", starts, "ends", ends)

	trackDuration := timing.SecondsToDuration(durationSecs)
	if trackDuration == 0 && audioPath != "" {
		trackDuration, err = audio.GetDuration(ctx, audioPath)
		if err != nil {
			return fmt.Errorf("failed to read track length: %w", err)
		}
		log.Debugw("Read track length", "audio", audioPath, "duration", trackDuration)
	}

	style, err := cfg.KaraokeStyle()
	if err != nil {
		return err
	}
	layout, err := cfg.KaraokeLayout()
	if err != nil {
		return err
	}

	opts := timing.Options{
		TrackDuration: trackDuration,
		ScreenGap:     cfg.Timing.ScreenGap,
		CountIn:       cfg.CountIn(),
	}

	if cfg.Autocorrect.Enabled {
		spans, err := vocalSpans(ctx, log, vocalsPath, audioPath)
		if err != nil {
			return err
		}
		opts.VocalSpans = spans
	}

	res, err := timing.Build(text, events, opts)
	if err != nil {
		return fmt.Errorf("failed to compile karaoke timing: %w", err)
	}
	reportBuild(log, res, opts.VocalSpans != nil)

	var translations []string
	if translateTo != "" {
		translations, err = translateLyrics(ctx, log, cmd, res.Screens, translateTo)
		if err != nil {
			return err
		}
		log.Infow("Translated lyric lines", "lines", len(translations), "target_language", translateTo)
	}

	doc := subtitle.Encode(res.Screens, subtitle.EncodeOptions{
		Style:        style,
		Layout:       layout,
		Translations: translations,
	})
	if err := doc.Write(outputPath); err != nil {
		return fmt.Errorf("failed to write karaoke script: %w", err)
	}

	timingsOut := outputBase(outputPath) + ".timings.json"
	if err := timing.WriteEventsFile(timingsOut, timing.EventsFromScreens(res.Screens)); err != nil {
		return fmt.Errorf("failed to write timing events: %w", err)
	}

	var srtOut string
	if writeSRT {
		srtOut = outputBase(outputPath) + ".srt"
		if _, err := subtitle.ExportLines(res.Screens, srtOut); err != nil {
			return fmt.Errorf("failed to write SRT export: %w", err)
		}
	}

	log.Infow("Karaoke build complete", "screens", len(res.Screens), "events", len(doc.Events))

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Karaoke script generated successfully: %s\n", absOutput)
	fmt.Printf("  Screens: %d\n", len(res.Screens))
	fmt.Printf("  Segments: %d\n", timing.CountSegments(res.Screens))
	fmt.Printf("  Timing events: %s\n", timingsOut)
	if srtOut != "" {
		fmt.Printf("  SRT: %s\n", srtOut)
	}
	if res.Adjustment != 0 {
		fmt.Printf("  Offset correction: %s\n", res.Adjustment)
	}

	return nil
}

// non-silent spans of the vocal stem, falling back to the backing track
func vocalSpans(ctx context.Context, log runLogger, vocalsPath, audioPath string) ([]timing.Span, error) {
	source := vocalsPath
	if source == "" {
		source = audioPath
	}
	if source == "" {
		return nil, fmt.Errorf("autocorrect needs --vocals or --audio")
	}
	if _, err := os.Stat(source); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", source)
	}

	log.Infow("Detecting vocal onset", "source", source)
	spans, err := audio.NonSilentSpans(ctx, source, audio.SilenceOptions{
		NoiseDB:     cfg.Autocorrect.NoiseDB,
		MinDuration: cfg.Autocorrect.MinSilence,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect silence: %w", err)
	}
	// an all-silent track still runs the corrector, which reports no onset
	if spans == nil {
		spans = []timing.Span{}
	}
	return spans, nil
}

// logger carrying the run_id of one build
type runLogger interface {
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
}

// how many leftover events or segments a warning lists
const reportLimit = 10

func reportBuild(log runLogger, res *timing.Result, corrected bool) {
	if res.Underrun != nil {
		log.Warnw("Timing events continue past the last lyric segment",
			"compiled_segments", res.Underrun.Compiled,
			"remaining_events", len(res.Underrun.Remaining),
			"unconsumed", describeEvents(res.Underrun.Remaining, reportLimit),
		)
	}
	if len(res.Untimed) > 0 {
		log.Warnw("Lyric segments were never timed",
			"untimed", len(res.Untimed),
			"segments", describeSegments(res.Untimed, reportLimit),
		)
	}
	if res.CountIns > 0 {
		log.Infow("Added count-ins", "count", res.CountIns)
	}
	if corrected {
		if res.OnsetDetected {
			log.Infow("Corrected vocal offset",
				"onset", res.Onset,
				"adjustment", res.Adjustment,
			)
		} else {
			log.Warnw("No vocal onset found before the first marked segment, timing left unchanged")
		}
	}
	if first := firstStart(res.Screens); first < 0 {
		log.Warnw("Timeline starts before zero, negative times are written as 0:00:00.00",
			"start", first,
		)
	}
}

// "12.5s START" style entries for the first n events
func describeEvents(events []timing.Event, n int) []string {
	out := make([]string, 0, min(len(events), n))
	for _, e := range events[:min(len(events), n)] {
		out = append(out, fmt.Sprintf("%s %s", e.Timestamp, e.Marker))
	}
	if len(events) > n {
		out = append(out, fmt.Sprintf("... %d more", len(events)-n))
	}
	return out
}

func describeSegments(segments []string, n int) []string {
	out := make([]string, 0, min(len(segments), n))
	for _, s := range segments[:min(len(segments), n)] {
		out = append(out, strings.TrimSpace(s))
	}
	if len(segments) > n {
		out = append(out, fmt.Sprintf("... %d more", len(segments)-n))
	}
	return out
}

func firstStart(screens []timing.Screen) time.Duration {
	if len(screens) == 0 {
		return 0
	}
	return screens[0].Start
}

func outputBase(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// display text of every line in order, count-ins left out
func lineTexts(screens []timing.Screen) []string {
	var out []string
	for _, screen := range screens {
		for _, line := range screen.Lines {
			var sb strings.Builder
			for _, seg := range line.Segments {
				if seg.Synthetic {
					continue
				}
				sb.WriteString(seg.DisplayText())
			}
			out = append(out, strings.TrimSpace(sb.String()))
		}
	}
	return out
}

func translateLyrics(
	ctx context.Context,
	log runLogger,
	cmd *cobra.Command,
	screens []timing.Screen,
	targetLang string,
) ([]string, error) {
	inputLang, _ := cmd.Flags().GetString("language")
	providerStr, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	apiKey, _ := cmd.Flags().GetString("api-key")

	if inputLang != "" &&
		strings.EqualFold(strings.TrimSpace(inputLang), strings.TrimSpace(targetLang)) {
		return nil, fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	if providerStr == "" {
		providerStr = cfg.Translate.Provider
	}
	if model == "" {
		model = cfg.Translate.Model
	}
	provider := translate.Provider(strings.ToLower(providerStr))

	apiKey, err := resolveAPIKey(provider, apiKey, os.Getenv)
	if err != nil {
		return nil, err
	}

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BatchSize:      cfg.Translate.BatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}
	defer func() { _ = translator.Close() }()

	lines := lineTexts(screens)
	log.Infow("Translating lyric lines",
		"lines", len(lines),
		"provider", provider,
		"concurrency", cfg.Translate.Concurrency,
	)

	translations, err := translate.TranslateLines(ctx, translator, lines, cfg.Translate.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	return translations, nil
}

// flag value first, then the provider's environment variable
func resolveAPIKey(provider translate.Provider, flagValue string, getenv func(string) string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	envVar, ok := translate.APIKeyEnv[provider]
	if !ok {
		return "", fmt.Errorf("unsupported translation provider: %s", provider)
	}
	if key := getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf(
		"API key is required: use --api-key flag or set %s environment variable",
		envVar,
	)
}

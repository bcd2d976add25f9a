package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mgpai22/karaoke/internal/config"
	"github.com/mgpai22/karaoke/internal/ffmpeg"

	"github.com/mgpai22/karaoke/internal/timing"
	"github.com/mgpai22/karaoke/internal/translate"
)

// flags keep their values between Execute calls on the shared root
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const holdMeNow = "Hold/ me\nnow\n"

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	lyricsPath := writeFile(t, dir, "song.txt", holdMeNow)
	timingsPath := writeFile(t, dir, "song.json", `[[1, 1], [2, 1], [3, 1], [4, 2]]`)
	outputPath := filepath.Join(dir, "out", "song.ass")

	_, err := execute(t, "build", lyricsPath,
		"--timings", timingsPath,
		"--duration", "10",
		"--srt",
		"-o", outputPath,
	)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	script, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	text := string(script)
	if got := strings.Count(text, "Dialogue:"); got != 2 {
		t.Errorf("got %d dialogue lines, want 2", got)
	}
	if !strings.Contains(text, `{\kf100}Hold`) {
		t.Errorf("script is missing the first sweep:\n%s", text)
	}
	if strings.Contains(text, "Style: Translation") {
		t.Error("translation style written without translations")
	}

	events, err := timing.ReadEventsFile(filepath.Join(dir, "out", "song.timings.json"))
	if err != nil {
		t.Fatalf("read timings: %v", err)
	}
	if starts, _ := timing.CountMarkers(events); starts != 3 {
		t.Errorf("got %d START events, want 3", starts)
	}

	srt, err := os.ReadFile(filepath.Join(dir, "out", "song.srt"))
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	if !strings.Contains(string(srt), "Hold me") {
		t.Errorf("srt is missing the first line:\n%s", srt)
	}
}

func TestBuildRejectsBadEvents(t *testing.T) {
	dir := t.TempDir()
	lyricsPath := writeFile(t, dir, "song.txt", holdMeNow)
	timingsPath := writeFile(t, dir, "song.json", `[[2, 1], [1, 1]]`)

	_, err := execute(t, "build", lyricsPath, "--timings", timingsPath, "--duration", "10")
	if err == nil || !strings.Contains(err.Error(), "invalid timing events") {
		t.Errorf("expected invalid timing events error, got %v", err)
	}
}

func TestBuildAutocorrectNeedsSource(t *testing.T) {
	dir := t.TempDir()
	lyricsPath := writeFile(t, dir, "song.txt", holdMeNow)
	timingsPath := writeFile(t, dir, "song.json", `[[1, 1], [2, 1], [3, 1]]`)

	_, err := execute(t, "build", lyricsPath,
		"--timings", timingsPath,
		"--duration", "10",
		"--autocorrect",
	)
	if err == nil || !strings.Contains(err.Error(), "--vocals or --audio") {
		t.Errorf("expected missing source error, got %v", err)
	}
}

func TestSegments(t *testing.T) {
	dir := t.TempDir()
	lyricsPath := writeFile(t, dir, "song.txt", holdMeNow)

	out, err := execute(t, "segments", lyricsPath)
	if err != nil {
		t.Fatalf("segments failed: %v", err)
	}
	want := "1  \"Hold\"\n2  \" me\\n\"\n3  \"now\\n\"\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	out, err = execute(t, "segments", lyricsPath, "--keep-markup")
	if err != nil {
		t.Fatalf("segments failed: %v", err)
	}
	if !strings.Contains(out, `"Hold/"`) {
		t.Errorf("expected markup to be kept, got %q", out)
	}
}

func TestEvents(t *testing.T) {
	dir := t.TempDir()
	lyricsPath := writeFile(t, dir, "song.txt", holdMeNow)
	timingsPath := writeFile(t, dir, "song.json", `[[1, 1], [2, 1], [3, 1], [4.5, 2]]`)

	out, err := execute(t, "events", timingsPath, "--lyrics", lyricsPath)
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}
	for _, want := range []string{"Events: 4", "START: 3", "END: 1", "Last: 4.5s", "Lyric segments: 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShift(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeFile(t, dir, "song.srt", "1\n00:00:01,000 --> 00:00:02,500\nHold me\n\n")

	if _, err := execute(t, "shift", inputPath, "--by", "1500ms"); err != nil {
		t.Fatalf("shift failed: %v", err)
	}

	shifted, err := os.ReadFile(filepath.Join(dir, "song.shifted.srt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(shifted), "00:00:02,500 --> 00:00:04,000") {
		t.Errorf("unexpected shifted output:\n%s", shifted)
	}
}

func TestSlashify(t *testing.T) {
	dir := t.TempDir()
	lyricsPath := writeFile(t, dir, "song.txt", "Alchemy of love\nalchemy!\n")

	out, err := execute(t, "slashify", lyricsPath, "--word", "alchemy", "--as", "al/chem/y")
	if err != nil {
		t.Fatalf("slashify failed: %v", err)
	}
	if out != "Al/chem/y of love\nal/chem/y!\n" {
		t.Errorf("got %q", out)
	}

	_, err = execute(t, "slashify", lyricsPath, "--word", "alchemy", "--as", "al/che/my/st")
	if err == nil {
		t.Error("expected error when the slashed form spells another word")
	}
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "karaoke.yaml")

	if _, err := execute(t, "config", "-o", outputPath); err != nil {
		t.Fatalf("config failed: %v", err)
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "font_name: Arial Narrow") {
		t.Errorf("unexpected config:\n%s", data)
	}

	if _, err := execute(t, "config", "-o", outputPath); err == nil {
		t.Error("expected error when the file exists")
	}
	if _, err := execute(t, "config", "-o", outputPath, "--force"); err != nil {
		t.Errorf("--force should overwrite: %v", err)
	}
}

func TestResolveAPIKey(t *testing.T) {
	env := map[string]string{"OPENAI_API_KEY": "from-env"}
	getenv := func(key string) string { return env[key] }

	tests := []struct {
		name     string
		provider translate.Provider
		flag     string
		want     string
		wantErr  bool
	}{
		{"flag wins", translate.ProviderOpenAI, "from-flag", "from-flag", false},
		{"environment", translate.ProviderOpenAI, "", "from-env", false},
		{"missing", translate.ProviderGemini, "", "", true},
		{"unknown provider", translate.Provider("deepl"), "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveAPIKey(tt.provider, tt.flag, getenv)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLineTexts(t *testing.T) {
	screens := []timing.Screen{{
		Lines: []timing.Line{
			{Segments: []timing.Segment{
				{Text: "●●● ", Synthetic: true},
				{Text: "Hold"},
				{Text: " me\n"},
			}},
			{Segments: []timing.Segment{{Text: "now\n\n"}}},
		},
	}}

	got := lineTexts(screens)
	want := []string{"Hold me", "now"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %q, want %q", got, want)
	}
}

func observedRun(t *testing.T) (*zap.SugaredLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core).Sugar().With("run_id", "run-1"), logs
}

func TestReportBuildListsLeftovers(t *testing.T) {
	var remaining []timing.Event
	for i := range 12 {
		remaining = append(remaining, timing.Event{
			Timestamp: time.Duration(10+i) * time.Second,
			Marker:    timing.SegmentStart,
		})
	}
	res := &timing.Result{
		Underrun: &timing.UnderrunError{Compiled: 3, Remaining: remaining},
		Untimed:  []string{"now\n", "and ", "then\n\n"},
	}

	log, logs := observedRun(t)
	reportBuild(log, res, false)

	underrun := logs.FilterMessage("Timing events continue past the last lyric segment").All()
	if len(underrun) != 1 {
		t.Fatalf("expected one underrun warning, got %d", len(underrun))
	}
	fields := underrun[0].ContextMap()
	unconsumed, ok := fields["unconsumed"].([]interface{})
	if !ok || len(unconsumed) != reportLimit+1 {
		t.Fatalf("unexpected unconsumed field %#v", fields["unconsumed"])
	}
	if unconsumed[0] != "10s SEGMENT_START" || unconsumed[reportLimit] != "... 2 more" {
		t.Errorf("unexpected unconsumed events %v", unconsumed)
	}
	if fields["run_id"] != "run-1" {
		t.Errorf("warning is missing the run_id: %v", fields)
	}

	untimed := logs.FilterMessage("Lyric segments were never timed").All()
	if len(untimed) != 1 {
		t.Fatalf("expected one overrun warning, got %d", len(untimed))
	}
	segments, _ := untimed[0].ContextMap()["segments"].([]interface{})
	if len(segments) != 3 || segments[0] != "now" || segments[2] != "then" {
		t.Errorf("unexpected untimed segments %v", segments)
	}
}

func TestVocalSpansLogsWithRunID(t *testing.T) {
	dir := t.TempDir()
	vocals := writeFile(t, dir, "vocals.wav", "not really audio")
	missing := filepath.Join(dir, "no-such-binary")
	t.Setenv(ffmpeg.EnvFFmpegPath, missing)
	t.Setenv(ffmpeg.EnvFFprobePath, missing)

	cfg = config.Default()

	log, logs := observedRun(t)
	if _, err := vocalSpans(context.Background(), log, vocals, ""); err == nil {
		t.Fatal("expected an error without a working ffprobe")
	}

	entries := logs.FilterMessage("Detecting vocal onset").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["run_id"] != "run-1" {
		t.Errorf("entry is missing the run_id: %v", entries[0].ContextMap())
	}
}

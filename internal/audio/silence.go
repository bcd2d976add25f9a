package audio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/karaoke/internal/ffmpeg"
	"github.com/mgpai22/karaoke/internal/timing"
)

var (
	silenceStartPattern = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndPattern   = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
)

// settings for ffmpeg's silencedetect filter
type SilenceOptions struct {
	// level below which audio counts as silence, e.g. -60
	NoiseDB float64
	// shortest pause that is reported
	MinDuration time.Duration
}

func DefaultSilenceOptions() SilenceOptions {
	return SilenceOptions{
		NoiseDB:     -60,
		MinDuration: time.Second,
	}
}

func (o SilenceOptions) filter() string {
	return fmt.Sprintf(
		"silencedetect=noise=%sdB:d=%s",
		strconv.FormatFloat(o.NoiseDB, 'f', -1, 64),
		strconv.FormatFloat(o.MinDuration.Seconds(), 'f', -1, 64),
	)
}

// DetectSilence runs the silencedetect filter over the file and returns
// the silent spans it reports, in order.
func DetectSilence(
	ctx context.Context,
	path string,
	opts SilenceOptions,
) ([]timing.Span, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	// the filter reports on stderr
	var stderr bytes.Buffer
	err = silenceStream(ctx, path, ffmpegPath, opts).
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		return nil, fmt.Errorf("silence detection failed: %w: %s",
			err, lastLine(stderr.String()))
	}

	return parseSilenceOutput(stderr.String())
}

// silenceStream builds the silencedetect run. The stream's context is the
// one the compiled command is bound to, so cancelling ctx kills ffmpeg.
func silenceStream(
	ctx context.Context,
	path, ffmpegPath string,
	opts SilenceOptions,
) *ffmpeg.Stream {
	stream := ffmpeg.Input(path).
		Output("-", ffmpeg.KwArgs{
			"af": opts.filter(),
			"f":  "null",
			"vn": "",
		}).
		GlobalArgs("-hide_banner", "-nostats").
		SetFfmpegPath(ffmpegPath)
	stream.Context = ctx
	return stream
}

// NonSilentSpans runs DetectSilence and the track length lookup, and returns
// the stretches of audible sound.
func NonSilentSpans(
	ctx context.Context,
	path string,
	opts SilenceOptions,
) ([]timing.Span, error) {
	total, err := GetDuration(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}
	silences, err := DetectSilence(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return Complement(silences, total), nil
}

// parseSilenceOutput pairs silence_start and silence_end lines. A start
// without an end runs to the end of the track and is returned with a zero
// End.
func parseSilenceOutput(output string) ([]timing.Span, error) {
	var spans []timing.Span
	var open *timing.Span

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		if m := silenceStartPattern.FindStringSubmatch(line); m != nil {
			start, err := parseSeconds(m[1])
			if err != nil {
				return nil, err
			}
			open = &timing.Span{Start: start}
			continue
		}

		if m := silenceEndPattern.FindStringSubmatch(line); m != nil {
			end, err := parseSeconds(m[1])
			if err != nil {
				return nil, err
			}
			if open == nil {
				open = &timing.Span{}
			}
			open.End = end
			spans = append(spans, *open)
			open = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read silencedetect output: %w", err)
	}

	if open != nil {
		spans = append(spans, *open)
	}
	return spans, nil
}

func parseSeconds(s string) (time.Duration, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid silencedetect timestamp %q: %w", s, err)
	}
	// silencedetect can report slightly negative starts at the head
	if v < 0 {
		v = 0
	}
	return timing.SecondsToDuration(v), nil
}

// Complement turns silent spans into the non-silent spans between them
// within [0, total]. A silent span with a zero End runs to total.
func Complement(silences []timing.Span, total time.Duration) []timing.Span {
	var out []timing.Span
	var cursor time.Duration

	for _, s := range silences {
		end := s.End
		if end == 0 || end > total {
			end = total
		}
		if s.Start > cursor {
			out = append(out, timing.Span{Start: cursor, End: min(s.Start, total)})
		}
		if end > cursor {
			cursor = end
		}
	}
	if cursor < total {
		out = append(out, timing.Span{Start: cursor, End: total})
	}
	return out
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

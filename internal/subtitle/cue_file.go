package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	srtTimingPattern = regexp.MustCompile(
		`^(\d+):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d+):(\d{2}):(\d{2}),(\d{3})`,
	)
	// hours are optional in WebVTT
	vttTimingPattern = regexp.MustCompile(
		`^(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})`,
	)
)

// SRT or VTT file read as a flat list of cues
type CueFile struct {
	format  Format
	entries []Entry
}

func parseSRTFile(path string) (*CueFile, error) {
	return parseCueFile(path, FormatSRT)
}

func parseVTTFile(path string) (*CueFile, error) {
	return parseCueFile(path, FormatVTT)
}

func parseCueFile(path string, format Format) (*CueFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", strings.ToUpper(string(format)), err)
	}
	defer func() {
		_ = file.Close()
	}()

	pattern := srtTimingPattern
	if format == FormatVTT {
		pattern = vttTimingPattern
	}

	cf := &CueFile{format: format}
	scanner := bufio.NewScanner(file)

	var current *Entry
	var textLines []string
	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cf.entries = append(cf.entries, *current)
		}
		current = nil
		textLines = nil
	}

	lineNum := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if format == FormatVTT && current == nil {
			if lineNum == 1 && strings.HasPrefix(trimmed, "WEBVTT") {
				continue
			}
			// metadata blocks run until the next blank line
			if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
				for scanner.Scan() {
					lineNum++
					if strings.TrimSpace(scanner.Text()) == "" {
						break
					}
				}
				continue
			}
		}

		if trimmed == "" {
			flush()
			continue
		}

		if m := pattern.FindStringSubmatch(trimmed); len(m) == 9 {
			flush()
			start, err := cueTimestamp(m[1:5])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := cueTimestamp(m[5:9])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &Entry{
				Index:     len(cf.entries) + 1,
				StartTime: start,
				EndTime:   end,
			}
			continue
		}

		// cue identifiers are dropped, entries are renumbered
		if current == nil {
			continue
		}
		textLines = append(textLines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s file: %w", strings.ToUpper(string(format)), err)
	}

	return cf, nil
}

// hours, minutes, seconds, milliseconds; empty hours mean zero
func cueTimestamp(parts []string) (time.Duration, error) {
	units := []time.Duration{time.Hour, time.Minute, time.Second, time.Millisecond}

	var total time.Duration
	for i, p := range parts {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, err
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}

func (f *CueFile) Format() Format {
	return f.format
}

func (f *CueFile) Subtitle() *Subtitle {
	return &Subtitle{
		Entries: f.entries,
		Format:  string(f.format),
	}
}

// moves cue times by delta, clamping at zero
func (f *CueFile) Shift(delta time.Duration) {
	for i := range f.entries {
		f.entries[i].StartTime = max(f.entries[i].StartTime+delta, 0)
		f.entries[i].EndTime = max(f.entries[i].EndTime+delta, 0)
	}
}

func (f *CueFile) Write(path string) error {
	writer, err := NewWriter(f.format)
	if err != nil {
		return err
	}
	return writer.Write(f.Subtitle(), path)
}

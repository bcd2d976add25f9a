package lyrics

import "strings"

// markup characters recognised in lyric text
const (
	LineBreak  = '\n'
	SubBreak   = '/'
	SpaceBreak = '_'
)

type ParseOptions struct {
	// keep '/' and '_' in the emitted segment text instead of
	// removing or replacing them
	KeepMarkup bool
}

// Parse splits lyric text into timed segments.
//
// A line feed ends a segment and stays on its text, so a segment ending in
// "\n" closes a line and one ending in "\n\n" closes a screen. '/' ends a
// segment and is dropped, '_' ends a segment and becomes a space. The last
// character of the input always ends the last segment.
func Parse(text string) []string {
	return ParseWithOptions(text, ParseOptions{})
}

func ParseWithOptions(text string, opts ParseOptions) []string {
	runes := []rune(text)
	segments := make([]string, 0, len(runes)/4+1)

	var current strings.Builder
	for i, r := range runes {
		finish := false
		emit := string(r)

		if isBreak(r) || i == len(runes)-1 {
			finish = true
			if !opts.KeepMarkup {
				switch r {
				case SubBreak:
					emit = ""
				case SpaceBreak:
					emit = " "
				}
			}
		}

		// blank line: extend the previous segment so it ends in "\n\n"
		if r == LineBreak && current.Len() == 0 {
			if len(segments) > 0 {
				segments[len(segments)-1] += string(LineBreak)
			}
			continue
		}

		current.WriteString(emit)
		if finish {
			segments = append(segments, current.String())
			current.Reset()
		}
	}

	return segments
}

// reports whether the segment closes its line
func EndsLine(segment string) bool {
	return strings.HasSuffix(segment, "\n")
}

// reports whether the segment closes its screen
func EndsScreen(segment string) bool {
	return strings.HasSuffix(segment, "\n\n")
}

// segment text as displayed, without its line break markers
func DisplayText(segment string) string {
	return strings.TrimRight(segment, "\n")
}

func isBreak(r rune) bool {
	return r == LineBreak || r == SubBreak || r == SpaceBreak
}

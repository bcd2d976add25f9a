package subtitle

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mgpai22/karaoke/internal/timing"
)

// LineGenerator exports every lyric Line as one plain cue spanning the
// Line's own start and end. Count-in segments are left out.
type LineGenerator struct {
	MaxCharsPerLine int
	// short cues are stretched up to this length without overlapping the
	// next cue
	MinDuration time.Duration
}

func NewLineGenerator() *LineGenerator {
	return &LineGenerator{
		MaxCharsPerLine: 42,
		MinDuration:     time.Second,
	}
}

func (g *LineGenerator) Generate(screens []timing.Screen) (*Subtitle, error) {
	var entries []Entry

	for _, screen := range screens {
		for _, line := range screen.Lines {
			entry, ok := lineEntry(line)
			if !ok {
				continue
			}
			entry.Index = len(entries) + 1
			entry.Text = g.formatText(entry.Text)
			entries = append(entries, entry)
		}
	}

	for i := range entries {
		if entries[i].EndTime-entries[i].StartTime >= g.MinDuration {
			continue
		}
		end := entries[i].StartTime + g.MinDuration
		if i+1 < len(entries) && end > entries[i+1].StartTime {
			end = entries[i+1].StartTime
		}
		if end > entries[i].EndTime {
			entries[i].EndTime = end
		}
	}

	if entries == nil {
		entries = []Entry{}
	}
	return &Subtitle{
		Entries: entries,
		Format:  string(FormatSRT),
	}, nil
}

func lineEntry(line timing.Line) (Entry, bool) {
	var sb strings.Builder
	var entry Entry
	started := false

	for _, seg := range line.Segments {
		if seg.Synthetic {
			continue
		}
		if !started {
			entry.StartTime = seg.Start
			started = true
		}
		if seg.HasEnd {
			entry.EndTime = seg.End
		} else {
			entry.EndTime = seg.Start
		}
		sb.WriteString(seg.DisplayText())
	}

	entry.Text = strings.TrimSpace(sb.String())
	return entry, started && entry.Text != ""
}

// formatText formats text for display with line wrapping
func (g *LineGenerator) formatText(text string) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)

	// if text fits on one line, return as is
	if g.MaxCharsPerLine <= 0 || runeCount <= g.MaxCharsPerLine {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	// split closest to the middle
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		line1 := strings.Join(words[:bestSplit], " ")
		line2 := strings.Join(words[bestSplit:], " ")
		return line1 + "\n" + line2
	}

	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package timing

import (
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/karaoke/internal/lyrics"
)

// smallest timed unit of lyric text
type Segment struct {
	Text   string
	Start  time.Duration
	End    time.Duration
	HasEnd bool
	// inserted by the compiler rather than marked by the user (count-ins)
	Synthetic bool
}

func (s *Segment) SetEnd(end time.Duration) {
	s.End = end
	s.HasEnd = true
}

// text as shown on screen, without line break markers
func (s Segment) DisplayText() string {
	return lyrics.DisplayText(s.Text)
}

// segments shown together as one row
type Line struct {
	Segments []Segment
}

func (l Line) Start() time.Duration {
	if len(l.Segments) == 0 {
		return 0
	}
	return l.Segments[0].Start
}

// end of the last segment; ok is false while it is unresolved
func (l Line) End() (time.Duration, bool) {
	if len(l.Segments) == 0 {
		return 0, false
	}
	last := l.Segments[len(l.Segments)-1]
	return last.End, last.HasEnd
}

func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Segments {
		sb.WriteString(s.DisplayText())
	}
	return sb.String()
}

// lines displayed together as one frame
type Screen struct {
	Lines    []Line
	Start    time.Duration
	HasStart bool
}

func (s Screen) End() (time.Duration, bool) {
	if len(s.Lines) == 0 {
		return s.Start, s.HasStart
	}
	return s.Lines[len(s.Lines)-1].End()
}

func (s Screen) String() string {
	end, _ := s.End()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s - %s:", s.Start, end)
	for _, l := range s.Lines {
		fmt.Fprintf(&sb, "\n\t%s", l.Text())
	}
	return sb.String()
}

// all segments in display order, addressable for in-place updates
func Segments(screens []Screen) []*Segment {
	var out []*Segment
	for i := range screens {
		for j := range screens[i].Lines {
			for k := range screens[i].Lines[j].Segments {
				out = append(out, &screens[i].Lines[j].Segments[k])
			}
		}
	}
	return out
}

func CountSegments(screens []Screen) int {
	n := 0
	for _, s := range screens {
		for _, l := range s.Lines {
			n += len(l.Segments)
		}
	}
	return n
}

// deep copy, the result shares no slices with screens
func Clone(screens []Screen) []Screen {
	if screens == nil {
		return nil
	}
	out := make([]Screen, len(screens))
	for i, s := range screens {
		out[i] = Screen{Start: s.Start, HasStart: s.HasStart}
		out[i].Lines = make([]Line, len(s.Lines))
		for j, l := range s.Lines {
			out[i].Lines[j].Segments = append([]Segment(nil), l.Segments...)
		}
	}
	return out
}

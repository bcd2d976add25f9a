package timing

import (
	"fmt"

	"github.com/mgpai22/karaoke/internal/lyrics"
)

// result of replaying timing events against lyric segments
type Compilation struct {
	Screens []Screen
	// segments never started because the events ran out
	Untimed []string
}

// Compile replays timing events in order against the parsed segments and
// builds the screen tree.
//
// Each SegmentStart consumes the next segment and stamps its start. A
// segment ending in one line feed closes the current line, one ending in
// two also closes the current screen. SegmentEnd stamps the end of the most
// recently started segment and is ignored before the first start.
//
// When the events ask for more segments than exist, the screens compiled so
// far are returned together with an *UnderrunError.
func Compile(segments []string, events []Event) (*Compilation, error) {
	if err := ValidateEvents(events); err != nil {
		return nil, err
	}

	c := &compiler{segments: segments}
	for i, e := range events {
		switch e.Marker {
		case SegmentStart:
			if c.next >= len(c.segments) {
				c.finish()
				return &Compilation{Screens: c.screens}, &UnderrunError{
					Compiled:  c.next,
					Remaining: append([]Event(nil), events[i:]...),
				}
			}
			c.start(e)
		case SegmentEnd:
			c.end(e)
		default:
			return nil, fmt.Errorf("event %d: %w", i, ErrInvalidMarker)
		}
	}
	c.finish()

	return &Compilation{
		Screens: c.screens,
		Untimed: append([]string(nil), segments[c.next:]...),
	}, nil
}

type compiler struct {
	segments []string
	next     int

	screens []Screen
	screen  *Screen
	line    *Line
	// most recently started segment; closed lines keep sharing its
	// backing array so the pointer stays valid
	last *Segment
}

func (c *compiler) start(e Event) {
	text := c.segments[c.next]
	c.next++

	if c.screen == nil {
		c.screen = &Screen{}
	}
	if c.line == nil {
		c.line = &Line{}
	}
	c.line.Segments = append(c.line.Segments, Segment{Text: text, Start: e.Timestamp})
	c.last = &c.line.Segments[len(c.line.Segments)-1]

	if lyrics.EndsLine(text) {
		c.closeLine()
	}
	if lyrics.EndsScreen(text) {
		c.closeScreen()
	}
}

func (c *compiler) end(e Event) {
	if c.last == nil {
		return
	}
	c.last.SetEnd(e.Timestamp)
}

func (c *compiler) closeLine() {
	if c.line == nil {
		return
	}
	c.screen.Lines = append(c.screen.Lines, *c.line)
	c.line = nil
}

func (c *compiler) closeScreen() {
	if c.screen == nil {
		return
	}
	c.screens = append(c.screens, *c.screen)
	c.screen = nil
}

func (c *compiler) finish() {
	if c.line != nil {
		c.closeLine()
	}
	if c.screen != nil && len(c.screen.Lines) > 0 {
		c.closeScreen()
	}
	c.screen = nil
}

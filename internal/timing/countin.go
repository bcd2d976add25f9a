package timing

import "time"

// settings for count-in segments ahead of long instrumental gaps
type CountIn struct {
	// minimum silence before a screen that earns a count-in
	Threshold time.Duration
	Duration  time.Duration
	Text      string
}

func DefaultCountIn() CountIn {
	return CountIn{
		Threshold: 5 * time.Second,
		Duration:  3 * time.Second,
		Text:      "●●● ",
	}
}

// AddCountIns prepends a synthetic count-in segment to the first line of
// every screen whose first segment starts more than Threshold after the
// previous screen ended (or after zero for the first screen). Segment ends
// must be resolved. Returns the number of count-ins added.
func AddCountIns(screens []Screen, c CountIn) int {
	added := 0
	var prevEnd time.Duration
	for i := range screens {
		screen := &screens[i]
		if len(screen.Lines) == 0 || len(screen.Lines[0].Segments) == 0 {
			continue
		}
		first := screen.Lines[0].Segments[0]
		if first.Start-prevEnd > c.Threshold {
			countIn := Segment{
				Text:      c.Text,
				Start:     first.Start - c.Duration,
				End:       first.Start,
				HasEnd:    true,
				Synthetic: true,
			}
			screen.Lines[0].Segments = append(
				[]Segment{countIn},
				screen.Lines[0].Segments...,
			)
			added++
		}
		prevEnd, _ = screen.End()
	}
	return added
}

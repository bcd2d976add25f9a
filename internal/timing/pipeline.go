package timing

import (
	"errors"
	"time"

	"github.com/mgpai22/karaoke/internal/lyrics"
)

// settings for a full compilation run
type Options struct {
	// length of the backing track, used to end the last segment
	TrackDuration time.Duration
	// zero means ScreenGap
	ScreenGap time.Duration
	// nil disables count-ins
	CountIn *CountIn
	// non-silent spans of the vocal stem; nil disables offset correction
	VocalSpans []Span
}

// outcome of a compilation run
type Result struct {
	Screens []Screen
	// normalized screens before offset correction
	Uncorrected []Screen
	Untimed     []string
	// set when the events outnumbered the segments; Screens is truncated
	Underrun *UnderrunError

	CountIns      int
	Onset         time.Duration
	OnsetDetected bool
	Adjustment    time.Duration
}

// Build runs the whole pipeline: parse, replay, infer end times, add
// count-ins, normalize screen starts and optionally correct the offset.
func Build(text string, events []Event, opts Options) (*Result, error) {
	segments := lyrics.Parse(text)

	comp, err := Compile(segments, events)
	res := &Result{}
	if err != nil {
		if !errors.As(err, &res.Underrun) {
			return nil, err
		}
	}
	res.Untimed = comp.Untimed

	screens := comp.Screens
	if len(screens) == 0 {
		return nil, ErrNoScreens
	}

	if err := InferEndTimes(screens, opts.TrackDuration); err != nil {
		return nil, err
	}

	if opts.CountIn != nil {
		res.CountIns = AddCountIns(screens, *opts.CountIn)
	}

	gap := opts.ScreenGap
	if gap <= 0 {
		gap = ScreenGap
	}
	NormalizeScreenStartsWithGap(screens, gap)

	res.Uncorrected = screens
	res.Screens = screens

	if opts.VocalSpans != nil {
		first, _ := FirstMarked(screens)
		res.Onset, res.OnsetDetected = VocalOnset(opts.VocalSpans, first.Start)
		res.Screens, res.Adjustment = Correct(screens, res.Onset, res.OnsetDetected)
	}

	return res, nil
}

package timing

import "time"

// stretch of audio, typically a non-silent span of the vocal stem
type Span struct {
	Start time.Duration
	End   time.Duration
}

// Shift returns a copy of screens with every segment start and end and
// every set screen start moved by delta. screens is left untouched.
func Shift(screens []Screen, delta time.Duration) []Screen {
	out := Clone(screens)
	for i := range out {
		if out[i].HasStart {
			out[i].Start += delta
		}
	}
	for _, seg := range Segments(out) {
		seg.Start += delta
		if seg.HasEnd {
			seg.End += delta
		}
	}
	return out
}

// first segment the user actually marked
func FirstMarked(screens []Screen) (Segment, bool) {
	for _, seg := range Segments(screens) {
		if !seg.Synthetic {
			return *seg, true
		}
	}
	return Segment{}, false
}

// VocalOnset picks the start of the last non-silent span that begins at or
// before the first marked segment. ok is false when every span begins later.
func VocalOnset(nonSilent []Span, firstMark time.Duration) (onset time.Duration, ok bool) {
	for _, span := range nonSilent {
		if span.Start > firstMark {
			break
		}
		onset = span.Start
		ok = true
	}
	return onset, ok
}

// Correct aligns the first marked segment with the detected vocal onset by
// shifting the whole tree. Without a detected onset the input is returned
// unchanged. Timestamps may become negative; nothing is clamped.
func Correct(screens []Screen, onset time.Duration, detected bool) ([]Screen, time.Duration) {
	if !detected {
		return screens, 0
	}
	first, ok := FirstMarked(screens)
	if !ok {
		return screens, 0
	}
	adjustment := onset - first.Start
	return Shift(screens, adjustment), adjustment
}

package timing

import (
	"fmt"
	"time"
)

// InferEndTimes fills every unset segment end. A segment ends where the
// next one starts; the last segment ends with the track. Segments must be
// in chronological order across all screens. Already-set ends are kept,
// so running it twice changes nothing.
func InferEndTimes(screens []Screen, trackDuration time.Duration) error {
	segments := Segments(screens)
	for i := 1; i < len(segments); i++ {
		if segments[i].Start < segments[i-1].Start {
			return fmt.Errorf(
				"segment %d (%q) starts at %s before segment %d at %s: %w",
				i, segments[i].Text, segments[i].Start,
				i-1, segments[i-1].Start, ErrOutOfOrder,
			)
		}
	}

	for i, seg := range segments {
		if seg.HasEnd {
			continue
		}
		if i < len(segments)-1 {
			seg.SetEnd(segments[i+1].Start)
			continue
		}
		if trackDuration <= 0 {
			return ErrMissingDuration
		}
		if trackDuration < seg.Start {
			return fmt.Errorf(
				"%w: track is %s, last segment starts at %s",
				ErrTrackTooShort, trackDuration, seg.Start,
			)
		}
		seg.SetEnd(trackDuration)
	}
	return nil
}

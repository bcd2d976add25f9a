package timing

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDuration = errors.New("track duration is required to time the last segment")
	ErrTrackTooShort   = errors.New("track ends before the last segment starts")
	ErrOutOfOrder      = errors.New("timestamps are not in chronological order")
	ErrInvalidMarker   = errors.New("invalid lyric marker")
	ErrNoScreens       = errors.New("no screens compiled from lyrics and timing events")
)

// UnderrunError reports timing events that asked for more segments than
// the lyrics contain. Compilation stops at the first unmatched start.
type UnderrunError struct {
	Compiled  int
	Remaining []Event
}

func (e *UnderrunError) Error() string {
	return fmt.Sprintf(
		"reached end of lyric segments before end of timing events: %d segments compiled, %d events left",
		e.Compiled,
		len(e.Remaining),
	)
}

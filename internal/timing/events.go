package timing

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// boundary kind of a timing event
type Marker int

const (
	SegmentStart Marker = 1
	SegmentEnd   Marker = 2
)

func (m Marker) String() string {
	switch m {
	case SegmentStart:
		return "SEGMENT_START"
	case SegmentEnd:
		return "SEGMENT_END"
	default:
		return fmt.Sprintf("Marker(%d)", int(m))
	}
}

func (m Marker) Valid() bool {
	return m == SegmentStart || m == SegmentEnd
}

// single captured keystroke, encoded as [seconds, marker]
type Event struct {
	Timestamp time.Duration
	Marker    Marker
}

func (e Event) MarshalJSON() ([]byte, error) {
	seconds := strconv.FormatFloat(e.Timestamp.Seconds(), 'f', -1, 64)
	return []byte("[" + seconds + "," + strconv.Itoa(int(e.Marker)) + "]"), nil
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var pair []json.Number
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("timing event must be a [seconds, marker] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("timing event must have 2 fields, got %d", len(pair))
	}

	seconds, err := strconv.ParseFloat(pair[0].String(), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", pair[0], err)
	}
	marker, err := strconv.Atoi(pair[1].String())
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMarker, pair[1])
	}

	e.Timestamp = SecondsToDuration(seconds)
	e.Marker = Marker(marker)
	if !e.Marker.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMarker, marker)
	}
	return nil
}

// converts float seconds to a duration rounded to the nanosecond
func SecondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

func ParseEvents(data []byte) ([]Event, error) {
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse timing events: %w", err)
	}
	return events, nil
}

func MarshalEvents(events []Event) ([]byte, error) {
	if events == nil {
		events = []Event{}
	}
	return json.MarshalIndent(events, "", "  ")
}

func ReadEventsFile(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timings file: %w", err)
	}
	return ParseEvents(data)
}

func WriteEventsFile(path string, events []Event) error {
	data, err := MarshalEvents(events)
	if err != nil {
		return fmt.Errorf("failed to encode timing events: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ValidateEvents checks markers and that timestamps never decrease.
func ValidateEvents(events []Event) error {
	for i, e := range events {
		if !e.Marker.Valid() {
			return fmt.Errorf("event %d: %w: %d", i, ErrInvalidMarker, int(e.Marker))
		}
		if e.Timestamp < 0 {
			return fmt.Errorf("event %d: negative timestamp %s", i, e.Timestamp)
		}
		if i > 0 && e.Timestamp < events[i-1].Timestamp {
			return fmt.Errorf(
				"event %d at %s precedes event %d at %s: %w",
				i, e.Timestamp, i-1, events[i-1].Timestamp, ErrOutOfOrder,
			)
		}
	}
	return nil
}

// EventsFromScreens re-encodes a compiled tree as the event stream that
// would compile back to it. Synthetic segments are skipped.
func EventsFromScreens(screens []Screen) []Event {
	var events []Event
	for _, seg := range Segments(screens) {
		if seg.Synthetic {
			continue
		}
		events = append(events, Event{Timestamp: seg.Start, Marker: SegmentStart})
		if seg.HasEnd {
			events = append(events, Event{Timestamp: seg.End, Marker: SegmentEnd})
		}
	}
	return events
}

// counts of each marker kind
func CountMarkers(events []Event) (starts, ends int) {
	for _, e := range events {
		switch e.Marker {
		case SegmentStart:
			starts++
		case SegmentEnd:
			ends++
		}
	}
	return starts, ends
}

package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/karaoke/internal/lyrics"
)

func compiled(t *testing.T, text string, events []Event) []Screen {
	t.Helper()
	comp, err := Compile(lyrics.Parse(text), events)
	require.NoError(t, err)
	return comp.Screens
}

func TestInferEndTimes(t *testing.T) {
	screens := compiled(t, beBop, beBopEvents())
	require.NoError(t, InferEndTimes(screens, 60*time.Second))

	assert.Equal(t, sec(2), screens[0].Lines[0].Segments[0].End)
	assert.Equal(t, sec(4), screens[0].Lines[0].Segments[1].End)
	assert.Equal(t, sec(5), screens[0].Lines[1].Segments[0].End)
	assert.Equal(t, sec(6), screens[0].Lines[1].Segments[1].End)
	assert.Equal(t, sec(7), screens[1].Lines[0].Segments[0].End)
	assert.Equal(t, sec(60), screens[1].Lines[0].Segments[3].End)

	for _, seg := range Segments(screens) {
		assert.True(t, seg.HasEnd)
		assert.GreaterOrEqual(t, seg.End, seg.Start)
	}
}

func TestInferEndTimesIsIdempotent(t *testing.T) {
	screens := compiled(t, beBop, beBopEvents())
	require.NoError(t, InferEndTimes(screens, 60*time.Second))
	once := Clone(screens)

	require.NoError(t, InferEndTimes(screens, 60*time.Second))
	assert.Equal(t, once, screens)

	// the duration is not consulted once everything is timed
	require.NoError(t, InferEndTimes(screens, 0))
	assert.Equal(t, once, screens)
}

func TestInferEndTimesMissingDuration(t *testing.T) {
	screens := compiled(t, beBop, beBopEvents())
	assert.ErrorIs(t, InferEndTimes(screens, 0), ErrMissingDuration)
}

func TestInferEndTimesTrackTooShort(t *testing.T) {
	screens := compiled(t, beBop, beBopEvents())
	assert.ErrorIs(t, InferEndTimes(screens, 8*time.Second), ErrTrackTooShort)
}

func TestInferEndTimesRejectsUnorderedSegments(t *testing.T) {
	screens := compiled(t, beBop, beBopEvents())
	screens[1].Lines[0].Segments[0].Start = sec(0.5)
	assert.ErrorIs(t, InferEndTimes(screens, 60*time.Second), ErrOutOfOrder)
}

func TestNormalizeScreenStarts(t *testing.T) {
	screens := compiled(t, "a\n\nb\n\nc", starts(1, 2, 3))
	require.NoError(t, InferEndTimes(screens, 10*time.Second))
	NormalizeScreenStarts(screens)

	require.Len(t, screens, 3)
	assert.True(t, screens[0].HasStart)
	assert.Equal(t, time.Duration(0), screens[0].Start)
	for i := 0; i+1 < len(screens); i++ {
		end, ok := screens[i].End()
		require.True(t, ok)
		assert.Equal(t, end+ScreenGap, screens[i+1].Start)
		assert.GreaterOrEqual(t, screens[i+1].Start, end)
	}
}

func TestShiftIsPureTranslation(t *testing.T) {
	original := compiled(t, beBop, beBopEvents())
	NormalizeScreenStarts(original)
	before := Clone(original)

	delta := -750 * time.Millisecond
	shifted := Shift(original, delta)

	assert.Equal(t, before, original, "input must not be mutated")

	orig, moved := Segments(original), Segments(shifted)
	require.Len(t, moved, len(orig))
	for i := range orig {
		assert.Equal(t, delta, moved[i].Start-orig[i].Start)
		assert.Equal(t, orig[i].HasEnd, moved[i].HasEnd)
		if orig[i].HasEnd {
			assert.Equal(t, delta, moved[i].End-orig[i].End)
		}
	}
	for i := range original {
		assert.Equal(t, delta, shifted[i].Start-original[i].Start)
	}
}

func TestVocalOnset(t *testing.T) {
	spans := []Span{
		{Start: sec(0.2), End: sec(0.4)},
		{Start: sec(1.8), End: sec(5)},
		{Start: sec(6), End: sec(9)},
	}

	onset, ok := VocalOnset(spans, sec(2))
	assert.True(t, ok)
	assert.Equal(t, sec(1.8), onset)

	_, ok = VocalOnset(spans, sec(0.1))
	assert.False(t, ok)

	_, ok = VocalOnset(nil, sec(2))
	assert.False(t, ok)
}

func TestCorrect(t *testing.T) {
	screens := compiled(t, beBop, beBopEvents())
	require.NoError(t, InferEndTimes(screens, 60*time.Second))
	NormalizeScreenStarts(screens)

	t.Run("no onset leaves input unchanged", func(t *testing.T) {
		before := Clone(screens)
		out, adj := Correct(screens, 0, false)
		assert.Equal(t, time.Duration(0), adj)
		assert.Equal(t, before, out)
	})

	t.Run("onset after first mark shifts later", func(t *testing.T) {
		out, adj := Correct(screens, sec(1.25), true)
		assert.Equal(t, sec(0.25), adj)
		assert.Equal(t, sec(1.25), out[0].Lines[0].Segments[0].Start)
		assert.Equal(t, sec(1), screens[0].Lines[0].Segments[0].Start)
	})

	t.Run("negative adjustment is not clamped", func(t *testing.T) {
		out, adj := Correct(screens, 0, true)
		assert.Equal(t, sec(-1), adj)
		assert.Equal(t, sec(-1), out[0].Start)
		assert.Equal(t, time.Duration(0), out[0].Lines[0].Segments[0].Start)
	})
}

func TestAddCountIns(t *testing.T) {
	events := []Event{
		{sec(10), SegmentStart},
		{sec(12), SegmentStart},
		{sec(13), SegmentEnd},
		{sec(30), SegmentStart},
	}
	screens := compiled(t, "That was a long intro\n\nright away\n\nmuch later", events)
	require.NoError(t, InferEndTimes(screens, 40*time.Second))

	added := AddCountIns(screens, DefaultCountIn())
	assert.Equal(t, 2, added)

	first := screens[0].Lines[0].Segments[0]
	assert.True(t, first.Synthetic)
	assert.Equal(t, "●●● ", first.Text)
	assert.Equal(t, sec(7), first.Start)
	assert.Equal(t, sec(10), first.End)

	assert.False(t, screens[1].Lines[0].Segments[0].Synthetic)

	third := screens[2].Lines[0].Segments[0]
	assert.True(t, third.Synthetic)
	assert.Equal(t, sec(27), third.Start)

	marked, ok := FirstMarked(screens)
	require.True(t, ok)
	assert.Equal(t, sec(10), marked.Start)
}

func TestBuild(t *testing.T) {
	res, err := Build(beBop, beBopEvents(), Options{TrackDuration: 60 * time.Second})
	require.NoError(t, err)

	assert.Nil(t, res.Underrun)
	require.Len(t, res.Screens, 2)
	assert.Equal(t, time.Duration(0), res.Screens[0].Start)
	assert.Equal(t, sec(6.1), res.Screens[1].Start)
	assert.Equal(t, 0, res.CountIns)
}

func TestBuildWithCorrection(t *testing.T) {
	countIn := DefaultCountIn()
	events := []Event{{sec(8), SegmentStart}, {sec(9), SegmentStart}}
	res, err := Build("late\nstart", events, Options{
		TrackDuration: 20 * time.Second,
		CountIn:       &countIn,
		VocalSpans:    []Span{{Start: sec(7.5), End: sec(12)}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.CountIns)
	assert.True(t, res.OnsetDetected)
	assert.Equal(t, sec(-0.5), res.Adjustment)

	marked, _ := FirstMarked(res.Screens)
	assert.Equal(t, sec(7.5), marked.Start)
	uncorrected, _ := FirstMarked(res.Uncorrected)
	assert.Equal(t, sec(8), uncorrected.Start)
}

func TestBuildSkipsCorrectionWithoutOnset(t *testing.T) {
	res, err := Build(beBop, beBopEvents(), Options{
		TrackDuration: 60 * time.Second,
		VocalSpans:    []Span{},
	})
	require.NoError(t, err)

	assert.False(t, res.OnsetDetected)
	assert.Equal(t, res.Uncorrected, res.Screens)
}

func TestBuildUnderrunKeepsCompiledScreens(t *testing.T) {
	res, err := Build("a_b", starts(1, 2, 3), Options{TrackDuration: 10 * time.Second})
	require.NoError(t, err)
	require.NotNil(t, res.Underrun)
	assert.Equal(t, 2, CountSegments(res.Screens))
}

func TestBuildNoScreens(t *testing.T) {
	_, err := Build("a_b", nil, Options{TrackDuration: time.Second})
	assert.ErrorIs(t, err, ErrNoScreens)
}

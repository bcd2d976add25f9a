package timing

import "time"

// pause between one screen ending and the next one appearing
const ScreenGap = 100 * time.Millisecond

// NormalizeScreenStarts starts the first screen at zero and every later
// screen ScreenGap after the previous one ends. Segment ends must be
// resolved first.
func NormalizeScreenStarts(screens []Screen) {
	NormalizeScreenStartsWithGap(screens, ScreenGap)
}

func NormalizeScreenStartsWithGap(screens []Screen, gap time.Duration) {
	for i := range screens {
		screens[i].HasStart = true
		if i == 0 {
			screens[i].Start = 0
			continue
		}
		prevEnd, _ := screens[i-1].End()
		screens[i].Start = prevEnd + gap
	}
}

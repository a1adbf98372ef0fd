// Package thumbs provides thumbnail strip generation: the acquisition
// interval and pitch policy that decide how many frames to grab and how
// wide each slot is, and an FFmpeg-backed generator that produces them.
package thumbs

import "math"

// Layout policy constants
const (
	// DefaultMinCount and DefaultMaxCount bound the thumbnail count per strip
	DefaultMinCount = 20
	DefaultMaxCount = 100

	// MinPitch is the floor width of a thumbnail slot, applied when video
	// track metadata is missing or degenerate
	MinPitch = 22.0

	// defaultAspect is the width/height ratio assumed without a video track
	defaultAspect = 4.0 / 3.0
)

// AdjustInterval picks the acquisition interval so the thumbnail count
// duration/interval lands within [minCount, maxCount]. When the naive
// interval already produces a count in band it is returned unchanged;
// otherwise the interval is recomputed against the violated bound.
func AdjustInterval(duration, naive float64, minCount, maxCount int) float64 {
	if duration <= 0 || naive <= 0 {
		return naive
	}

	count := duration / naive
	if count < float64(minCount) {
		return duration / float64(minCount)
	}
	if count > float64(maxCount) {
		return duration / float64(maxCount)
	}
	return naive
}

// Count returns the number of thumbnails a strip holds for the given
// duration and interval
func Count(duration, interval float64) int {
	if duration <= 0 || interval <= 0 {
		return 0
	}
	return int(math.Ceil(duration / interval))
}

// PitchFor computes the horizontal width of one thumbnail slot from the
// video's natural size and the fixed row height. Missing or degenerate
// dimensions fall back to a 4:3 aspect, and the result never drops below
// MinPitch.
func PitchFor(width, height int, rowHeight float64) float64 {
	aspect := defaultAspect
	if width > 0 && height > 0 {
		aspect = float64(width) / float64(height)
	}

	pitch := rowHeight * aspect
	if pitch < MinPitch {
		pitch = MinPitch
	}
	return pitch
}

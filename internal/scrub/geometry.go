// Package scrub provides the timeline scrubber logic: the linear mapping
// between playback time and strip scroll offset, label placement along the
// strip, and the synchronizer that arbitrates between playback-driven and
// drag-driven scrolling.
package scrub

// Geometry describes the fixed layout of a thumbnail strip for one video.
// It is computed once, after thumbnail generation finishes, and is immutable.
//
// The strip is padded on both sides by half the viewport width so the
// playhead marker, fixed at the viewport center, can represent both time 0
// and time = duration.
type Geometry struct {
	// Duration is the video length in seconds
	Duration float64

	// Pitch is the horizontal width allotted per thumbnail
	Pitch float64

	// ThumbCount is the number of thumbnails in the strip
	ThumbCount int

	// ViewportWidth is the visible width of the scroll viewport
	ViewportWidth float64
}

// NewGeometry validates and builds a strip geometry.
// All dimensions must be positive; conversions on a zero geometry would
// divide by zero.
func NewGeometry(duration, pitch float64, thumbCount int, viewportWidth float64) (Geometry, error) {
	if duration <= 0 {
		return Geometry{}, ErrInvalidDuration
	}
	if pitch <= 0 || thumbCount <= 0 || viewportWidth <= 0 {
		return Geometry{}, ErrInvalidLayout
	}
	return Geometry{
		Duration:      duration,
		Pitch:         pitch,
		ThumbCount:    thumbCount,
		ViewportWidth: viewportWidth,
	}, nil
}

// ContentWidth returns the total scrollable width of the strip content
func (g Geometry) ContentWidth() float64 {
	return float64(g.ThumbCount) * g.Pitch
}

// Padding returns the symmetric horizontal padding added to each side
func (g Geometry) Padding() float64 {
	return g.ViewportWidth / 2
}

// MinOffset returns the scroll offset representing time 0
func (g Geometry) MinOffset() float64 {
	return -g.Padding()
}

// MaxOffset returns the scroll offset representing time = duration
func (g Geometry) MaxOffset() float64 {
	return g.ContentWidth() - g.ViewportWidth + g.Padding()
}

// OffsetForTime maps a playback time to a scroll offset using the linear
// mapping offset = -padding + time * (contentWidth / duration).
// Times outside [0, duration] are clamped.
func (g Geometry) OffsetForTime(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > g.Duration {
		t = g.Duration
	}
	return -g.Padding() + t*(g.ContentWidth()/g.Duration)
}

// TimeForOffset maps a scroll offset back to a playback time. The offset is
// translated into content space by removing the padding, clamped to
// [0, contentWidth], and scaled by duration.
func (g Geometry) TimeForOffset(offset float64) float64 {
	content := offset + g.Padding()
	width := g.ContentWidth()
	if content < 0 {
		content = 0
	}
	if content > width {
		content = width
	}
	return content / width * g.Duration
}

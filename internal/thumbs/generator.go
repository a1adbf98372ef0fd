package thumbs

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrEmptySource   = errors.New("source file cannot be empty")
	ErrEmptyOutput   = errors.New("output directory cannot be empty")
	ErrInvalidParams = errors.New("interval and count must be positive")
	ErrCancelled     = errors.New("thumbnail generation cancelled")
)

// Request describes one strip generation run
type Request struct {
	Source    string  // Path to the input video file
	OutputDir string  // Directory receiving the JPEG frames
	Interval  float64 // Seconds of media time between frames
	Count     int     // Total number of frames to produce
	MaxWidth  int     // Maximum frame width in pixels
	MaxHeight int     // Maximum frame height in pixels
}

// Result is one generated thumbnail, delivered in increasing index order.
// A frame that failed to decode carries an empty Path and a non-nil Err;
// consumers skip that slot and keep going. The result carrying
// Index == Total-1 is the single signal that the strip is fully loaded.
type Result struct {
	Path  string // Path to the JPEG, empty on failure
	Index int    // Zero-based frame index
	Total int    // Total frame count for the run
	Err   error  // Per-frame failure, nil on success
}

// Generator produces an ordered sequence of thumbnails for a video.
// Generate blocks until the run completes or ctx is cancelled; sink is
// invoked once per frame, in order, from the generator's goroutine.
type Generator interface {
	Generate(ctx context.Context, req Request, sink func(Result)) error
}

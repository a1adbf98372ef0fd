package scrub

import (
	"math"
	"sync"
	"time"

	"github.com/zcsoft/videotimeline/internal/logger"
	"github.com/zcsoft/videotimeline/internal/playback"
)

// Default tuning, matching the native player behavior this mirrors
const (
	// DefaultSeekThrottle is the minimum distance between issued seek targets
	DefaultSeekThrottle = 300 * time.Millisecond

	// DefaultFinishResetDelay is how long after playback finishes the
	// timeline rewinds to its start
	DefaultFinishResetDelay = 500 * time.Millisecond
)

// Mode determines which side drives the scroll position
type Mode int

const (
	// ModeFollowing means engine time updates drive the scroll offset
	ModeFollowing Mode = iota
	// ModeDragging means the user's scroll offset drives seek targets
	ModeDragging
)

// String returns the string representation of Mode
func (m Mode) String() string {
	switch m {
	case ModeFollowing:
		return "following"
	case ModeDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Config holds synchronizer tuning parameters
type Config struct {
	// SeekThrottle drops a seek whose target is within this distance (as
	// seconds of media time) of the previously issued seek target
	SeekThrottle time.Duration

	// FinishResetDelay is the pause between the finished status edge and
	// the rewind to time zero
	FinishResetDelay time.Duration
}

// Synchronizer bridges scroll position and playback time. Exactly one of
// two parties drives the relationship at any instant: while Following, the
// engine's time updates produce scroll offsets; while Dragging, user scroll
// offsets produce throttled seek requests and playback is paused.
//
// All state lives behind the synchronizer's own lock, and player calls and
// offset applications are issued outside it, so engine callbacks may
// re-enter without deadlock.
type Synchronizer struct {
	mu          sync.Mutex
	player      playback.Seeker
	applyOffset func(offset float64)
	cfg         Config

	geo            *Geometry
	mode           Mode
	lastSeekTarget float64
	seekIssued     bool
	resetTimer     *time.Timer
	closed         bool
}

// NewSynchronizer creates a synchronizer driving the given player. Offsets
// the synchronizer wants applied to the strip are pushed through
// applyOffset. Zero config fields fall back to the defaults.
func NewSynchronizer(player playback.Seeker, applyOffset func(float64), cfg Config) *Synchronizer {
	if cfg.SeekThrottle == 0 {
		cfg.SeekThrottle = DefaultSeekThrottle
	}
	if cfg.FinishResetDelay == 0 {
		cfg.FinishResetDelay = DefaultFinishResetDelay
	}
	return &Synchronizer{
		player:      player,
		applyOffset: applyOffset,
		cfg:         cfg,
		mode:        ModeFollowing,
	}
}

// SetGeometry provides the strip geometry once thumbnails have finished
// loading. It must be called exactly once before any time/offset
// conversion takes place.
func (s *Synchronizer) SetGeometry(g Geometry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.geo != nil {
		return ErrGeometryAlreadySet
	}
	s.geo = &g

	logger.Log.Debug().
		Float64("duration", g.Duration).
		Float64("content_width", g.ContentWidth()).
		Float64("padding", g.Padding()).
		Int("thumb_count", g.ThumbCount).
		Msg("Strip geometry set")

	return nil
}

// Geometry returns the strip geometry, if set
func (s *Synchronizer) Geometry() (Geometry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.geo == nil {
		return Geometry{}, ErrGeometryNotSet
	}
	return *s.geo, nil
}

// Mode returns the current arbitration mode
func (s *Synchronizer) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// LastSeekTarget returns the target time of the most recently issued seek
// and whether any seek has been issued
func (s *Synchronizer) LastSeekTarget() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeekTarget, s.seekIssued
}

// OnTimeUpdate handles a periodic engine time tick. While Following it
// converts the time to an offset and applies it; while Dragging it is a
// no-op so the user's gesture keeps control of the strip.
func (s *Synchronizer) OnTimeUpdate(t float64) {
	s.mu.Lock()
	if s.closed || s.geo == nil || s.mode != ModeFollowing {
		s.mu.Unlock()
		return
	}
	offset := s.geo.OffsetForTime(t)
	apply := s.applyOffset
	s.mu.Unlock()

	if apply != nil {
		apply(offset)
	}
}

// BeginDrag enters Dragging mode and pauses playback so the strip stops
// moving under the user's finger
func (s *Synchronizer) BeginDrag() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mode = ModeDragging
	player := s.player
	s.mu.Unlock()

	logger.Log.Debug().Msg("Drag began, pausing playback")
	player.Pause()
}

// OnScroll handles a user-driven scroll position change. It is only
// meaningful while Dragging; updates in Following mode are ignored. The
// offset is converted to a target time and a seek is issued unless the
// target is within the throttle window of the previously issued seek, in
// which case the request is dropped silently. Drops are not queued; the
// next scroll delta re-evaluates from scratch.
func (s *Synchronizer) OnScroll(offset float64) {
	s.mu.Lock()
	if s.closed || s.geo == nil || s.mode != ModeDragging {
		s.mu.Unlock()
		return
	}

	target := s.geo.TimeForOffset(offset)
	if s.seekIssued && math.Abs(target-s.lastSeekTarget) < s.cfg.SeekThrottle.Seconds() {
		s.mu.Unlock()
		logger.Log.Debug().
			Float64("target", target).
			Float64("last_issued", s.lastSeekTarget).
			Msg("Seek dropped by throttle")
		return
	}

	s.lastSeekTarget = target
	s.seekIssued = true
	player := s.player
	s.mu.Unlock()

	player.SeekTo(target, func(success bool) {
		if !success {
			// Best effort: the next scroll delta produces the next attempt
			logger.Log.Debug().
				Float64("target", target).
				Msg("Seek reported failure, not retrying")
		}
	})
}

// OnStatusChange handles an edge-triggered engine status transition.
//
// A transition to playing always returns the synchronizer to Following,
// even while a drag is in progress: an externally-triggered play wins over
// a stale drag flag. A transition to finished rewinds the timeline to its
// start after a fixed delay.
func (s *Synchronizer) OnStatusChange(status playback.Status) {
	switch status {
	case playback.StatusPlaying:
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		wasDragging := s.mode == ModeDragging
		s.mode = ModeFollowing
		s.mu.Unlock()

		if wasDragging {
			logger.Log.Debug().Msg("Playback started, drag released")
		}

	case playback.StatusFinished:
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		if s.resetTimer != nil {
			s.resetTimer.Stop()
		}
		s.resetTimer = time.AfterFunc(s.cfg.FinishResetDelay, s.resetToStart)
		s.mu.Unlock()
	}
}

// resetToStart rewinds playback to time zero and the strip to its initial
// offset, returning all scrub state to its initial values
func (s *Synchronizer) resetToStart() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mode = ModeFollowing
	s.seekIssued = false
	s.lastSeekTarget = 0

	var offset float64
	hasGeo := s.geo != nil
	if hasGeo {
		offset = s.geo.MinOffset()
	}
	player := s.player
	apply := s.applyOffset
	s.mu.Unlock()

	logger.Log.Debug().Msg("Playback finished, rewinding timeline")

	player.SeekTo(0, nil)
	if hasGeo && apply != nil {
		apply(offset)
	}
}

// Close cancels any pending rewind and prevents further transitions
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	timer := s.resetTimer
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
}

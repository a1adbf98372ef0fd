// Package session glues one playback engine to one scrubber synchronizer
// and tracks the live state a client needs to render the screen: current
// scroll offset, arbitration mode, and whether the timeline is ready.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zcsoft/videotimeline/internal/logger"
	"github.com/zcsoft/videotimeline/internal/playback"
	"github.com/zcsoft/videotimeline/internal/scrub"
)

// Engine is the playback surface a session owns. Close must release the
// engine's internal goroutines.
type Engine interface {
	playback.Player
	Close()
}

// State is a point-in-time snapshot of a session for clients
type State struct {
	ID            uuid.UUID `json:"id"`
	MediaID       uuid.UUID `json:"media_id"`
	Offset        float64   `json:"offset"`
	Mode          string    `json:"mode"`
	Time          float64   `json:"time"`
	Duration      float64   `json:"duration"`
	Status        string    `json:"status"`
	TimelineReady bool      `json:"timeline_ready"`
}

// Session wires an engine's time/status streams into a synchronizer and
// holds the resulting scroll offset. Subscriptions are released on Close
// so no engine callback outlives the session.
type Session struct {
	ID      uuid.UUID
	MediaID uuid.UUID

	engine Engine
	sync   *scrub.Synchronizer

	mu            sync.Mutex
	offset        float64
	timelineReady bool
	lastAccess    time.Time
	closed        bool

	unsubTime   func()
	unsubStatus func()
}

// New creates a session over the given engine. The synchronizer starts
// without geometry; AttachGeometry arms it once thumbnails are ready.
func New(mediaID uuid.UUID, engine Engine, cfg scrub.Config) *Session {
	s := &Session{
		ID:         uuid.New(),
		MediaID:    mediaID,
		engine:     engine,
		lastAccess: time.Now().UTC(),
	}

	s.sync = scrub.NewSynchronizer(engine, s.setOffset, cfg)
	s.unsubTime = engine.SubscribeTime(s.sync.OnTimeUpdate)
	s.unsubStatus = engine.SubscribeStatus(s.sync.OnStatusChange)

	return s
}

// setOffset is the synchronizer's offset sink
func (s *Session) setOffset(offset float64) {
	s.mu.Lock()
	s.offset = offset
	s.mu.Unlock()
}

// AttachGeometry provides the strip geometry once the final thumbnail has
// landed, parking the strip at its initial offset and revealing controls.
func (s *Session) AttachGeometry(geo scrub.Geometry) error {
	if err := s.sync.SetGeometry(geo); err != nil {
		return err
	}

	s.mu.Lock()
	s.offset = geo.MinOffset()
	s.timelineReady = true
	s.mu.Unlock()

	logger.Log.Debug().
		Str("session_id", s.ID.String()).
		Float64("initial_offset", geo.MinOffset()).
		Msg("Timeline ready")

	return nil
}

// TimelineReady reports whether the strip geometry has been attached
func (s *Session) TimelineReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timelineReady
}

// Play starts or resumes playback
func (s *Session) Play() {
	s.engine.Play()
}

// Pause halts playback
func (s *Session) Pause() {
	s.engine.Pause()
}

// BeginDrag enters drag mode, pausing playback
func (s *Session) BeginDrag() {
	s.sync.BeginDrag()
}

// Scroll forwards a drag-driven scroll offset to the synchronizer
func (s *Session) Scroll(offset float64) {
	s.sync.OnScroll(offset)
}

// Snapshot returns the session's current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	offset := s.offset
	ready := s.timelineReady
	s.mu.Unlock()

	return State{
		ID:            s.ID,
		MediaID:       s.MediaID,
		Offset:        offset,
		Mode:          s.sync.Mode().String(),
		Time:          s.engine.CurrentTime(),
		Duration:      s.engine.Duration(),
		Status:        s.engine.Status().String(),
		TimelineReady: ready,
	}
}

// UpdateLastAccess records a client touch for idle cleanup
func (s *Session) UpdateLastAccess() {
	s.mu.Lock()
	s.lastAccess = time.Now().UTC()
	s.mu.Unlock()
}

// IdleDuration returns how long since the session was last accessed
func (s *Session) IdleDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastAccess)
}

// ShouldCleanup reports whether the session has been idle past the grace period
func (s *Session) ShouldCleanup(gracePeriod time.Duration) bool {
	return s.IdleDuration() > gracePeriod
}

// Close releases subscriptions, the synchronizer, and the engine, in that
// order, so no stream callback fires into torn-down state
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.unsubTime()
	s.unsubStatus()
	s.sync.Close()
	s.engine.Close()

	logger.Log.Debug().
		Str("session_id", s.ID.String()).
		Msg("Session closed")
}

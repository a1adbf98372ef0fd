package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zcsoft/videotimeline/internal/config"
	"github.com/zcsoft/videotimeline/internal/logger"
	"github.com/zcsoft/videotimeline/internal/models"
	"github.com/zcsoft/videotimeline/internal/playback"
	"github.com/zcsoft/videotimeline/internal/scrub"
	"github.com/zcsoft/videotimeline/internal/strips"
)

// Common errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrManagerStopped  = errors.New("session manager has been stopped")
	ErrInvalidViewport = errors.New("viewport width must be positive")
)

// Manager owns all live scrub sessions: it creates them over clock
// engines, hands out lookups, and reaps idle sessions in the background.
type Manager struct {
	stripService *strips.Service
	cfg          *config.TimelineConfig

	mu            sync.RWMutex
	sessions      map[uuid.UUID]*Session
	cleanupTicker *time.Ticker
	stopChan      chan struct{}
	cleanupDone   chan struct{}
	stopped       bool
}

// NewManager creates a session manager
func NewManager(stripService *strips.Service, cfg *config.TimelineConfig) *Manager {
	return &Manager{
		stripService: stripService,
		cfg:          cfg,
		sessions:     make(map[uuid.UUID]*Session),
		stopChan:     make(chan struct{}),
		cleanupDone:  make(chan struct{}),
	}
}

// Start launches the background idle-session cleanup loop
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrManagerStopped
	}

	m.cleanupTicker = time.NewTicker(m.cfg.CleanupInterval)
	go m.runCleanupLoop()

	logger.Log.Info().
		Dur("cleanup_interval", m.cfg.CleanupInterval).
		Dur("grace_period", m.cfg.SessionGracePeriod).
		Msg("Session manager started")

	return nil
}

// Stop closes every live session and halts the cleanup loop
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	close(m.stopChan)
	if m.cleanupTicker != nil {
		<-m.cleanupDone
		m.cleanupTicker.Stop()
	}

	sessions := m.List()
	for _, sess := range sessions {
		sess.Close()
	}

	m.mu.Lock()
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	logger.Log.Info().
		Int("closed_sessions", len(sessions)).
		Msg("Session manager stopped")
}

// Create starts a session for a media item over a clock engine. If the
// strip is already ready the timeline arms immediately; otherwise it arms
// when the strip's final thumbnail lands.
func (m *Manager) Create(media *models.Media, strip *models.Strip, viewportWidth float64) (*Session, error) {
	m.mu.RLock()
	if m.stopped {
		m.mu.RUnlock()
		return nil, ErrManagerStopped
	}
	m.mu.RUnlock()

	if viewportWidth <= 0 {
		return nil, ErrInvalidViewport
	}

	geo, err := scrub.NewGeometry(media.Duration, strip.Pitch, strip.ThumbCount, viewportWidth)
	if err != nil {
		return nil, err
	}

	engine := playback.NewClock(media.Duration, m.cfg.TickInterval)
	sess := New(media.ID, engine, scrub.Config{
		SeekThrottle:     m.cfg.SeekThrottle,
		FinishResetDelay: m.cfg.FinishResetDelay,
	})

	if strip.IsReady() {
		if err := sess.AttachGeometry(geo); err != nil {
			sess.Close()
			return nil, err
		}
	} else {
		// The geometry is fixed at build time, but conversions stay invalid
		// until the final thumbnail callback arrives
		m.stripService.OnReady(strip.ID, func() {
			if err := sess.AttachGeometry(geo); err != nil {
				logger.Log.Warn().
					Err(err).
					Str("session_id", sess.ID.String()).
					Msg("Failed to attach geometry on strip ready")
			}
		})
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	logger.Log.Info().
		Str("session_id", sess.ID.String()).
		Str("media_id", media.ID.String()).
		Float64("viewport_width", viewportWidth).
		Bool("timeline_ready", sess.TimelineReady()).
		Msg("Session created")

	return sess, nil
}

// Get retrieves a session by ID and marks it accessed
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.UpdateLastAccess()
	return sess, nil
}

// Delete closes and removes a session
func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	sess.Close()
	return nil
}

// List returns all live sessions
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	return sessions
}

// runCleanupLoop reaps idle sessions on a fixed cadence
func (m *Manager) runCleanupLoop() {
	defer close(m.cleanupDone)

	logger.Log.Debug().Msg("Session cleanup loop started")

	for {
		select {
		case <-m.stopChan:
			logger.Log.Debug().Msg("Session cleanup loop stopping")
			return
		case <-m.cleanupTicker.C:
			m.performCleanup()
		}
	}
}

// performCleanup closes sessions idle past the grace period
func (m *Manager) performCleanup() {
	reaped := 0
	for _, sess := range m.List() {
		if sess.ShouldCleanup(m.cfg.SessionGracePeriod) {
			logger.Log.Info().
				Str("session_id", sess.ID.String()).
				Dur("idle_duration", sess.IdleDuration()).
				Msg("Cleaning up idle session")

			if err := m.Delete(sess.ID); err == nil {
				reaped++
			}
		}
	}

	if reaped > 0 {
		logger.Log.Info().
			Int("reaped", reaped).
			Msg("Session cleanup cycle completed")
	}
}

// Package strips provides business logic for building thumbnail strips:
// choosing generation parameters, running the generator in the background,
// tracking progress, and signalling readiness exactly once.
package strips

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/zcsoft/videotimeline/internal/config"
	"github.com/zcsoft/videotimeline/internal/db"
	"github.com/zcsoft/videotimeline/internal/logger"
	"github.com/zcsoft/videotimeline/internal/models"
	"github.com/zcsoft/videotimeline/internal/thumbs"
)

// Common errors
var (
	ErrMediaNotFound  = errors.New("media not found")
	ErrStripNotFound  = errors.New("strip not found")
	ErrServiceStopped = errors.New("strip service has been stopped")
)

// Service builds and tracks thumbnail strips. One generation run may be
// in flight per strip; Stop cancels every in-flight run so no generator
// callback outlives the service.
type Service struct {
	repos *db.Repositories
	gen   thumbs.Generator
	cfg   *config.Config

	mu      sync.Mutex
	running map[uuid.UUID]context.CancelFunc
	waiters map[uuid.UUID][]func()
	ready   map[uuid.UUID]bool
	wg      sync.WaitGroup
	stopped bool
}

// NewService creates a strip service using the given generator
func NewService(repos *db.Repositories, gen thumbs.Generator, cfg *config.Config) *Service {
	return &Service{
		repos:   repos,
		gen:     gen,
		cfg:     cfg,
		running: make(map[uuid.UUID]context.CancelFunc),
		waiters: make(map[uuid.UUID][]func()),
		ready:   make(map[uuid.UUID]bool),
	}
}

// Build computes generation parameters for a media item, persists a
// pending strip (replacing any previous one), and starts generation in
// the background. It returns the pending strip immediately.
func (s *Service) Build(ctx context.Context, mediaID uuid.UUID) (*models.Strip, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrServiceStopped
	}
	s.mu.Unlock()

	media, err := s.repos.Media.GetByID(ctx, mediaID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}

	tl := s.cfg.Timeline
	interval := thumbs.AdjustInterval(media.Duration, tl.NaiveInterval, tl.MinThumbnails, tl.MaxThumbnails)
	count := thumbs.Count(media.Duration, interval)
	pitch := thumbs.PitchFor(media.Width, media.Height, tl.RowHeight)
	dir := filepath.Join(s.cfg.Media.StripPath, media.ID.String())

	strip := models.NewStrip(media.ID, interval, count, pitch, tl.RowHeight, dir)
	if err := s.repos.Strips.Replace(ctx, strip); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("media_id", mediaID.String()).
		Str("strip_id", strip.ID.String()).
		Float64("interval", interval).
		Int("thumb_count", count).
		Float64("pitch", pitch).
		Msg("Strip build started")

	genCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.running[strip.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runGeneration(genCtx, strip, media)

	return strip, nil
}

// Get returns the strip for a media item
func (s *Service) Get(ctx context.Context, mediaID uuid.UUID) (*models.Strip, error) {
	strip, err := s.repos.Strips.GetByMediaID(ctx, mediaID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrStripNotFound
		}
		return nil, err
	}
	return strip, nil
}

// OnReady registers fn to run once when the strip's final thumbnail has
// been generated. If the strip is already ready, fn runs immediately.
func (s *Service) OnReady(stripID uuid.UUID, fn func()) {
	s.mu.Lock()
	if s.ready[stripID] {
		s.mu.Unlock()
		fn()
		return
	}
	s.waiters[stripID] = append(s.waiters[stripID], fn)
	s.mu.Unlock()
}

// Cancel aborts an in-flight generation run, if any
func (s *Service) Cancel(stripID uuid.UUID) {
	s.mu.Lock()
	cancel, ok := s.running[stripID]
	s.mu.Unlock()

	if ok {
		cancel()
	}
}

// Stop cancels all in-flight generation runs and waits for their
// goroutines to exit, so no callback touches torn-down state.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancels := make([]context.CancelFunc, 0, len(s.running))
	for _, cancel := range s.running {
		cancels = append(cancels, cancel)
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	s.wg.Wait()

	logger.Log.Info().Msg("Strip service stopped")
}

// runGeneration executes one generation run and records its outcome
func (s *Service) runGeneration(ctx context.Context, strip *models.Strip, media *models.Media) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.running, strip.ID)
		s.mu.Unlock()
	}()

	if err := s.repos.Strips.UpdateState(context.Background(), strip.ID, models.StripStateGenerating); err != nil {
		logger.Log.Error().
			Err(err).
			Str("strip_id", strip.ID.String()).
			Msg("Failed to mark strip generating")
	}

	req := thumbs.Request{
		Source:    media.FilePath,
		OutputDir: strip.Dir,
		Interval:  strip.Interval,
		Count:     strip.ThumbCount,
	}

	err := s.gen.Generate(ctx, req, func(r thumbs.Result) {
		// Progress counts delivered slots, failed ones included; the strip
		// renderer skips empty slots without aborting the sequence
		if err := s.repos.Strips.UpdateProgress(context.Background(), strip.ID, r.Index+1); err != nil {
			logger.Log.Warn().
				Err(err).
				Str("strip_id", strip.ID.String()).
				Int("index", r.Index).
				Msg("Failed to record strip progress")
		}

		// The callback carrying the final index is the single writer of
		// the fully-loaded flag
		if r.Index == r.Total-1 {
			s.markReady(strip.ID)
		}
	})

	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("strip_id", strip.ID.String()).
			Str("media_id", media.ID.String()).
			Msg("Strip generation failed")

		if stateErr := s.repos.Strips.UpdateState(context.Background(), strip.ID, models.StripStateFailed); stateErr != nil {
			logger.Log.Error().
				Err(stateErr).
				Str("strip_id", strip.ID.String()).
				Msg("Failed to mark strip failed")
		}
	}
}

// markReady transitions the strip to ready and fires its waiters once
func (s *Service) markReady(stripID uuid.UUID) {
	if err := s.repos.Strips.UpdateState(context.Background(), stripID, models.StripStateReady); err != nil {
		logger.Log.Error().
			Err(err).
			Str("strip_id", stripID.String()).
			Msg("Failed to mark strip ready")
	}

	s.mu.Lock()
	s.ready[stripID] = true
	waiters := s.waiters[stripID]
	delete(s.waiters, stripID)
	s.mu.Unlock()

	logger.Log.Info().
		Str("strip_id", stripID.String()).
		Int("waiters", len(waiters)).
		Msg("Strip ready")

	for _, fn := range waiters {
		fn()
	}
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zcsoft/videotimeline/internal/db"
	"github.com/zcsoft/videotimeline/internal/logger"
	"github.com/zcsoft/videotimeline/internal/models"
	"github.com/zcsoft/videotimeline/internal/scrub"
	"github.com/zcsoft/videotimeline/internal/strips"
	"github.com/zcsoft/videotimeline/internal/thumbs"
)

// TimelineResponse describes a strip and its derived layout. Labels and
// separators are present only once the strip is ready.
type TimelineResponse struct {
	StripID        uuid.UUID         `json:"strip_id"`
	MediaID        uuid.UUID         `json:"media_id"`
	State          models.StripState `json:"state"`
	Interval       float64           `json:"interval"`
	ThumbCount     int               `json:"thumb_count"`
	GeneratedCount int               `json:"generated_count"`
	Pitch          float64           `json:"pitch"`
	RowHeight      float64           `json:"row_height"`
	ContentWidth   float64           `json:"content_width"`
	Labels         []scrub.Label     `json:"labels,omitempty"`
	Separators     []scrub.Separator `json:"separators,omitempty"`
}

// TimelineHandler handles thumbnail strip API requests
type TimelineHandler struct {
	service *strips.Service
	repos   *db.Repositories
}

// NewTimelineHandler creates a new timeline handler instance
func NewTimelineHandler(service *strips.Service, repos *db.Repositories) *TimelineHandler {
	return &TimelineHandler{service: service, repos: repos}
}

// Build handles POST /api/media/:id/timeline: kicks off strip generation
// and returns the pending strip
func (h *TimelineHandler) Build(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Media ID must be a valid UUID",
		})
		return
	}

	strip, err := h.service.Build(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, strips.ErrMediaNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "media_not_found",
				Message: "Media not found",
			})
			return
		}
		if errors.Is(err, strips.ErrServiceStopped) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:   "service_stopped",
				Message: "Strip service is shutting down",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("media_id", mediaID.String()).
			Msg("Failed to start strip build")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "build_failed",
			Message: "Failed to start strip generation",
		})
		return
	}

	c.JSON(http.StatusAccepted, h.toResponse(c, strip))
}

// Get handles GET /api/media/:id/timeline
func (h *TimelineHandler) Get(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Media ID must be a valid UUID",
		})
		return
	}

	strip, err := h.service.Get(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, strips.ErrStripNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "strip_not_found",
				Message: "No timeline has been built for this media",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("media_id", mediaID.String()).
			Msg("Failed to get strip")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get timeline",
		})
		return
	}

	c.JSON(http.StatusOK, h.toResponse(c, strip))
}

// Thumbnail handles GET /api/media/:id/timeline/thumbs/:index, serving one
// generated frame
func (h *TimelineHandler) Thumbnail(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Media ID must be a valid UUID",
		})
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_index",
			Message: "Thumbnail index must be a non-negative integer",
		})
		return
	}

	strip, err := h.service.Get(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, strips.ErrStripNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "strip_not_found",
				Message: "No timeline has been built for this media",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("media_id", mediaID.String()).
			Msg("Failed to get strip for thumbnail")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get timeline",
		})
		return
	}

	if index >= strip.ThumbCount {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "thumbnail_not_found",
			Message: "Thumbnail index out of range",
		})
		return
	}
	if index >= strip.GeneratedCount {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "thumbnail_not_ready",
			Message: "Thumbnail has not been generated yet",
		})
		return
	}

	c.File(thumbs.FramePath(strip.Dir, index))
}

// Cancel handles DELETE /api/media/:id/timeline: aborts an in-flight
// generation run
func (h *TimelineHandler) Cancel(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Media ID must be a valid UUID",
		})
		return
	}

	strip, err := h.service.Get(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, strips.ErrStripNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "strip_not_found",
				Message: "No timeline has been built for this media",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get timeline",
		})
		return
	}

	h.service.Cancel(strip.ID)
	c.JSON(http.StatusOK, DeleteResponse{Message: "Strip generation cancelled"})
}

// toResponse maps a strip to its API shape, computing labels once ready
func (h *TimelineHandler) toResponse(c *gin.Context, strip *models.Strip) TimelineResponse {
	resp := TimelineResponse{
		StripID:        strip.ID,
		MediaID:        strip.MediaID,
		State:          strip.State,
		Interval:       strip.Interval,
		ThumbCount:     strip.ThumbCount,
		GeneratedCount: strip.GeneratedCount,
		Pitch:          strip.Pitch,
		RowHeight:      strip.RowHeight,
		ContentWidth:   strip.ContentWidth(),
	}

	if strip.IsReady() {
		media, err := h.repos.Media.GetByID(c.Request.Context(), strip.MediaID)
		if err != nil {
			logger.Log.Warn().
				Err(err).
				Str("strip_id", strip.ID.String()).
				Msg("Failed to load media for label placement")
			return resp
		}

		labels, separators, err := scrub.PlaceLabels(strip.ContentWidth(), media.Duration)
		if err != nil {
			logger.Log.Warn().
				Err(err).
				Str("strip_id", strip.ID.String()).
				Msg("Failed to place labels")
		} else {
			resp.Labels = labels
			resp.Separators = separators
		}
	}

	return resp
}

// SetupTimelineRoutes registers timeline routes under /media/:id
func SetupTimelineRoutes(apiGroup *gin.RouterGroup, service *strips.Service, repos *db.Repositories) {
	handler := NewTimelineHandler(service, repos)

	timelineGroup := apiGroup.Group("/media/:id/timeline")
	{
		timelineGroup.POST("", handler.Build)
		timelineGroup.GET("", handler.Get)
		timelineGroup.GET("/thumbs/:index", handler.Thumbnail)
		timelineGroup.DELETE("", handler.Cancel)
	}
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zcsoft/videotimeline/internal/db"
	"github.com/zcsoft/videotimeline/internal/logger"
	"github.com/zcsoft/videotimeline/internal/session"
	"github.com/zcsoft/videotimeline/internal/strips"
)

// CreateSessionRequest represents a request to open a scrub session
type CreateSessionRequest struct {
	MediaID       string  `json:"media_id" binding:"required"`
	ViewportWidth float64 `json:"viewport_width" binding:"required"`
}

// ScrollRequest carries one drag-driven scroll offset
type ScrollRequest struct {
	Offset float64 `json:"offset"`
}

// SessionListResponse represents all live sessions
type SessionListResponse struct {
	Sessions []session.State `json:"sessions"`
	Count    int             `json:"count"`
}

// SessionHandler handles scrub session API requests
type SessionHandler struct {
	manager *session.Manager
	service *strips.Service
	repos   *db.Repositories
}

// NewSessionHandler creates a new session handler instance
func NewSessionHandler(manager *session.Manager, service *strips.Service, repos *db.Repositories) *SessionHandler {
	return &SessionHandler{manager: manager, service: service, repos: repos}
}

// Create handles POST /api/sessions: opens a session for a media item
// whose timeline has been built
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "media_id and viewport_width are required",
		})
		return
	}

	mediaID, err := uuid.Parse(req.MediaID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "media_id must be a valid UUID",
		})
		return
	}

	media, err := h.repos.Media.GetByID(c.Request.Context(), mediaID)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "media_not_found",
				Message: "Media not found",
			})
			return
		}

		logger.Log.Error().Err(err).Str("media_id", mediaID.String()).Msg("Failed to get media")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get media",
		})
		return
	}

	strip, err := h.service.Get(c.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, strips.ErrStripNotFound) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "strip_not_built",
				Message: "Build a timeline for this media before opening a session",
			})
			return
		}

		logger.Log.Error().Err(err).Str("media_id", mediaID.String()).Msg("Failed to get strip")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get timeline",
		})
		return
	}

	sess, err := h.manager.Create(media, strip, req.ViewportWidth)
	if err != nil {
		if errors.Is(err, session.ErrInvalidViewport) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_viewport",
				Message: "viewport_width must be positive",
			})
			return
		}
		if errors.Is(err, session.ErrManagerStopped) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:   "manager_stopped",
				Message: "Session manager is shutting down",
			})
			return
		}

		logger.Log.Error().Err(err).Str("media_id", mediaID.String()).Msg("Failed to create session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create session",
		})
		return
	}

	c.JSON(http.StatusCreated, sess.Snapshot())
}

// Get handles GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// List handles GET /api/sessions
func (h *SessionHandler) List(c *gin.Context) {
	sessions := h.manager.List()

	states := make([]session.State, 0, len(sessions))
	for _, sess := range sessions {
		states = append(states, sess.Snapshot())
	}

	c.JSON(http.StatusOK, SessionListResponse{
		Sessions: states,
		Count:    len(states),
	})
}

// Play handles POST /api/sessions/:id/play
func (h *SessionHandler) Play(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	sess.Play()
	c.JSON(http.StatusOK, sess.Snapshot())
}

// Pause handles POST /api/sessions/:id/pause
func (h *SessionHandler) Pause(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	sess.Pause()
	c.JSON(http.StatusOK, sess.Snapshot())
}

// Drag handles POST /api/sessions/:id/drag: the client's finger has
// touched the strip
func (h *SessionHandler) Drag(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	sess.BeginDrag()
	c.JSON(http.StatusOK, sess.Snapshot())
}

// Scroll handles POST /api/sessions/:id/scroll: one drag-driven offset
func (h *SessionHandler) Scroll(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req ScrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "offset is required",
		})
		return
	}

	sess.Scroll(req.Offset)
	c.JSON(http.StatusOK, sess.Snapshot())
}

// Delete handles DELETE /api/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Session ID must be a valid UUID",
		})
		return
	}

	if err := h.manager.Delete(id); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "session_not_found",
				Message: "Session not found",
			})
			return
		}

		logger.Log.Error().Err(err).Str("session_id", id.String()).Msg("Failed to delete session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete session",
		})
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{Message: "Session closed"})
}

// lookup parses the session ID and fetches the session, writing the error
// response itself when either step fails
func (h *SessionHandler) lookup(c *gin.Context) (*session.Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Session ID must be a valid UUID",
		})
		return nil, false
	}

	sess, err := h.manager.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "session_not_found",
			Message: "Session not found",
		})
		return nil, false
	}

	return sess, true
}

// SetupSessionRoutes registers session routes
func SetupSessionRoutes(apiGroup *gin.RouterGroup, manager *session.Manager, service *strips.Service, repos *db.Repositories) {
	handler := NewSessionHandler(manager, service, repos)

	sessionGroup := apiGroup.Group("/sessions")
	{
		sessionGroup.POST("", handler.Create)
		sessionGroup.GET("", handler.List)
		sessionGroup.GET("/:id", handler.Get)
		sessionGroup.POST("/:id/play", handler.Play)
		sessionGroup.POST("/:id/pause", handler.Pause)
		sessionGroup.POST("/:id/drag", handler.Drag)
		sessionGroup.POST("/:id/scroll", handler.Scroll)
		sessionGroup.DELETE("/:id", handler.Delete)
	}
}

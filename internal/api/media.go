package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zcsoft/videotimeline/internal/db"
	"github.com/zcsoft/videotimeline/internal/logger"
	"github.com/zcsoft/videotimeline/internal/media"
	"github.com/zcsoft/videotimeline/internal/models"
)

// Request/Response DTOs

// RegisterMediaRequest represents a request to register a video file
type RegisterMediaRequest struct {
	FilePath string `json:"file_path" binding:"required"`
	Title    string `json:"title"` // Optional: defaults to the file name
}

// MediaListResponse represents a paginated list of media items
type MediaListResponse struct {
	Items  []*models.Media `json:"items"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// DeleteResponse represents a successful delete operation
type DeleteResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MediaHandler handles media-related API requests
type MediaHandler struct {
	repos *db.Repositories
}

// NewMediaHandler creates a new media handler instance
func NewMediaHandler(repos *db.Repositories) *MediaHandler {
	return &MediaHandler{repos: repos}
}

// Register handles POST /api/media: probes the file and stores its metadata
func (h *MediaHandler) Register(c *gin.Context) {
	var req RegisterMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "file_path is required",
		})
		return
	}

	metadata, err := media.ProbeFile(c.Request.Context(), req.FilePath)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("file_path", req.FilePath).
			Msg("Failed to probe media file")

		if errors.Is(err, media.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "file_not_found",
				Message: "File not found or not readable",
			})
			return
		}
		if errors.Is(err, media.ErrInvalidFile) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "invalid_file",
				Message: "File is not a valid video",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "probe_failed",
			Message: "Failed to probe media file",
		})
		return
	}

	title := req.Title
	if title == "" {
		base := filepath.Base(req.FilePath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	item := models.NewMedia(req.FilePath, title, metadata.Duration)
	item.Width = metadata.Width
	item.Height = metadata.Height
	if metadata.VideoCodec != "" {
		item.VideoCodec = &metadata.VideoCodec
	}
	if metadata.AudioCodec != "" {
		item.AudioCodec = &metadata.AudioCodec
	}
	if metadata.FileSize > 0 {
		item.FileSize = &metadata.FileSize
	}

	if err := h.repos.Media.Create(c.Request.Context(), item); err != nil {
		if db.IsDuplicate(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "duplicate_media",
				Message: "A media item with this file path already exists",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("file_path", req.FilePath).
			Msg("Failed to store media")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to store media",
		})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// List handles GET /api/media
func (h *MediaHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.repos.Media.List(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list media")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list media",
		})
		return
	}

	total, err := h.repos.Media.Count(c.Request.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to count media")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to count media",
		})
		return
	}

	c.JSON(http.StatusOK, MediaListResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /api/media/:id
func (h *MediaHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Media ID must be a valid UUID",
		})
		return
	}

	item, err := h.repos.Media.GetByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "media_not_found",
				Message: "Media not found",
			})
			return
		}

		logger.Log.Error().Err(err).Str("media_id", id.String()).Msg("Failed to get media")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "get_failed",
			Message: "Failed to get media",
		})
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /api/media/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Media ID must be a valid UUID",
		})
		return
	}

	if err := h.repos.Media.Delete(c.Request.Context(), id); err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "media_not_found",
				Message: "Media not found",
			})
			return
		}

		logger.Log.Error().Err(err).Str("media_id", id.String()).Msg("Failed to delete media")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete media",
		})
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{Message: "Media deleted"})
}

// SetupMediaRoutes registers media routes
func SetupMediaRoutes(apiGroup *gin.RouterGroup, repos *db.Repositories) {
	handler := NewMediaHandler(repos)

	mediaGroup := apiGroup.Group("/media")
	{
		mediaGroup.POST("", handler.Register)
		mediaGroup.GET("", handler.List)
		mediaGroup.GET("/:id", handler.Get)
		mediaGroup.DELETE("/:id", handler.Delete)
	}
}

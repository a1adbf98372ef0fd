package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Media represents a registered video file and its probed metadata
type Media struct {
	ID         uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	FilePath   string    `json:"file_path" gorm:"type:text;not null;uniqueIndex;column:file_path" validate:"required"`
	Title      string    `json:"title" gorm:"type:text;not null;column:title" validate:"required"`
	Duration   float64   `json:"duration" gorm:"type:real;not null;column:duration" validate:"required,gt=0"` // seconds
	Width      int       `json:"width" gorm:"type:integer;column:width"`
	Height     int       `json:"height" gorm:"type:integer;column:height"`
	VideoCodec *string   `json:"video_codec,omitempty" gorm:"type:text;column:video_codec"`
	AudioCodec *string   `json:"audio_codec,omitempty" gorm:"type:text;column:audio_codec"`
	FileSize   *int64    `json:"file_size,omitempty" gorm:"type:integer;column:file_size"`
	CreatedAt  time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewMedia creates a new Media with generated UUID and timestamp
func NewMedia(filePath, title string, duration float64) *Media {
	return &Media{
		ID:        uuid.New(),
		FilePath:  filePath,
		Title:     title,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
}

// HasVideoTrack reports whether the probe found usable video dimensions.
// Audio-only files and corrupt video tracks fall back to a default aspect.
func (m *Media) HasVideoTrack() bool {
	return m.Width > 0 && m.Height > 0
}

// DurationString returns duration in HH:MM:SS format
func (m *Media) DurationString() string {
	total := int64(m.Duration)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

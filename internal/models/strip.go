package models

import (
	"time"

	"github.com/google/uuid"
)

// StripState tracks the lifecycle of a thumbnail strip
type StripState string

const (
	// StripStatePending indicates the strip row exists but generation hasn't started
	StripStatePending StripState = "pending"

	// StripStateGenerating indicates ffmpeg is producing thumbnails
	StripStateGenerating StripState = "generating"

	// StripStateReady indicates the final thumbnail has been written
	StripStateReady StripState = "ready"

	// StripStateFailed indicates generation aborted before the final thumbnail
	StripStateFailed StripState = "failed"
)

// Strip represents a generated thumbnail strip for one media item.
// Geometry fields are fixed once generation parameters are chosen; only
// GeneratedCount and State change while ffmpeg runs.
type Strip struct {
	ID             uuid.UUID  `json:"id" gorm:"type:text;primaryKey;column:id"`
	MediaID        uuid.UUID  `json:"media_id" gorm:"type:text;not null;uniqueIndex;column:media_id"`
	Media          *Media     `json:"media,omitempty" gorm:"foreignKey:MediaID"`
	Interval       float64    `json:"interval" gorm:"type:real;not null;column:interval"` // seconds per thumbnail
	ThumbCount     int        `json:"thumb_count" gorm:"type:integer;not null;column:thumb_count"`
	Pitch          float64    `json:"pitch" gorm:"type:real;not null;column:pitch"`
	RowHeight      float64    `json:"row_height" gorm:"type:real;not null;column:row_height"`
	GeneratedCount int        `json:"generated_count" gorm:"type:integer;not null;default:0;column:generated_count"`
	State          StripState `json:"state" gorm:"type:text;not null;default:'pending';column:state"`
	Dir            string     `json:"dir" gorm:"type:text;not null;column:dir"`
	CreatedAt      time.Time  `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewStrip creates a pending strip for a media item
func NewStrip(mediaID uuid.UUID, interval float64, thumbCount int, pitch, rowHeight float64, dir string) *Strip {
	now := time.Now().UTC()
	return &Strip{
		ID:         uuid.New(),
		MediaID:    mediaID,
		Interval:   interval,
		ThumbCount: thumbCount,
		Pitch:      pitch,
		RowHeight:  rowHeight,
		State:      StripStatePending,
		Dir:        dir,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ContentWidth returns the total scrollable width of the strip
func (s *Strip) ContentWidth() float64 {
	return float64(s.ThumbCount) * s.Pitch
}

// IsReady reports whether every thumbnail has been generated
func (s *Strip) IsReady() bool {
	return s.State == StripStateReady
}

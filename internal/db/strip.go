package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zcsoft/videotimeline/internal/models"
	"gorm.io/gorm"
)

// StripRepository handles database operations for thumbnail strips
type StripRepository struct {
	db *DB
}

// NewStripRepository creates a new strip repository
func NewStripRepository(db *DB) *StripRepository {
	return &StripRepository{db: db}
}

// Create inserts a new strip into the database
func (r *StripRepository) Create(ctx context.Context, strip *models.Strip) error {
	result := r.db.WithContext(ctx).Create(strip)
	if result.Error != nil {
		return fmt.Errorf("failed to create strip: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a strip by its UUID
func (r *StripRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Strip, error) {
	var strip models.Strip
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&strip)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &strip, nil
}

// GetByMediaID retrieves the strip for a media item, if one exists
func (r *StripRepository) GetByMediaID(ctx context.Context, mediaID uuid.UUID) (*models.Strip, error) {
	var strip models.Strip
	result := r.db.WithContext(ctx).Where("media_id = ?", mediaID.String()).First(&strip)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &strip, nil
}

// Replace deletes any existing strip for the media and inserts the new one
// atomically, so a rebuild never leaves two strips for one media item.
func (r *StripRepository) Replace(ctx context.Context, strip *models.Strip) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("media_id = ?", strip.MediaID.String()).Delete(&models.Strip{}); result.Error != nil {
			return result.Error
		}
		if result := tx.Create(strip); result.Error != nil {
			return result.Error
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace strip: %w", MapGormError(err))
	}
	return nil
}

// UpdateProgress records the number of thumbnails generated so far
func (r *StripRepository) UpdateProgress(ctx context.Context, id uuid.UUID, generated int) error {
	result := r.db.WithContext(ctx).Model(&models.Strip{}).
		Where("id = ?", id.String()).
		Updates(map[string]interface{}{
			"generated_count": generated,
			"updated_at":      gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update strip progress: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateState transitions a strip to a new lifecycle state
func (r *StripRepository) UpdateState(ctx context.Context, id uuid.UUID, state models.StripState) error {
	result := r.db.WithContext(ctx).Model(&models.Strip{}).
		Where("id = ?", id.String()).
		Updates(map[string]interface{}{
			"state":      state,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update strip state: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a strip by its UUID
func (r *StripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.Strip{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete strip: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

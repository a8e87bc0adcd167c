package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storyforge/domain/models"
	"storyforge/domain/repositories"
	"storyforge/pkg/apperrors"
)

type KeyframeRepositoryImpl struct {
	db *gorm.DB
}

func NewKeyframeRepository(db *gorm.DB) repositories.KeyframeRepository {
	return &KeyframeRepositoryImpl{db: db}
}

func (r *KeyframeRepositoryImpl) CreateBatch(ctx context.Context, keyframes []*models.Keyframe) error {
	if len(keyframes) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&keyframes).Error
}

func (r *KeyframeRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Keyframe, error) {
	var kf models.Keyframe
	err := conn(ctx, r.db).Where("id = ?", id).First(&kf).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("keyframe %s not found", id)
		}
		return nil, err
	}
	return &kf, nil
}

func (r *KeyframeRepositoryImpl) ListByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.Keyframe, error) {
	var keyframes []*models.Keyframe
	err := conn(ctx, r.db).
		Where("script_id = ?", scriptID).
		Order("sequence ASC, created_at ASC").
		Find(&keyframes).Error
	return keyframes, err
}

func (r *KeyframeRepositoryImpl) ListCompletedByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.Keyframe, error) {
	var keyframes []*models.Keyframe
	err := conn(ctx, r.db).
		Where("script_id = ? AND status = ? AND image_url IS NOT NULL AND image_url <> ''", scriptID, models.GenerationStatusCompleted).
		Order("sequence ASC, created_at ASC").
		Find(&keyframes).Error
	return keyframes, err
}

func (r *KeyframeRepositoryImpl) DeleteByScript(ctx context.Context, scriptID uuid.UUID) error {
	return conn(ctx, r.db).Where("script_id = ?", scriptID).Delete(&models.Keyframe{}).Error
}

func (r *KeyframeRepositoryImpl) MarkGenerating(ctx context.Context, id uuid.UUID, model, aspectRatio, quality string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"status":        models.GenerationStatusGenerating,
		"error_message": nil,
		"model":         model,
		"aspect_ratio":  aspectRatio,
		"quality":       quality,
		"updated_at":    time.Now(),
	})
}

func (r *KeyframeRepositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID, imageURL string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"status":        models.GenerationStatusCompleted,
		"image_url":     imageURL,
		"error_message": nil,
		"updated_at":    time.Now(),
	})
}

func (r *KeyframeRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"status":        models.GenerationStatusFailed,
		"error_message": errorMessage,
		"updated_at":    time.Now(),
	})
}

func (r *KeyframeRepositoryImpl) UpdatePrompt(ctx context.Context, id uuid.UUID, prompt string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"prompt":     prompt,
		"updated_at": time.Now(),
	})
}

func (r *KeyframeRepositoryImpl) FailStale(ctx context.Context, scriptID *uuid.UUID, cutoff time.Time, message string) (int64, error) {
	q := conn(ctx, r.db).
		Model(&models.Keyframe{}).
		Where("status = ? AND updated_at < ?", models.GenerationStatusGenerating, cutoff)
	if scriptID != nil {
		q = q.Where("script_id = ?", *scriptID)
	}
	res := q.Updates(map[string]interface{}{
		"status":        models.GenerationStatusFailed,
		"error_message": message,
		"updated_at":    time.Now(),
	})
	return res.RowsAffected, res.Error
}

// updateFields ไม่เจอแถว = NotFound (แถวอาจถูกลบโดย generation รอบใหม่)
func (r *KeyframeRepositoryImpl) updateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := conn(ctx, r.db).Model(&models.Keyframe{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("keyframe %s not found", id)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storyforge/domain/models"
	"storyforge/domain/repositories"
	"storyforge/pkg/apperrors"
)

type ScriptRepositoryImpl struct {
	db *gorm.DB
}

func NewScriptRepository(db *gorm.DB) repositories.ScriptRepository {
	return &ScriptRepositoryImpl{db: db}
}

func (r *ScriptRepositoryImpl) Create(ctx context.Context, script *models.Script) error {
	return conn(ctx, r.db).Create(script).Error
}

func (r *ScriptRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Script, error) {
	var script models.Script
	err := conn(ctx, r.db).Where("id = ?", id).First(&script).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("script %s not found", id)
		}
		return nil, err
	}
	return &script, nil
}

func (r *ScriptRepositoryImpl) Update(ctx context.Context, script *models.Script) error {
	return conn(ctx, r.db).
		Model(&models.Script{}).
		Where("id = ?", script.ID).
		Updates(map[string]interface{}{
			"title":             script.Title,
			"content":           script.Content,
			"style":             script.Style,
			"total_duration":    script.TotalDuration,
			"segment_duration":  script.SegmentDuration,
			"optimized_content": script.OptimizedContent,
		}).Error
}

// Delete ลบ script, keyframes และ video segments ตามไปด้วย (FK cascade)
func (r *ScriptRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&models.Script{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("script %s not found", id)
	}
	return nil
}

func (r *ScriptRepositoryImpl) List(ctx context.Context, offset, limit int) ([]*models.Script, error) {
	var scripts []*models.Script
	err := conn(ctx, r.db).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&scripts).Error
	return scripts, err
}

func (r *ScriptRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Script{}).Count(&count).Error
	return count, err
}

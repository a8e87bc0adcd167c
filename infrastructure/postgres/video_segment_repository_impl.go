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

type VideoSegmentRepositoryImpl struct {
	db *gorm.DB
}

func NewVideoSegmentRepository(db *gorm.DB) repositories.VideoSegmentRepository {
	return &VideoSegmentRepositoryImpl{db: db}
}

func (r *VideoSegmentRepositoryImpl) CreateBatch(ctx context.Context, segments []*models.VideoSegment) error {
	if len(segments) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&segments).Error
}

func (r *VideoSegmentRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.VideoSegment, error) {
	var seg models.VideoSegment
	err := conn(ctx, r.db).Where("id = ?", id).First(&seg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("video segment %s not found", id)
		}
		return nil, err
	}
	return &seg, nil
}

func (r *VideoSegmentRepositoryImpl) ListByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.VideoSegment, error) {
	var segments []*models.VideoSegment
	err := conn(ctx, r.db).
		Where("script_id = ?", scriptID).
		Order("segment_index ASC").
		Find(&segments).Error
	return segments, err
}

func (r *VideoSegmentRepositoryImpl) ListCompletedByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.VideoSegment, error) {
	var segments []*models.VideoSegment
	err := conn(ctx, r.db).
		Where("script_id = ? AND status = ? AND video_url IS NOT NULL AND video_url <> ''", scriptID, models.GenerationStatusCompleted).
		Order("segment_index ASC").
		Find(&segments).Error
	return segments, err
}

func (r *VideoSegmentRepositoryImpl) DeleteByScript(ctx context.Context, scriptID uuid.UUID) error {
	return conn(ctx, r.db).Where("script_id = ?", scriptID).Delete(&models.VideoSegment{}).Error
}

func (r *VideoSegmentRepositoryImpl) MarkGenerating(ctx context.Context, id uuid.UUID, model string) error {
	fields := map[string]interface{}{
		"status":        models.GenerationStatusGenerating,
		"video_url":     nil,
		"error_message": nil,
		"task_id":       "",
		"updated_at":    time.Now(),
	}
	if model != "" {
		fields["model"] = model
	}
	return r.updateFields(ctx, id, fields)
}

func (r *VideoSegmentRepositoryImpl) SetTaskID(ctx context.Context, id uuid.UUID, taskID string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"task_id":    taskID,
		"updated_at": time.Now(),
	})
}

func (r *VideoSegmentRepositoryImpl) MarkCompleted(ctx context.Context, id uuid.UUID, videoURL string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"status":        models.GenerationStatusCompleted,
		"video_url":     videoURL,
		"error_message": nil,
		"updated_at":    time.Now(),
	})
}

func (r *VideoSegmentRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return r.updateFields(ctx, id, map[string]interface{}{
		"status":        models.GenerationStatusFailed,
		"error_message": errorMessage,
		"updated_at":    time.Now(),
	})
}

func (r *VideoSegmentRepositoryImpl) FailStale(ctx context.Context, scriptID *uuid.UUID, cutoff time.Time, message string) (int64, error) {
	q := conn(ctx, r.db).
		Model(&models.VideoSegment{}).
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

func (r *VideoSegmentRepositoryImpl) updateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := conn(ctx, r.db).Model(&models.VideoSegment{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("video segment %s not found", id)
	}
	return nil
}

package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storyforge/domain/models"
)

type KeyframeRepository interface {
	// CreateBatch insert ตามลำดับใน slice (ลำดับ = ลำดับ playback)
	CreateBatch(ctx context.Context, keyframes []*models.Keyframe) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Keyframe, error)
	// ListByScript เรียงตาม sequence แล้ว created_at
	ListByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.Keyframe, error)
	ListCompletedByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.Keyframe, error)
	DeleteByScript(ctx context.Context, scriptID uuid.UUID) error

	MarkGenerating(ctx context.Context, id uuid.UUID, model, aspectRatio, quality string) error
	MarkCompleted(ctx context.Context, id uuid.UUID, imageURL string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
	UpdatePrompt(ctx context.Context, id uuid.UUID, prompt string) error

	// FailStale เปลี่ยน generating ที่ updated_at < cutoff เป็น failed ในคำสั่งเดียว
	// scriptID = nil คือทุก script
	FailStale(ctx context.Context, scriptID *uuid.UUID, cutoff time.Time, message string) (int64, error)
}

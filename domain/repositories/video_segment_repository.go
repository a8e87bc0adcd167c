package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"storyforge/domain/models"
)

type VideoSegmentRepository interface {
	CreateBatch(ctx context.Context, segments []*models.VideoSegment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.VideoSegment, error)
	// ListByScript เรียงตาม segment_index
	ListByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.VideoSegment, error)
	ListCompletedByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.VideoSegment, error)
	DeleteByScript(ctx context.Context, scriptID uuid.UUID) error

	// MarkGenerating reset video_url/error_message, model ว่าง = ไม่เปลี่ยน
	MarkGenerating(ctx context.Context, id uuid.UUID, model string) error
	SetTaskID(ctx context.Context, id uuid.UUID, taskID string) error
	MarkCompleted(ctx context.Context, id uuid.UUID, videoURL string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error

	FailStale(ctx context.Context, scriptID *uuid.UUID, cutoff time.Time, message string) (int64, error)
}

package services

import (
	"context"

	"github.com/google/uuid"

	"storyforge/domain/dto"
	"storyforge/domain/models"
)

// VideoService pipeline สร้างคลิปวิดีโอระหว่าง keyframes
type VideoService interface {
	// GenerateVideos สร้าง segment ละคู่ keyframe แล้วรันทุก segment พร้อมกัน
	GenerateVideos(ctx context.Context, req *dto.GenerateVideosRequest) ([]*models.VideoSegment, error)

	RegenerateSegment(ctx context.Context, id uuid.UUID, req *dto.RegenerateVideoRequest) (*models.VideoSegment, error)

	// ListByScript reap งานค้างก่อน แล้วคืน segments เรียงตาม index
	ListByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.VideoSegment, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.VideoSegment, error)
}

// ExportService รวมวิดีโอที่เสร็จแล้วเป็น zip
type ExportService interface {
	ExportVideos(ctx context.Context, scriptID uuid.UUID) (*dto.ExportResult, error)
}

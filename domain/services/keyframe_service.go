package services

import (
	"context"
	"io"

	"github.com/google/uuid"

	"storyforge/domain/dto"
	"storyforge/domain/models"
)

// KeyframeService pipeline สร้างภาพ keyframe ของ script
type KeyframeService interface {
	// GenerateKeyframes ลบ keyframes เดิมแล้วสร้างใหม่ตามลำดับ playback
	// คืน rows (status generating) ทันที ภาพถูกสร้างทีละภาพใน background
	GenerateKeyframes(ctx context.Context, req *dto.GenerateKeyframesRequest) ([]*models.Keyframe, error)

	// RegenerateKeyframe สร้างภาพใหม่ของ keyframe เดียว ไม่มี reference image
	RegenerateKeyframe(ctx context.Context, id uuid.UUID, req *dto.RegenerateKeyframeRequest) (*models.Keyframe, error)

	// ListByScript reap งานค้างก่อน แล้วคืน keyframes เรียงตาม sequence
	ListByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.Keyframe, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Keyframe, error)
	UpdatePrompt(ctx context.Context, id uuid.UUID, prompt string) (*models.Keyframe, error)

	// UploadImage ใช้ภาพที่ผู้ใช้อัปโหลดแทนภาพที่ generate
	UploadImage(ctx context.Context, id uuid.UUID, filename string, r io.Reader) (*models.Keyframe, error)
}

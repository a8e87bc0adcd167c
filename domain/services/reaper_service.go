package services

import (
	"context"

	"github.com/google/uuid"

	"storyforge/domain/dto"
)

// ReaperService เปลี่ยนงาน generating ที่ค้างเกิน threshold เป็น failed
type ReaperService interface {
	ReapScript(ctx context.Context, scriptID uuid.UUID) (*dto.ReapResult, error)
	// ReapAll ทุก script (ใช้กับ sweep ตาม cron)
	ReapAll(ctx context.Context) (*dto.ReapResult, error)
}

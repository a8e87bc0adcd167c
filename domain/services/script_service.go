package services

import (
	"context"

	"github.com/google/uuid"

	"storyforge/domain/dto"
	"storyforge/domain/models"
)

// ScriptService interface สำหรับจัดการ script และการสร้าง script ด้วย LLM
type ScriptService interface {
	// === CRUD ===

	Create(ctx context.Context, req *dto.CreateScriptRequest) (*models.Script, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Script, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateScriptRequest) (*models.Script, error)
	// Delete ลบ keyframes และ video segments ของ script ด้วย (cascade)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, req *dto.ListScriptsRequest) ([]*models.Script, int64, error)

	// PreviewSegments parse content ที่เก็บไว้เป็น segments (ไม่เขียน DB)
	PreviewSegments(ctx context.Context, id uuid.UUID) ([]models.Segment, error)

	// === LLM ===

	// GenerateScript สร้าง script ใหม่จาก inspiration แล้วบันทึก
	GenerateScript(ctx context.Context, req *dto.GenerateScriptRequest) (*models.Script, []models.Segment, error)

	// OptimizeScript เขียน content ใหม่ตาม creative description
	OptimizeScript(ctx context.Context, id uuid.UUID, req *dto.OptimizeScriptRequest) (*models.Script, error)
}

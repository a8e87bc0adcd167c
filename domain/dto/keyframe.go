package dto

import (
	"time"

	"github.com/google/uuid"

	"storyforge/domain/models"
)

// === Requests ===

type GenerateKeyframesRequest struct {
	ScriptID    uuid.UUID `json:"scriptId" validate:"required"`
	Model       string    `json:"model" validate:"omitempty,max=50"`
	AspectRatio string    `json:"aspectRatio" validate:"omitempty,max=20"`
	Quality     string    `json:"quality" validate:"omitempty,max=20"`
}

// RegenerateKeyframeRequest ค่าว่าง = ใช้ค่าเดิมของ row
type RegenerateKeyframeRequest struct {
	Model       string `json:"model" validate:"omitempty,max=50"`
	AspectRatio string `json:"aspectRatio" validate:"omitempty,max=20"`
	Quality     string `json:"quality" validate:"omitempty,max=20"`
}

type UpdateKeyframeRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1"`
}

// === Responses ===

type KeyframeResponse struct {
	ID             uuid.UUID               `json:"id"`
	ScriptID       uuid.UUID               `json:"scriptId"`
	SegmentID      string                  `json:"segmentId"`
	Sequence       int                     `json:"sequence"`
	IsOpeningFrame bool                    `json:"isOpeningFrame"`
	Prompt         string                  `json:"prompt"`
	ImageURL       *string                 `json:"imageUrl"`
	Model          string                  `json:"model"`
	AspectRatio    string                  `json:"aspectRatio"`
	Quality        string                  `json:"quality"`
	Status         models.GenerationStatus `json:"status"`
	ErrorMessage   *string                 `json:"errorMessage"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

package dto

import (
	"time"

	"github.com/google/uuid"

	"storyforge/domain/models"
)

// === Requests ===

type GenerateVideosRequest struct {
	ScriptID    uuid.UUID `json:"scriptId" validate:"required"`
	Model       string    `json:"model" validate:"omitempty,max=50"`
	AspectRatio string    `json:"aspectRatio" validate:"omitempty,max=20"`
	Duration    float64   `json:"duration" validate:"omitempty,gt=0,lte=60"`
}

type RegenerateVideoRequest struct {
	Model string `json:"model" validate:"omitempty,max=50"`
}

type ExportVideosRequest struct {
	ScriptID uuid.UUID `json:"scriptId" validate:"required"`
}

// === Responses ===

type VideoSegmentResponse struct {
	ID            uuid.UUID               `json:"id"`
	ScriptID      uuid.UUID               `json:"scriptId"`
	SegmentIndex  int                     `json:"segmentIndex"`
	FirstFrameURL string                  `json:"firstFrameUrl"`
	LastFrameURL  string                  `json:"lastFrameUrl"`
	Prompt        string                  `json:"prompt"`
	Model         string                  `json:"model"`
	AspectRatio   string                  `json:"aspectRatio"`
	Duration      float64                 `json:"duration"`
	VideoURL      *string                 `json:"videoUrl"`
	Status        models.GenerationStatus `json:"status"`
	ErrorMessage  *string                 `json:"errorMessage"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// ExportResult ผลของการรวมวิดีโอเป็น zip
type ExportResult struct {
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresIn"` // วินาที
	Entries     int    `json:"entries"`
	Skipped     int    `json:"skipped"`
}

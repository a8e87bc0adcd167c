package dto

import (
	"time"

	"github.com/google/uuid"

	"storyforge/domain/models"
)

// === Requests ===

type CreateScriptRequest struct {
	Title           string `json:"title" validate:"omitempty,max=255"`
	Content         string `json:"content" validate:"required"`
	Style           string `json:"style" validate:"omitempty,max=50"`
	TotalDuration   int    `json:"totalDuration" validate:"omitempty,min=0"`
	SegmentDuration int    `json:"segmentDuration" validate:"omitempty,min=1,max=60"`
}

type UpdateScriptRequest struct {
	Title           *string `json:"title" validate:"omitempty,max=255"`
	Content         *string `json:"content" validate:"omitempty,min=1"`
	Style           *string `json:"style" validate:"omitempty,max=50"`
	TotalDuration   *int    `json:"totalDuration" validate:"omitempty,min=0"`
	SegmentDuration *int    `json:"segmentDuration" validate:"omitempty,min=1,max=60"`
}

type GenerateScriptRequest struct {
	Title           string `json:"title" validate:"omitempty,max=255"`
	Inspiration     string `json:"inspiration" validate:"required,min=1,max=5000"`
	Style           string `json:"style" validate:"required"`
	TotalDuration   int    `json:"totalDuration" validate:"required,min=1,max=600"`
	SegmentDuration int    `json:"segmentDuration" validate:"required,min=1,max=60"`
	Model           string `json:"model" validate:"omitempty,max=50"`
}

type OptimizeScriptRequest struct {
	CreativeDescription string `json:"creativeDescription" validate:"required,min=1,max=5000"`
	Model               string `json:"model" validate:"omitempty,max=50"`
}

type ListScriptsRequest struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// === Responses ===

type ScriptResponse struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	Style            string    `json:"style"`
	TotalDuration    int       `json:"totalDuration"`
	SegmentDuration  int       `json:"segmentDuration"`
	OptimizedContent string    `json:"optimizedContent,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ScriptWithSegmentsResponse ใช้ตอน generate script (คืน segments ที่ parse แล้วด้วย)
type ScriptWithSegmentsResponse struct {
	Script   ScriptResponse   `json:"script"`
	Segments []models.Segment `json:"segments"`
}

type SegmentsResponse struct {
	ScriptID uuid.UUID        `json:"scriptId"`
	Segments []models.Segment `json:"segments"`
}

type ScriptStyle struct {
	ID          string `json:"id" toml:"id"`
	Name        string `json:"name" toml:"name"`
	Description string `json:"description" toml:"description"`
}

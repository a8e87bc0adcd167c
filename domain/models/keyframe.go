package models

import (
	"time"

	"github.com/google/uuid"
)

// OpeningFrameSuffix ต่อท้าย segment id ของ body segment แรก
// เพื่อเป็น segment id ของ opening frame
const OpeningFrameSuffix = "_first_frame"

// Keyframe ภาพนิ่งหนึ่งภาพของ segment ใน script
type Keyframe struct {
	ID             uuid.UUID        `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ScriptID       uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_keyframe_script_segment"`
	SegmentID      string           `gorm:"size:100;not null;uniqueIndex:idx_keyframe_script_segment"`
	Sequence       int              `gorm:"not null;default:0"` // ลำดับ playback, opening frame = 0
	IsOpeningFrame bool             `gorm:"default:false"`
	Prompt         string           `gorm:"type:text"`
	ImageURL       *string          `gorm:"type:text"`
	Model          string           `gorm:"size:50"`
	AspectRatio    string           `gorm:"size:20"`
	Quality        string           `gorm:"size:20"`
	Status         GenerationStatus `gorm:"size:20;default:'pending';index"`
	ErrorMessage   *string          `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Keyframe) TableName() string {
	return "keyframes"
}

// OpeningFrameSegmentID คืน segment id ของ opening frame จาก body segment แรก
func OpeningFrameSegmentID(firstBodySegmentID string) string {
	return firstBodySegmentID + OpeningFrameSuffix
}

func (k *Keyframe) IsCompleted() bool {
	return k.Status == GenerationStatusCompleted && k.ImageURL != nil && *k.ImageURL != ""
}

// URL คืน image url หรือ "" ถ้ายังไม่มี
func (k *Keyframe) URL() string {
	if k.ImageURL == nil {
		return ""
	}
	return *k.ImageURL
}

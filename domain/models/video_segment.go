package models

import (
	"time"

	"github.com/google/uuid"
)

// VideoSegment คลิปวิดีโอที่เชื่อมระหว่าง keyframe สองภาพ
// อ้างอิง keyframe ด้วย URL เท่านั้น (ไม่มี foreign key)
type VideoSegment struct {
	ID            uuid.UUID        `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ScriptID      uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_video_script_index"`
	SegmentIndex  int              `gorm:"not null;uniqueIndex:idx_video_script_index"`
	FirstFrameURL string           `gorm:"type:text"`
	LastFrameURL  string           `gorm:"type:text"`
	Prompt        string           `gorm:"type:text"`
	Model         string           `gorm:"size:50"`
	AspectRatio   string           `gorm:"size:20"`
	Duration      float64          `gorm:"default:6"` // วินาที
	TaskID        string           `gorm:"size:255"`  // handle จาก vendor
	VideoURL      *string          `gorm:"type:text"`
	Status        GenerationStatus `gorm:"size:20;default:'pending';index"`
	ErrorMessage  *string          `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (VideoSegment) TableName() string {
	return "video_segments"
}

func (v *VideoSegment) URL() string {
	if v.VideoURL == nil {
		return ""
	}
	return *v.VideoURL
}

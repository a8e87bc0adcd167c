package models

import (
	"time"

	"github.com/google/uuid"
)

// Script แผนเนื้อหาของ project, เป็นต้นทางของ keyframes และ video segments
type Script struct {
	ID               uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title            string    `gorm:"size:255"`
	Content          string    `gorm:"type:text;not null"`
	Style            string    `gorm:"size:50"`
	TotalDuration    int       `gorm:"default:0"` // วินาที
	SegmentDuration  int       `gorm:"default:6"` // วินาที
	OptimizedContent string    `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Relations (cascade delete)
	Keyframes     []*Keyframe     `gorm:"foreignKey:ScriptID;constraint:OnDelete:CASCADE"`
	VideoSegments []*VideoSegment `gorm:"foreignKey:ScriptID;constraint:OnDelete:CASCADE"`
}

func (Script) TableName() string {
	return "scripts"
}

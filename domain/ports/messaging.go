package ports

import (
	"context"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════════
// Status Publisher Port - แจ้งการเปลี่ยนสถานะของ keyframe / video segment
// ═══════════════════════════════════════════════════════════════════════════════

// EntityType ประเภท entity ที่ส่ง event
type EntityType string

const (
	EntityKeyframe     EntityType = "keyframe"
	EntityVideoSegment EntityType = "video_segment"
)

// StatusEvent - Plain struct (ไม่มี NATS dependency)
type StatusEvent struct {
	ScriptID   string     `json:"scriptId"`
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	Status     string     `json:"status"` // generating, completed, failed
	URL        string     `json:"url,omitempty"`
	Error      string     `json:"error,omitempty"`
	At         time.Time  `json:"at"`
}

// StatusPublisherPort - Interface สำหรับส่ง status event
// error จาก publisher ไม่มีผลกับ job (ผู้เรียน log แล้วไปต่อ)
type StatusPublisherPort interface {
	PublishStatus(ctx context.Context, event *StatusEvent) error
}

// StatusHandler - Callback function type
type StatusHandler func(event *StatusEvent)

// StatusSubscriberPort - Interface สำหรับ subscribe status ของ script
// คืน function สำหรับยกเลิก subscription
type StatusSubscriberPort interface {
	SubscribeScript(scriptID string, handler StatusHandler) (unsubscribe func())
}

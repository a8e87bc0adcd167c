package ports

import "context"

// ═══════════════════════════════════════════════════════════════════════════════
// Generation Task Client Port - submit แล้ว poll กับ image/video vendors
// ═══════════════════════════════════════════════════════════════════════════════

// JobKind ประเภทงาน generation
type JobKind string

const (
	JobKindImage JobKind = "image"
	JobKindVideo JobKind = "video"
)

// JobSpec ข้อมูลที่ส่งให้ vendor
type JobSpec struct {
	Kind          JobKind
	Model         string
	Prompt        string
	AspectRatio   string
	Quality       string
	ReferenceURLs []string // image: reference images
	FirstFrameURL string   // video
	LastFrameURL  string   // video
	Duration      float64  // video, วินาที
}

// TaskHandle handle ที่ vendor คืนมา, Model ใช้เลือก protocol ตอน poll
type TaskHandle struct {
	ID    string
	Model string
	Kind  JobKind
}

// TaskState สามสถานะที่ orchestration สนใจ
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
)

// TaskStatus ผลของการ poll หนึ่งครั้ง
type TaskStatus struct {
	State      TaskState
	ResultURLs []string // มีเมื่อ succeeded
	Reason     string   // มีเมื่อ failed
}

// TaskClientPort - vendor-agnostic submit/poll
// Submit: ConfigurationError เมื่อไม่มี credentials, UpstreamError เมื่อ vendor ปฏิเสธ
type TaskClientPort interface {
	Submit(ctx context.Context, spec JobSpec) (TaskHandle, error)
	Poll(ctx context.Context, handle TaskHandle) (TaskStatus, error)
}

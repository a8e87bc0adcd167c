package models

// GenerationStatus สถานะของ keyframe / video segment
// pending -> generating -> completed | failed
type GenerationStatus string

const (
	GenerationStatusPending    GenerationStatus = "pending"
	GenerationStatusGenerating GenerationStatus = "generating"
	GenerationStatusCompleted  GenerationStatus = "completed"
	GenerationStatusFailed     GenerationStatus = "failed"
)

// IsTerminal completed และ failed ไม่เปลี่ยนเองจนกว่าจะสั่ง regenerate
func (s GenerationStatus) IsTerminal() bool {
	return s == GenerationStatusCompleted || s == GenerationStatusFailed
}

func (s GenerationStatus) IsValid() bool {
	switch s {
	case GenerationStatusPending, GenerationStatusGenerating, GenerationStatusCompleted, GenerationStatusFailed:
		return true
	}
	return false
}

// StaleJobMessage ข้อความที่ reaper ใส่ให้ job ที่ค้าง
const StaleJobMessage = "generation timed out, please regenerate"

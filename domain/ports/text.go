package ports

import "context"

// TextRequest prompt สำหรับ text-generation
type TextRequest struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// TextGeneratorPort - collaborator สำหรับสร้าง/ปรับ script
type TextGeneratorPort interface {
	Generate(ctx context.Context, req TextRequest) (string, error)
}

// TextModel ข้อมูล model ที่ใช้ได้ (เฉพาะ provider ที่ตั้งค่าไว้)
type TextModel struct {
	ID   string `json:"id" toml:"id"`
	Name string `json:"name" toml:"name"`
}

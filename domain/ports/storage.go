package ports

import (
	"context"
	"io"
)

// StoragePort คือ interface ระดับ provider สำหรับ object storage
// ทำให้เปลี่ยน provider ได้ง่าย (local, MinIO, R2, GCS)
type StoragePort interface {
	// UploadFile อัปโหลดไฟล์ไปยัง storage
	// path: object key (เช่น "keyframes/2025/01/02/ab12cd34_keyframe_x.jpg")
	// return: URL ที่เข้าถึงไฟล์ได้
	UploadFile(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// DeleteFile ลบไฟล์จาก storage
	DeleteFile(ctx context.Context, path string) error

	// GetFileURL รับ URL สำหรับเข้าถึงไฟล์
	GetFileURL(path string) string

	// GetFileContent อ่านไฟล์จาก storage
	// return: io.ReadCloser, contentType, error
	GetFileContent(ctx context.Context, path string) (io.ReadCloser, string, error)

	// GetProviderName ชื่อ provider (local, s3, r2, gcs)
	GetProviderName() string
}

// BlobStorePort คือ protocol ที่ pipeline ใช้เก็บ artifacts
// ตั้งชื่อ object ให้เองตาม category
type BlobStorePort interface {
	// Upload เก็บ stream ภายใต้ category, name เป็นแค่ชื่อแนะนำ
	Upload(ctx context.Context, r io.Reader, name, category string) (string, error)

	// UploadFromURL ดึงไฟล์จาก URL ภายนอกแล้วเก็บใน storage ของเรา
	// ใช้ re-host ผลลัพธ์จาก vendor ที่ URL หมดอายุได้
	UploadFromURL(ctx context.Context, sourceURL, name, category string) (string, error)
}

// Blob categories
const (
	CategoryKeyframes = "keyframes"
	CategoryVideos    = "videos"
	CategoryExports   = "exports"
)

// ArtifactFetcherPort เปิด stream ของไฟล์จาก URL (ใช้ตอนรวม export archive)
type ArtifactFetcherPort interface {
	Fetch(ctx context.Context, sourceURL string) (io.ReadCloser, error)
}

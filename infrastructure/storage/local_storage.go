package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"storyforge/domain/ports"
	"storyforge/pkg/utils"
)

// LocalStorage implements StoragePort สำหรับเก็บไฟล์ใน local filesystem
// ไฟล์ถูก serve ผ่าน fiber static ที่ BaseURL
type LocalStorage struct {
	basePath       string // ./uploads
	baseURL        string // http://localhost:8080/files
	minFreePercent float64
}

type LocalStorageConfig struct {
	BasePath       string
	BaseURL        string
	MinFreePercent float64 // 0 = ไม่เช็ค
}

func NewLocalStorage(config LocalStorageConfig) (ports.StoragePort, error) {
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath:       config.BasePath,
		baseURL:        strings.TrimSuffix(config.BaseURL, "/"),
		minFreePercent: config.MinFreePercent,
	}, nil
}

func (l *LocalStorage) UploadFile(ctx context.Context, file io.Reader, path string, contentType string) (string, error) {
	if l.minFreePercent > 0 {
		ok, info, err := utils.CheckDiskSpace(l.basePath, 0, l.minFreePercent)
		if err == nil && !ok {
			return "", &utils.DiskSpaceError{Path: l.basePath, Available: info.Free}
		}
	}

	path = normalizeKey(path)
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(path))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, &ctxReader{ctx: ctx, r: file}); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return l.GetFileURL(path), nil
}

// DeleteFile ไฟล์ที่ไม่มีอยู่แล้วถือว่าสำเร็จ
func (l *LocalStorage) DeleteFile(ctx context.Context, path string) error {
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(normalizeKey(path)))

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *LocalStorage) GetFileURL(path string) string {
	return l.baseURL + "/" + normalizeKey(path)
}

func (l *LocalStorage) GetFileContent(ctx context.Context, path string) (io.ReadCloser, string, error) {
	path = normalizeKey(path)

	file, err := os.Open(filepath.Join(l.basePath, filepath.FromSlash(path)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	return file, contentTypeByExt(path), nil
}

func (l *LocalStorage) GetProviderName() string {
	return "local"
}

func contentTypeByExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// ctxReader หยุดอ่านเมื่อ ctx ถูกยกเลิก
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/h2non/filetype"

	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/logger"
)

// sniffLen จำนวน byte ที่ filetype ต้องใช้ match header
const sniffLen = 261

// BlobService implements BlobStorePort บน StoragePort ตัวไหนก็ได้
// ตั้ง object key เอง และ re-host ไฟล์จาก URL ของ vendor
type BlobService struct {
	storage    ports.StoragePort
	httpClient *http.Client
	now        func() time.Time
}

func NewBlobService(storage ports.StoragePort, fetchTimeout time.Duration) *BlobService {
	if fetchTimeout <= 0 {
		fetchTimeout = 60 * time.Second
	}
	return &BlobService{
		storage:    storage,
		httpClient: &http.Client{Timeout: fetchTimeout},
		now:        time.Now,
	}
}

// ObjectKey = {category}/{YYYY/MM/DD}/{uuid8}_{slug(name)}{ext}
func ObjectKey(category, name string, now time.Time) string {
	ext := strings.ToLower(path.Ext(name))
	base := slug.Make(strings.TrimSuffix(name, path.Ext(name)))
	if base == "" {
		base = "file"
	}
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	return fmt.Sprintf("%s/%s/%s_%s%s", category, now.UTC().Format("2006/01/02"), prefix, base, ext)
}

func (b *BlobService) Upload(ctx context.Context, r io.Reader, name, category string) (string, error) {
	br := bufio.NewReaderSize(r, 4096)

	// Peek คืน error ได้ถ้าไฟล์สั้นกว่า sniffLen, ใช้เท่าที่มี
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := contentTypeByExt(name)
	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		contentType = kind.MIME.Value
		if path.Ext(name) == "" {
			name = name + "." + kind.Extension
		}
	}

	key := ObjectKey(category, name, b.now())
	url, err := b.storage.UploadFile(ctx, br, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}

	logger.DebugContext(ctx, "Blob stored",
		"key", key,
		"content_type", contentType,
		"provider", b.storage.GetProviderName(),
	)
	return url, nil
}

// UploadFromURL ดึงไฟล์แล้ว stream ต่อเข้า storage โดยไม่พักลง disk
func (b *BlobService) UploadFromURL(ctx context.Context, sourceURL, name, category string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", apperrors.Validation("invalid source url: %s", sourceURL)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Upstream("blob", "failed to fetch artifact", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.Upstream("blob", fmt.Sprintf("fetch artifact returned status %d", resp.StatusCode), nil)
	}

	return b.Upload(ctx, resp.Body, name, category)
}

// Fetch เปิด stream ของ artifact ผู้เรียนต้องปิดเอง
// URL ที่อยู่ใน storage ของเราเองอ่านตรงจาก provider ไม่วนผ่าน HTTP
func (b *BlobService) Fetch(ctx context.Context, sourceURL string) (io.ReadCloser, error) {
	if key, ok := b.ownKey(sourceURL); ok {
		rc, _, err := b.storage.GetFileContent(ctx, key)
		if err == nil {
			return rc, nil
		}
		logger.DebugContext(ctx, "Direct read failed, fetching over HTTP", "key", key, "error", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, apperrors.Validation("invalid source url: %s", sourceURL)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Upstream("blob", "failed to fetch artifact", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, apperrors.Upstream("blob", fmt.Sprintf("fetch artifact returned status %d", resp.StatusCode), nil)
	}
	return resp.Body, nil
}

// ownKey คืน object key ถ้า URL ชี้มาที่ storage ของเรา
func (b *BlobService) ownKey(sourceURL string) (string, bool) {
	base := b.storage.GetFileURL("")
	if base == "" || base == "/" || !strings.HasPrefix(sourceURL, base) {
		return "", false
	}
	key := strings.TrimPrefix(sourceURL, base)
	return key, key != ""
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"storyforge/domain/ports"
	"storyforge/pkg/logger"
)

// GCSStorage implements StoragePort สำหรับ Google Cloud Storage
type GCSStorage struct {
	client    *gcs.Client
	bucket    string
	publicURL string
}

type GCSStorageConfig struct {
	Bucket          string
	CredentialsFile string // ว่าง = Application Default Credentials
	PublicURL       string // ว่าง = https://storage.googleapis.com/<bucket>
}

func NewGCSStorage(ctx context.Context, cfg GCSStorageConfig) (ports.StoragePort, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = "https://storage.googleapis.com/" + cfg.Bucket
	}

	logger.Info("GCS storage initialized", "bucket", cfg.Bucket)

	return &GCSStorage{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

// UploadFile stream ตรงเข้า object writer, upload เสร็จเมื่อ Close สำเร็จ
func (g *GCSStorage) UploadFile(ctx context.Context, file io.Reader, path string, contentType string) (string, error) {
	path = normalizeKey(path)

	w := g.client.Bucket(g.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, file); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize GCS upload: %w", err)
	}

	return g.GetFileURL(path), nil
}

func (g *GCSStorage) DeleteFile(ctx context.Context, path string) error {
	err := g.client.Bucket(g.bucket).Object(normalizeKey(path)).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete from GCS: %w", err)
	}
	return nil
}

func (g *GCSStorage) GetFileURL(path string) string {
	return g.publicURL + "/" + normalizeKey(path)
}

func (g *GCSStorage) GetFileContent(ctx context.Context, path string) (io.ReadCloser, string, error) {
	r, err := g.client.Bucket(g.bucket).Object(normalizeKey(path)).NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read from GCS: %w", err)
	}
	return r, r.Attrs.ContentType, nil
}

func (g *GCSStorage) GetProviderName() string {
	return "gcs"
}

// Close ปิด client ตอน shutdown
func (g *GCSStorage) Close() error {
	return g.client.Close()
}

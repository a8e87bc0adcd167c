package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"storyforge/domain/ports"
	"storyforge/pkg/logger"
)

// R2Storage implements StoragePort สำหรับ Cloudflare R2 ผ่าน aws-sdk-go-v2
type R2Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

type R2StorageConfig struct {
	Endpoint  string // https://<account>.r2.cloudflarestorage.com
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	PublicURL string
}

func NewR2Storage(cfg R2StorageConfig) (ports.StoragePort, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	logger.Info("R2 storage initialized", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)

	return &R2Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// UploadFile อ่านทั้งก้อนเข้า memory เพราะ PutObject ต้องการ body ที่ seek ได้
func (r *R2Storage) UploadFile(ctx context.Context, file io.Reader, path string, contentType string) (string, error) {
	path = normalizeKey(path)

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	logger.DebugContext(ctx, "File uploaded", "path", path, "size", len(data))
	return r.GetFileURL(path), nil
}

func (r *R2Storage) DeleteFile(ctx context.Context, path string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(normalizeKey(path)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

func (r *R2Storage) GetFileURL(path string) string {
	return fmt.Sprintf("%s/%s", r.publicURL, normalizeKey(path))
}

func (r *R2Storage) GetFileContent(ctx context.Context, path string) (io.ReadCloser, string, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(normalizeKey(path)),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file from R2: %w", err)
	}

	return result.Body, aws.ToString(result.ContentType), nil
}

func (r *R2Storage) GetProviderName() string {
	return "r2"
}

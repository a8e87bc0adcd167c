package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"storyforge/domain/ports"
	"storyforge/pkg/config"
)

// setup-bucket เตรียม bucket สำหรับ STORAGE_TYPE=s3
//   - public read เฉพาะ prefix ที่ frontend โหลดตรง (keyframes, videos, exports)
//   - ลบ export archive อัตโนมัติหลัง -export-days วัน
func main() {
	exportDays := flag.Int("export-days", 1, "days before exports/ objects expire (0 = keep)")
	dryRun := flag.Bool("dry-run", false, "print policy without applying")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	s3 := cfg.Storage.S3

	policy, err := publicReadPolicy(s3.Bucket, ports.CategoryKeyframes, ports.CategoryVideos, ports.CategoryExports)
	if err != nil {
		log.Fatalf("Failed to build policy: %v", err)
	}

	fmt.Printf("Endpoint: %s\nBucket:   %s\nRegion:   %s\n\n", s3.Endpoint, s3.Bucket, s3.Region)
	fmt.Println(policy)
	if *dryRun {
		return
	}

	client, err := minio.New(s3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3.AccessKey, s3.SecretKey, ""),
		Secure: s3.UseSSL,
		Region: s3.Region,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, s3.Bucket)
	if err != nil {
		log.Fatalf("Failed to check bucket: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, s3.Bucket, minio.MakeBucketOptions{Region: s3.Region}); err != nil {
			log.Fatalf("Failed to create bucket: %v", err)
		}
		fmt.Printf("✓ Bucket '%s' created\n", s3.Bucket)
	}

	if err := client.SetBucketPolicy(ctx, s3.Bucket, policy); err != nil {
		log.Printf("Warning: failed to set policy: %v", err)
	} else {
		fmt.Println("✓ Bucket policy set")
	}

	if *exportDays > 0 {
		lc := lifecycle.NewConfiguration()
		lc.Rules = []lifecycle.Rule{{
			ID:         "expire-exports",
			Status:     "Enabled",
			RuleFilter: lifecycle.Filter{Prefix: ports.CategoryExports + "/"},
			Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(*exportDays)},
		}}
		if err := client.SetBucketLifecycle(ctx, s3.Bucket, lc); err != nil {
			log.Printf("Warning: failed to set lifecycle: %v", err)
		} else {
			fmt.Printf("✓ exports/ expire after %d day(s)\n", *exportDays)
		}
	}

	// ทดสอบสิทธิ์เขียน/ลบ ด้วย object ชั่วคราว
	probe := []byte("storyforge permission check")
	key := ports.CategoryExports + "/.setup-probe"
	if _, err := client.PutObject(ctx, s3.Bucket, key, bytes.NewReader(probe), int64(len(probe)),
		minio.PutObjectOptions{ContentType: "text/plain"}); err != nil {
		log.Fatalf("PutObject failed: %v", err)
	}
	if err := client.RemoveObject(ctx, s3.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		log.Fatalf("RemoveObject failed: %v", err)
	}
	fmt.Println("✓ Write/delete permissions OK")
}

func publicReadPolicy(bucket string, prefixes ...string) (string, error) {
	resources := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		resources = append(resources, fmt.Sprintf("arn:aws:s3:::%s/%s/*", bucket, p))
	}

	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{{
			"Sid":       "PublicReadArtifacts",
			"Effect":    "Allow",
			"Principal": map[string]any{"AWS": []string{"*"}},
			"Action":    []string{"s3:GetObject"},
			"Resource":  resources,
		}},
	}

	out, err := json.MarshalIndent(policy, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

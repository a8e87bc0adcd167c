package serviceimpl

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"storyforge/domain/dto"
	"storyforge/domain/models"
	"storyforge/domain/ports"
	"storyforge/domain/repositories"
	"storyforge/domain/services"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/logger"
)

type ExportServiceImpl struct {
	segmentRepo repositories.VideoSegmentRepository
	fetcher     ports.ArtifactFetcherPort
	blob        ports.BlobStorePort
	expiresIn   int
	now         func() time.Time
}

// NewExportService expiresIn เป็นวินาที (default 3600)
func NewExportService(
	segmentRepo repositories.VideoSegmentRepository,
	fetcher ports.ArtifactFetcherPort,
	blob ports.BlobStorePort,
	expiresIn int,
) services.ExportService {
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	return &ExportServiceImpl{
		segmentRepo: segmentRepo,
		fetcher:     fetcher,
		blob:        blob,
		expiresIn:   expiresIn,
		now:         time.Now,
	}
}

type archiveStats struct {
	entries int
	skipped int
}

// ExportVideos zip วิดีโอที่เสร็จแล้วขณะอัปโหลด (io.Pipe) ไม่ต้องเก็บทั้งไฟล์ไว้ใน memory
func (s *ExportServiceImpl) ExportVideos(ctx context.Context, scriptID uuid.UUID) (*dto.ExportResult, error) {
	segments, err := s.segmentRepo.ListCompletedByScript(ctx, scriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load video segments: %w", err)
	}
	if len(segments) == 0 {
		return nil, apperrors.NotFound("no completed video segments for script %s", scriptID)
	}

	now := s.now()
	pr, pw := io.Pipe()
	done := make(chan archiveStats, 1)

	go func() {
		stats, err := s.writeArchive(ctx, pw, segments, now)
		pw.CloseWithError(err)
		done <- stats
	}()

	name := fmt.Sprintf("videos_script_%s_%d.zip", scriptID, now.Unix())
	url, err := s.blob.Upload(ctx, pr, name, ports.CategoryExports)
	// ปลด writer ถ้า upload จบก่อนอ่านหมด
	pr.CloseWithError(err)
	stats := <-done
	if err != nil {
		logger.ErrorContext(ctx, "Failed to upload export archive", "script_id", scriptID, "error", err)
		return nil, fmt.Errorf("failed to upload export archive: %w", err)
	}

	if stats.entries == 0 {
		logger.WarnContext(ctx, "Export archive has no entries", "script_id", scriptID, "skipped", stats.skipped)
	}
	logger.InfoContext(ctx, "Videos exported",
		"script_id", scriptID,
		"entries", stats.entries,
		"skipped", stats.skipped,
		"url", url,
	)

	return &dto.ExportResult{
		DownloadURL: url,
		ExpiresIn:   s.expiresIn,
		Entries:     stats.entries,
		Skipped:     stats.skipped,
	}, nil
}

func (s *ExportServiceImpl) writeArchive(ctx context.Context, w io.Writer, segments []*models.VideoSegment, now time.Time) (archiveStats, error) {
	var stats archiveStats
	zw := zip.NewWriter(w)

	for _, seg := range segments {
		ok, err := s.writeEntry(ctx, zw, seg, now)
		if err != nil {
			return stats, err
		}
		if ok {
			stats.entries++
		} else {
			stats.skipped++
		}
	}
	return stats, zw.Close()
}

// writeEntry คืน ok=false เมื่อดึงไฟล์ไม่ครบ (ข้าม), error เมื่อเขียน archive ไม่ได้
// ดึงไฟล์ลง temp file จนครบก่อน แล้วค่อยสร้าง entry ไม่ให้ archive มีไฟล์ที่ขาดกลางทาง
func (s *ExportServiceImpl) writeEntry(ctx context.Context, zw *zip.Writer, seg *models.VideoSegment, now time.Time) (bool, error) {
	spooled, err := s.spool(ctx, seg)
	if err != nil {
		logger.WarnContext(ctx, "Skipping video segment in export",
			"segment_id", seg.ID,
			"segment_index", seg.SegmentIndex,
			"error", err,
		)
		return false, nil
	}
	defer func() {
		spooled.Close()
		os.Remove(spooled.Name())
	}()

	// mp4 บีบอัดมาแล้ว เก็บแบบ Store
	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:     fmt.Sprintf("segment_%d.mp4", seg.SegmentIndex),
		Method:   zip.Store,
		Modified: now,
	})
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(entry, spooled); err != nil {
		return false, fmt.Errorf("failed to write segment_%d.mp4: %w", seg.SegmentIndex, err)
	}
	return true, nil
}

// spool ดึง artifact ทั้งไฟล์ลง temp file แล้ว seek กลับไปต้นไฟล์
func (s *ExportServiceImpl) spool(ctx context.Context, seg *models.VideoSegment) (*os.File, error) {
	body, err := s.fetcher.Fetch(ctx, seg.URL())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	f, err := os.CreateTemp("", "storyforge-export-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("failed to create spool file: %w", err)
	}
	discard := func(err error) (*os.File, error) {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}

	if _, err := io.Copy(f, body); err != nil {
		return discard(fmt.Errorf("download interrupted: %w", err))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return discard(err)
	}
	return f, nil
}

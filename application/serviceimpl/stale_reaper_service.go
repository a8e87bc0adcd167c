package serviceimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storyforge/domain/dto"
	"storyforge/domain/models"
	"storyforge/domain/repositories"
	"storyforge/domain/services"
	"storyforge/pkg/logger"
	"storyforge/pkg/scheduler"
)

// StaleReaperConfig การตั้งค่าสำหรับ reaper
type StaleReaperConfig struct {
	StaleAfter time.Duration // generating นานกว่านี้ถือว่า unit ตายไปแล้ว (default: 5m)
	SweepCron  string        // ว่าง = ไม่มี sweep, reap ตอน list อย่างเดียว
}

// StaleReaperService เปลี่ยน keyframe / video segment ที่ค้าง generating เป็น failed
// ทำงานแบบ lazy ตอน list เป็นหลัก, sweep ตาม cron เป็นตัวเสริม
type StaleReaperService struct {
	config       StaleReaperConfig
	keyframeRepo repositories.KeyframeRepository
	segmentRepo  repositories.VideoSegmentRepository
	scheduler    scheduler.EventScheduler
	now          func() time.Time
}

// NewStaleReaperService eventScheduler เป็น nil ได้ถ้าไม่ใช้ sweep
func NewStaleReaperService(
	config StaleReaperConfig,
	keyframeRepo repositories.KeyframeRepository,
	segmentRepo repositories.VideoSegmentRepository,
	eventScheduler scheduler.EventScheduler,
) *StaleReaperService {
	if config.StaleAfter <= 0 {
		config.StaleAfter = 5 * time.Minute
	}
	return &StaleReaperService{
		config:       config,
		keyframeRepo: keyframeRepo,
		segmentRepo:  segmentRepo,
		scheduler:    eventScheduler,
		now:          time.Now,
	}
}

var _ services.ReaperService = (*StaleReaperService)(nil)

// RegisterSweep ลงทะเบียน sweep ทุก script กับ scheduler เมื่อตั้ง cron ไว้
func (s *StaleReaperService) RegisterSweep() error {
	if s.config.SweepCron == "" || s.scheduler == nil {
		return nil
	}
	return s.scheduler.AddJob("stale_reaper", s.config.SweepCron, func() {
		if _, err := s.ReapAll(context.Background()); err != nil {
			logger.Error("Stale sweep failed", "error", err)
		}
	})
}

func (s *StaleReaperService) ReapScript(ctx context.Context, scriptID uuid.UUID) (*dto.ReapResult, error) {
	return s.reap(ctx, &scriptID)
}

func (s *StaleReaperService) ReapAll(ctx context.Context) (*dto.ReapResult, error) {
	return s.reap(ctx, nil)
}

// reap หนึ่ง UPDATE ต่อตาราง
func (s *StaleReaperService) reap(ctx context.Context, scriptID *uuid.UUID) (*dto.ReapResult, error) {
	cutoff := s.now().Add(-s.config.StaleAfter)

	keyframes, err := s.keyframeRepo.FailStale(ctx, scriptID, cutoff, models.StaleJobMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to reap keyframes: %w", err)
	}
	segments, err := s.segmentRepo.FailStale(ctx, scriptID, cutoff, models.StaleJobMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to reap video segments: %w", err)
	}

	result := &dto.ReapResult{Keyframes: keyframes, VideoSegments: segments}
	if keyframes+segments > 0 {
		args := []any{
			"keyframes", keyframes,
			"video_segments", segments,
			"stale_after", s.config.StaleAfter,
		}
		if scriptID != nil {
			args = append(args, "script_id", *scriptID)
		}
		logger.WarnContext(ctx, "Marked stale generation jobs as failed", args...)
	}
	return result, nil
}

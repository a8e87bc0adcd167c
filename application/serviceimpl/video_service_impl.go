package serviceimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storyforge/domain/dto"
	"storyforge/domain/models"
	"storyforge/domain/ports"
	"storyforge/domain/services"
	"storyforge/infrastructure/generation"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/logger"
)

type VideoServiceImpl struct {
	deps PipelineDeps
	now  func() time.Time
}

func NewVideoService(deps PipelineDeps) services.VideoService {
	return &VideoServiceImpl{deps: deps, now: time.Now}
}

type videoParams struct {
	model       string
	aspectRatio string
	duration    float64
}

type videoJob struct {
	id            uuid.UUID
	scriptID      uuid.UUID
	index         int
	prompt        string
	firstFrameURL string
	lastFrameURL  string
}

func (s *VideoServiceImpl) GenerateVideos(ctx context.Context, req *dto.GenerateVideosRequest) ([]*models.VideoSegment, error) {
	script, err := s.deps.Scripts.GetByID(ctx, req.ScriptID)
	if err != nil {
		return nil, err
	}

	params := videoParams{
		model:       firstNonEmpty(req.Model, DefaultVideoModel),
		aspectRatio: firstNonEmpty(req.AspectRatio, DefaultVideoAspectRatio),
		duration:    req.Duration,
	}
	if params.duration <= 0 {
		params.duration = DefaultVideoDuration
	}
	if _, ok := s.deps.Catalog.FindVideoModel(params.model); !ok {
		return nil, apperrors.Validation("unsupported video model: %s", params.model)
	}

	keyframes, err := s.deps.Keyframes.ListCompletedByScript(ctx, script.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyframes: %w", err)
	}
	if len(keyframes) == 0 {
		return nil, apperrors.Validation("script %s has no completed keyframes", script.ID)
	}

	opening, body := splitKeyframes(keyframes)
	if len(body) == 0 {
		return nil, apperrors.Validation("script %s has no completed segment keyframes", script.ID)
	}
	if opening == nil {
		return nil, apperrors.NotFound("opening frame keyframe for script %s not found", script.ID)
	}

	rows := buildVideoRows(script.ID, opening, body, params)

	check, err := beginGeneration(ctx, s.deps.Guard, videoScriptKey(script.ID), func() error {
		return s.deps.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.deps.Segments.DeleteByScript(ctx, script.ID); err != nil {
				return fmt.Errorf("failed to delete video segments: %w", err)
			}
			if err := s.deps.Segments.CreateBatch(ctx, rows); err != nil {
				return fmt.Errorf("failed to create video segments: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to prepare video generation", "script_id", script.ID, "error", err)
		return nil, err
	}

	// ทุก segment ไม่ขึ้นต่อกัน ส่งเข้า pool พร้อมกันหมด
	for _, row := range rows {
		s.launch(ctx, check, jobFromSegment(row), params)
	}

	logger.InfoContext(ctx, "Video generation started",
		"script_id", script.ID,
		"segments", len(rows),
		"model", params.model,
	)
	return rows, nil
}

// splitKeyframes แยก opening frame ออกจาก body (keyframes เรียงตาม sequence แล้ว)
func splitKeyframes(keyframes []*models.Keyframe) (*models.Keyframe, []*models.Keyframe) {
	var opening *models.Keyframe
	body := make([]*models.Keyframe, 0, len(keyframes))
	for _, kf := range keyframes {
		if kf.IsOpeningFrame {
			if opening == nil {
				opening = kf
			}
			continue
		}
		body = append(body, kf)
	}
	return opening, body
}

// buildVideoRows segment 0: opening -> body[0], segment i: body[i-1] -> body[i]
// prompt มาจาก keyframe ปลายทาง
func buildVideoRows(scriptID uuid.UUID, opening *models.Keyframe, body []*models.Keyframe, params videoParams) []*models.VideoSegment {
	rows := make([]*models.VideoSegment, len(body))
	prev := opening
	for i, dest := range body {
		rows[i] = &models.VideoSegment{
			ID:            uuid.New(),
			ScriptID:      scriptID,
			SegmentIndex:  i,
			FirstFrameURL: prev.URL(),
			LastFrameURL:  dest.URL(),
			Prompt:        dest.Prompt,
			Model:         params.model,
			AspectRatio:   params.aspectRatio,
			Duration:      params.duration,
			Status:        models.GenerationStatusGenerating,
		}
		prev = dest
	}
	return rows
}

func jobFromSegment(seg *models.VideoSegment) videoJob {
	return videoJob{
		id:            seg.ID,
		scriptID:      seg.ScriptID,
		index:         seg.SegmentIndex,
		prompt:        seg.Prompt,
		firstFrameURL: seg.FirstFrameURL,
		lastFrameURL:  seg.LastFrameURL,
	}
}

func (s *VideoServiceImpl) launch(ctx context.Context, check epochCheck, job videoJob, params videoParams) {
	name := fmt.Sprintf("video_segment:%s", job.id)
	err := s.deps.Pool.Go(ctx, name, func(ctx context.Context) error {
		ctx = logger.ContextWithJob(ctx, job.scriptID.String(), "video_segment")
		return s.runSegment(ctx, check, job, params)
	})
	if err != nil {
		s.markFailed(ctx, job, fmt.Errorf("failed to start video generation: %w", err))
	}
}

func (s *VideoServiceImpl) runSegment(ctx context.Context, check epochCheck, job videoJob, params videoParams) error {
	if check.superseded(ctx) {
		return nil
	}

	url, err := protect(func() (string, error) {
		spec := ports.JobSpec{
			Kind:          ports.JobKindVideo,
			Model:         params.model,
			Prompt:        job.prompt,
			AspectRatio:   params.aspectRatio,
			FirstFrameURL: job.firstFrameURL,
			LastFrameURL:  job.lastFrameURL,
			Duration:      params.duration,
		}

		handle, err := s.deps.Tasks.Submit(ctx, spec)
		if err != nil {
			return "", err
		}
		err = writeTerminal(ctx, s.deps.Tx, func(ctx context.Context) error {
			return s.deps.Segments.SetTaskID(ctx, job.id, handle.ID)
		})
		if err != nil {
			logger.WarnContext(ctx, "Failed to save video task id", "segment_id", job.id, "error", err)
		}

		resultURL, err := generation.Await(ctx, s.deps.Tasks, handle, s.deps.Policies.For(params.model, ports.JobKindVideo))
		if err != nil {
			return "", err
		}

		name := fmt.Sprintf("video_segment_%s_%d.mp4", job.id, s.now().Unix())
		return s.deps.Blob.UploadFromURL(ctx, resultURL, name, ports.CategoryVideos)
	})

	if check.superseded(ctx) {
		logger.InfoContext(ctx, "Video segment superseded, dropping result", "segment_id", job.id)
		return nil
	}
	if err != nil {
		s.markFailed(ctx, job, err)
		return ctx.Err()
	}
	s.markCompleted(ctx, job, url)
	return nil
}

func (s *VideoServiceImpl) markCompleted(ctx context.Context, job videoJob, url string) {
	err := writeTerminal(ctx, s.deps.Tx, func(ctx context.Context) error {
		return s.deps.Segments.MarkCompleted(ctx, job.id, url)
	})
	if err != nil {
		s.markFailed(ctx, job, fmt.Errorf("failed to save video result: %w", err))
		return
	}

	logger.InfoContext(ctx, "Video segment completed", "segment_id", job.id, "segment_index", job.index)
	publishStatus(ctx, s.deps.Publisher, &ports.StatusEvent{
		ScriptID:   job.scriptID.String(),
		EntityType: ports.EntityVideoSegment,
		EntityID:   job.id.String(),
		Status:     string(models.GenerationStatusCompleted),
		URL:        url,
	})
}

func (s *VideoServiceImpl) markFailed(ctx context.Context, job videoJob, cause error) {
	msg := cause.Error()
	logger.WarnContext(ctx, "Video segment generation failed",
		"segment_id", job.id,
		"segment_index", job.index,
		"error", cause,
	)

	err := writeTerminal(ctx, s.deps.Tx, func(ctx context.Context) error {
		return s.deps.Segments.MarkFailed(ctx, job.id, msg)
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to mark video segment failed", "segment_id", job.id, "error", err)
		return
	}

	publishStatus(ctx, s.deps.Publisher, &ports.StatusEvent{
		ScriptID:   job.scriptID.String(),
		EntityType: ports.EntityVideoSegment,
		EntityID:   job.id.String(),
		Status:     string(models.GenerationStatusFailed),
		Error:      msg,
	})
}

func (s *VideoServiceImpl) RegenerateSegment(ctx context.Context, id uuid.UUID, req *dto.RegenerateVideoRequest) (*models.VideoSegment, error) {
	seg, err := s.deps.Segments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	params := videoParams{
		model:       firstNonEmpty(req.Model, seg.Model, DefaultVideoModel),
		aspectRatio: firstNonEmpty(seg.AspectRatio, DefaultVideoAspectRatio),
		duration:    seg.Duration,
	}
	if params.duration <= 0 {
		params.duration = DefaultVideoDuration
	}
	if _, ok := s.deps.Catalog.FindVideoModel(params.model); !ok {
		return nil, apperrors.Validation("unsupported video model: %s", params.model)
	}

	check, err := beginGeneration(ctx, s.deps.Guard, videoItemKey(seg.ID), func() error {
		return s.deps.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.deps.Segments.MarkGenerating(ctx, seg.ID, params.model)
		})
	})
	if err != nil {
		return nil, err
	}

	seg.Status = models.GenerationStatusGenerating
	seg.VideoURL = nil
	seg.ErrorMessage = nil
	seg.TaskID = ""
	seg.Model = params.model

	s.launch(ctx, check, jobFromSegment(seg), params)

	logger.InfoContext(ctx, "Video segment regeneration started", "segment_id", seg.ID, "model", params.model)
	return seg, nil
}

func (s *VideoServiceImpl) ListByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.VideoSegment, error) {
	if _, err := s.deps.Scripts.GetByID(ctx, scriptID); err != nil {
		return nil, err
	}

	if _, err := s.deps.Reaper.ReapScript(ctx, scriptID); err != nil {
		logger.WarnContext(ctx, "Failed to reap stale video segments", "script_id", scriptID, "error", err)
	}

	return s.deps.Segments.ListByScript(ctx, scriptID)
}

func (s *VideoServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.VideoSegment, error) {
	return s.deps.Segments.GetByID(ctx, id)
}

package serviceimpl

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"storyforge/domain/dto"
	"storyforge/domain/models"
	"storyforge/domain/ports"
	"storyforge/domain/services"
	"storyforge/infrastructure/generation"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/logger"
	"storyforge/pkg/segmenter"
)

type KeyframeServiceImpl struct {
	deps PipelineDeps
}

func NewKeyframeService(deps PipelineDeps) services.KeyframeService {
	return &KeyframeServiceImpl{deps: deps}
}

type imageParams struct {
	model       string
	aspectRatio string
	quality     string
}

// keyframeJob ข้อมูลที่ unit ต้องใช้ (ไม่แชร์ row กับ response)
type keyframeJob struct {
	id       uuid.UUID
	scriptID uuid.UUID
	prompt   string
}

func (s *KeyframeServiceImpl) GenerateKeyframes(ctx context.Context, req *dto.GenerateKeyframesRequest) ([]*models.Keyframe, error) {
	script, err := s.deps.Scripts.GetByID(ctx, req.ScriptID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(script.Content) == "" {
		return nil, apperrors.Validation("script %s has no content", script.ID)
	}

	segments := segmenter.Parse(script.Content, script.SegmentDuration)
	if len(segmenter.Body(segments)) == 0 {
		return nil, apperrors.Validation("script %s has no segments", script.ID)
	}

	params := imageParams{
		model:       firstNonEmpty(req.Model, DefaultImageModel),
		aspectRatio: firstNonEmpty(req.AspectRatio, DefaultImageAspectRatio),
		quality:     firstNonEmpty(req.Quality, DefaultImageQuality),
	}
	if _, ok := s.deps.Catalog.FindImageModel(params.model); !ok {
		return nil, apperrors.Validation("unsupported image model: %s", params.model)
	}

	rows := buildKeyframeRows(script.ID, segments, params)

	check, err := beginGeneration(ctx, s.deps.Guard, keyframeScriptKey(script.ID), func() error {
		return s.deps.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.deps.Keyframes.DeleteByScript(ctx, script.ID); err != nil {
				return fmt.Errorf("failed to delete keyframes: %w", err)
			}
			if err := s.deps.Keyframes.CreateBatch(ctx, rows); err != nil {
				return fmt.Errorf("failed to create keyframes: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to prepare keyframe generation", "script_id", script.ID, "error", err)
		return nil, err
	}

	jobs := make([]keyframeJob, len(rows))
	for i, row := range rows {
		jobs[i] = keyframeJob{id: row.ID, scriptID: row.ScriptID, prompt: row.Prompt}
	}

	name := "keyframe_chain:" + script.ID.String()
	err = s.deps.Pool.Go(ctx, name, func(ctx context.Context) error {
		ctx = logger.ContextWithJob(ctx, script.ID.String(), "keyframe_chain")
		return s.runChain(ctx, check, jobs, params)
	})
	if err != nil {
		for _, job := range jobs {
			s.markFailed(ctx, job, err)
		}
		return nil, fmt.Errorf("failed to start keyframe generation: %w", err)
	}

	logger.InfoContext(ctx, "Keyframe generation started",
		"script_id", script.ID,
		"keyframes", len(rows),
		"model", params.model,
	)
	return rows, nil
}

// buildKeyframeRows เรียงตามลำดับ playback: opening frame (sequence 0) แล้ว body 1..K
// ลำดับนี้คือลำดับ reference chaining ด้วย
func buildKeyframeRows(scriptID uuid.UUID, segments []models.Segment, params imageParams) []*models.Keyframe {
	body := segmenter.Body(segments)
	rows := make([]*models.Keyframe, 0, len(body)+1)

	newRow := func(segmentID string, sequence int, prompt string, opening bool) *models.Keyframe {
		return &models.Keyframe{
			ID:             uuid.New(),
			ScriptID:       scriptID,
			SegmentID:      segmentID,
			Sequence:       sequence,
			IsOpeningFrame: opening,
			Prompt:         prompt,
			Model:          params.model,
			AspectRatio:    params.aspectRatio,
			Quality:        params.quality,
			Status:         models.GenerationStatusGenerating,
		}
	}

	if opening := segmenter.OpeningFrame(segments); opening != nil {
		rows = append(rows, newRow(models.OpeningFrameSegmentID(body[0].ID), 0, opening.Content, true))
	}
	for i, seg := range body {
		rows = append(rows, newRow(seg.ID, i+1, seg.Content, false))
	}
	return rows
}

// runChain สร้างภาพทีละภาพตามลำดับ ภาพที่สำเร็จเป็น reference ของภาพถัดไป
// ภาพที่ล้มเหลวตัด chain: ภาพถัดไปไม่มี reference
func (s *KeyframeServiceImpl) runChain(ctx context.Context, check epochCheck, jobs []keyframeJob, params imageParams) error {
	reference := ""
	failed := 0

	for i, job := range jobs {
		if check.superseded(ctx) {
			logger.InfoContext(ctx, "Keyframe chain superseded, stopping", "position", i)
			return nil
		}

		var refs []string
		if reference != "" {
			refs = []string{reference}
		}

		url, err := s.generate(ctx, job, params, refs)
		if check.superseded(ctx) {
			logger.InfoContext(ctx, "Keyframe chain superseded, dropping result", "position", i)
			return nil
		}

		if err != nil {
			s.markFailed(ctx, job, err)
			reference = ""
			failed++
			if ctx.Err() != nil {
				// pool กำลังปิด, rows ที่เหลือ reaper จะเก็บ
				return ctx.Err()
			}
			continue
		}

		if err := s.markCompleted(ctx, job, url); err != nil {
			reference = ""
			failed++
			continue
		}
		reference = url
	}

	logger.InfoContext(ctx, "Keyframe chain finished", "total", len(jobs), "failed", failed)
	return nil
}

func (s *KeyframeServiceImpl) generate(ctx context.Context, job keyframeJob, params imageParams, refs []string) (string, error) {
	return protect(func() (string, error) {
		spec := ports.JobSpec{
			Kind:          ports.JobKindImage,
			Model:         params.model,
			Prompt:        job.prompt,
			AspectRatio:   params.aspectRatio,
			Quality:       params.quality,
			ReferenceURLs: refs,
		}

		resultURL, err := generation.Run(ctx, s.deps.Tasks, spec, s.deps.Policies.For(params.model, ports.JobKindImage))
		if err != nil {
			return "", err
		}

		return s.deps.Blob.UploadFromURL(ctx, resultURL, fmt.Sprintf("keyframe_%s.jpg", job.id), ports.CategoryKeyframes)
	})
}

func (s *KeyframeServiceImpl) markCompleted(ctx context.Context, job keyframeJob, url string) error {
	err := writeTerminal(ctx, s.deps.Tx, func(ctx context.Context) error {
		return s.deps.Keyframes.MarkCompleted(ctx, job.id, url)
	})
	if err != nil {
		s.markFailed(ctx, job, fmt.Errorf("failed to save keyframe result: %w", err))
		return err
	}

	logger.InfoContext(ctx, "Keyframe completed", "keyframe_id", job.id)
	publishStatus(ctx, s.deps.Publisher, &ports.StatusEvent{
		ScriptID:   job.scriptID.String(),
		EntityType: ports.EntityKeyframe,
		EntityID:   job.id.String(),
		Status:     string(models.GenerationStatusCompleted),
		URL:        url,
	})
	return nil
}

func (s *KeyframeServiceImpl) markFailed(ctx context.Context, job keyframeJob, cause error) {
	msg := cause.Error()
	logger.WarnContext(ctx, "Keyframe generation failed", "keyframe_id", job.id, "error", cause)

	err := writeTerminal(ctx, s.deps.Tx, func(ctx context.Context) error {
		return s.deps.Keyframes.MarkFailed(ctx, job.id, msg)
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to mark keyframe failed", "keyframe_id", job.id, "error", err)
		return
	}

	publishStatus(ctx, s.deps.Publisher, &ports.StatusEvent{
		ScriptID:   job.scriptID.String(),
		EntityType: ports.EntityKeyframe,
		EntityID:   job.id.String(),
		Status:     string(models.GenerationStatusFailed),
		Error:      msg,
	})
}

func (s *KeyframeServiceImpl) RegenerateKeyframe(ctx context.Context, id uuid.UUID, req *dto.RegenerateKeyframeRequest) (*models.Keyframe, error) {
	kf, err := s.deps.Keyframes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// request > ค่าเดิมของ row > default
	params := imageParams{
		model:       firstNonEmpty(req.Model, kf.Model, DefaultImageModel),
		aspectRatio: firstNonEmpty(req.AspectRatio, kf.AspectRatio, DefaultImageAspectRatio),
		quality:     firstNonEmpty(req.Quality, kf.Quality, DefaultImageQuality),
	}
	if _, ok := s.deps.Catalog.FindImageModel(params.model); !ok {
		return nil, apperrors.Validation("unsupported image model: %s", params.model)
	}

	check, err := beginGeneration(ctx, s.deps.Guard, keyframeItemKey(kf.ID), func() error {
		return s.deps.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.deps.Keyframes.MarkGenerating(ctx, kf.ID, params.model, params.aspectRatio, params.quality)
		})
	})
	if err != nil {
		return nil, err
	}

	kf.Status = models.GenerationStatusGenerating
	kf.ErrorMessage = nil
	kf.Model, kf.AspectRatio, kf.Quality = params.model, params.aspectRatio, params.quality

	job := keyframeJob{id: kf.ID, scriptID: kf.ScriptID, prompt: kf.Prompt}
	err = s.deps.Pool.Go(ctx, "keyframe_regenerate:"+kf.ID.String(), func(ctx context.Context) error {
		ctx = logger.ContextWithJob(ctx, job.scriptID.String(), "keyframe_regenerate")
		if check.superseded(ctx) {
			return nil
		}
		url, err := s.generate(ctx, job, params, nil)
		if check.superseded(ctx) {
			return nil
		}
		if err != nil {
			s.markFailed(ctx, job, err)
			return nil
		}
		// row ถูก mark failed แล้ว ส่ง error ต่อให้ pool log
		if err := s.markCompleted(ctx, job, url); err != nil {
			return fmt.Errorf("keyframe %s: %w", job.id, err)
		}
		return nil
	})
	if err != nil {
		s.markFailed(ctx, job, err)
		return nil, fmt.Errorf("failed to start keyframe regeneration: %w", err)
	}

	logger.InfoContext(ctx, "Keyframe regeneration started", "keyframe_id", kf.ID, "model", params.model)
	return kf, nil
}

func (s *KeyframeServiceImpl) ListByScript(ctx context.Context, scriptID uuid.UUID) ([]*models.Keyframe, error) {
	if _, err := s.deps.Scripts.GetByID(ctx, scriptID); err != nil {
		return nil, err
	}

	// lazy reap: read ไม่ล้มเพราะ reaper
	if _, err := s.deps.Reaper.ReapScript(ctx, scriptID); err != nil {
		logger.WarnContext(ctx, "Failed to reap stale keyframes", "script_id", scriptID, "error", err)
	}

	return s.deps.Keyframes.ListByScript(ctx, scriptID)
}

func (s *KeyframeServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Keyframe, error) {
	return s.deps.Keyframes.GetByID(ctx, id)
}

func (s *KeyframeServiceImpl) UpdatePrompt(ctx context.Context, id uuid.UUID, prompt string) (*models.Keyframe, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperrors.Validation("prompt must not be empty")
	}

	kf, err := s.deps.Keyframes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Keyframes.UpdatePrompt(ctx, id, prompt); err != nil {
		logger.ErrorContext(ctx, "Failed to update keyframe prompt", "keyframe_id", id, "error", err)
		return nil, err
	}

	kf.Prompt = prompt
	return kf, nil
}

func (s *KeyframeServiceImpl) UploadImage(ctx context.Context, id uuid.UUID, filename string, r io.Reader) (*models.Keyframe, error) {
	kf, err := s.deps.Keyframes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("keyframe_%s%s", kf.ID, strings.ToLower(filepath.Ext(filename)))
	url, err := s.deps.Blob.Upload(ctx, r, name, ports.CategoryKeyframes)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to upload keyframe image", "keyframe_id", id, "error", err)
		return nil, err
	}

	// advance epoch เพื่อให้ regenerate ที่ค้างอยู่ไม่เขียนทับภาพที่อัปโหลด
	if _, err := s.deps.Guard.Advance(ctx, keyframeItemKey(kf.ID)); err != nil {
		logger.WarnContext(ctx, "Failed to advance keyframe epoch", "keyframe_id", id, "error", err)
	}

	if err := s.deps.Keyframes.MarkCompleted(ctx, kf.ID, url); err != nil {
		return nil, err
	}
	publishStatus(ctx, s.deps.Publisher, &ports.StatusEvent{
		ScriptID:   kf.ScriptID.String(),
		EntityType: ports.EntityKeyframe,
		EntityID:   kf.ID.String(),
		Status:     string(models.GenerationStatusCompleted),
		URL:        url,
	})

	kf.Status = models.GenerationStatusCompleted
	kf.ImageURL = &url
	kf.ErrorMessage = nil

	logger.InfoContext(ctx, "Keyframe image uploaded", "keyframe_id", kf.ID, "url", url)
	return kf, nil
}

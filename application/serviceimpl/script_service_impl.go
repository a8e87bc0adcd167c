package serviceimpl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"storyforge/domain/dto"
	"storyforge/domain/models"
	"storyforge/domain/ports"
	"storyforge/domain/repositories"
	"storyforge/domain/services"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/logger"
	"storyforge/pkg/retry"
	"storyforge/pkg/segmenter"
)

type ScriptServiceImpl struct {
	scriptRepo   repositories.ScriptRepository
	keyframeRepo repositories.KeyframeRepository
	segmentRepo  repositories.VideoSegmentRepository
	tx           repositories.Transactor
	guard        ports.GenerationGuardPort
	text         ports.TextGeneratorPort
	catalog      services.ModelCatalogService
	retryPolicy  retry.Policy
}

func NewScriptService(
	scriptRepo repositories.ScriptRepository,
	keyframeRepo repositories.KeyframeRepository,
	segmentRepo repositories.VideoSegmentRepository,
	tx repositories.Transactor,
	guard ports.GenerationGuardPort,
	text ports.TextGeneratorPort,
	catalog services.ModelCatalogService,
	retryPolicy retry.Policy,
) services.ScriptService {
	return &ScriptServiceImpl{
		scriptRepo:   scriptRepo,
		keyframeRepo: keyframeRepo,
		segmentRepo:  segmentRepo,
		tx:           tx,
		guard:        guard,
		text:         text,
		catalog:      catalog,
		retryPolicy:  retryPolicy,
	}
}

func (s *ScriptServiceImpl) Create(ctx context.Context, req *dto.CreateScriptRequest) (*models.Script, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.Validation("content is required")
	}

	script := dto.CreateScriptRequestToScript(req)
	script.ID = uuid.New()
	if script.SegmentDuration <= 0 {
		script.SegmentDuration = segmenter.DefaultSegmentDuration
	}

	if err := s.scriptRepo.Create(ctx, script); err != nil {
		logger.ErrorContext(ctx, "Failed to create script", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Script created", "script_id", script.ID, "title", script.Title)
	return script, nil
}

func (s *ScriptServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Script, error) {
	return s.scriptRepo.GetByID(ctx, id)
}

func (s *ScriptServiceImpl) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateScriptRequest) (*models.Script, error) {
	script, err := s.scriptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		script.Title = *req.Title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, apperrors.Validation("content must not be empty")
		}
		script.Content = *req.Content
	}
	if req.Style != nil {
		script.Style = *req.Style
	}
	if req.TotalDuration != nil {
		script.TotalDuration = *req.TotalDuration
	}
	if req.SegmentDuration != nil {
		script.SegmentDuration = *req.SegmentDuration
	}
	script.UpdatedAt = time.Now()

	if err := s.scriptRepo.Update(ctx, script); err != nil {
		logger.ErrorContext(ctx, "Failed to update script", "script_id", id, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Script updated", "script_id", id)
	return script, nil
}

func (s *ScriptServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.scriptRepo.GetByID(ctx, id); err != nil {
		return err
	}

	// ให้ background units ของ script นี้หยุดเขียน
	for _, key := range []string{keyframeScriptKey(id), videoScriptKey(id)} {
		if _, err := s.guard.Advance(ctx, key); err != nil {
			logger.WarnContext(ctx, "Failed to advance generation epoch", "key", key, "error", err)
		}
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.segmentRepo.DeleteByScript(ctx, id); err != nil {
			return err
		}
		if err := s.keyframeRepo.DeleteByScript(ctx, id); err != nil {
			return err
		}
		return s.scriptRepo.Delete(ctx, id)
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to delete script", "script_id", id, "error", err)
		return err
	}

	logger.InfoContext(ctx, "Script deleted", "script_id", id)
	return nil
}

func (s *ScriptServiceImpl) List(ctx context.Context, req *dto.ListScriptsRequest) ([]*models.Script, int64, error) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	scripts, err := s.scriptRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.scriptRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return scripts, total, nil
}

func (s *ScriptServiceImpl) PreviewSegments(ctx context.Context, id uuid.UUID) ([]models.Segment, error) {
	script, err := s.scriptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return segmenter.Parse(script.Content, script.SegmentDuration), nil
}

func (s *ScriptServiceImpl) GenerateScript(ctx context.Context, req *dto.GenerateScriptRequest) (*models.Script, []models.Segment, error) {
	if req.SegmentDuration <= 0 {
		return nil, nil, apperrors.Validation("segment duration must be positive")
	}
	if req.TotalDuration < req.SegmentDuration {
		return nil, nil, apperrors.Validation("total duration (%ds) must not be less than segment duration (%ds)", req.TotalDuration, req.SegmentDuration)
	}
	if req.TotalDuration%req.SegmentDuration != 0 {
		logger.WarnContext(ctx, "Total duration is not a multiple of segment duration",
			"total_duration", req.TotalDuration,
			"segment_duration", req.SegmentDuration,
		)
	}

	segmentCount := req.TotalDuration / req.SegmentDuration
	style := s.styleDescription(req.Style)

	content, err := s.complete(ctx, ports.TextRequest{
		Model:       req.Model,
		System:      generateScriptSystemPrompt(req.TotalDuration, req.SegmentDuration, segmentCount, style),
		User:        generateScriptUserPrompt(req.Inspiration, req.SegmentDuration, segmentCount),
		MaxTokens:   scriptMaxTokens,
		Temperature: scriptTemperature,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Script generation failed", "model", req.Model, "error", err)
		return nil, nil, err
	}

	segments := segmenter.Parse(content, req.SegmentDuration)
	if body := segmenter.Body(segments); len(body) != segmentCount {
		logger.WarnContext(ctx, "Generated script segment count mismatch",
			"expected", segmentCount,
			"actual", len(body),
		)
	}

	script := &models.Script{
		ID:              uuid.New(),
		Title:           firstNonEmpty(strings.TrimSpace(req.Title), titleFromInspiration(req.Inspiration)),
		Content:         content,
		Style:           req.Style,
		TotalDuration:   req.TotalDuration,
		SegmentDuration: req.SegmentDuration,
	}
	if err := s.scriptRepo.Create(ctx, script); err != nil {
		logger.ErrorContext(ctx, "Failed to save generated script", "error", err)
		return nil, nil, err
	}

	logger.InfoContext(ctx, "Script generated",
		"script_id", script.ID,
		"segments", len(segments),
		"model", req.Model,
	)
	return script, segments, nil
}

func (s *ScriptServiceImpl) OptimizeScript(ctx context.Context, id uuid.UUID, req *dto.OptimizeScriptRequest) (*models.Script, error) {
	script, err := s.scriptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(script.Content) == "" {
		return nil, apperrors.Validation("script %s has no content to optimize", id)
	}

	content, err := s.complete(ctx, ports.TextRequest{
		Model:       req.Model,
		System:      optimizeScriptSystemPrompt,
		User:        optimizeScriptUserPrompt(script.Content, req.CreativeDescription),
		MaxTokens:   scriptMaxTokens,
		Temperature: scriptTemperature,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Script optimization failed", "script_id", id, "error", err)
		return nil, err
	}

	script.OptimizedContent = content
	script.Content = content
	script.UpdatedAt = time.Now()
	if err := s.scriptRepo.Update(ctx, script); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Script optimized", "script_id", id)
	return script, nil
}

// complete เรียก text generator ผ่าน retry, ผลลัพธ์ว่างนับเป็นความล้มเหลว
func (s *ScriptServiceImpl) complete(ctx context.Context, req ports.TextRequest) (string, error) {
	content, err := retry.DoValue(ctx, s.retryPolicy, func(ctx context.Context) (string, error) {
		out, err := s.text.Generate(ctx, req)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(out) == "" {
			return "", apperrors.Upstream("llm", "empty completion", nil)
		}
		return out, nil
	})
	if err != nil {
		return "", fmt.Errorf("text generation failed: %w", err)
	}
	return strings.TrimSpace(content), nil
}

// styleDescription style ที่ไม่รู้จักส่งข้อความเดิมให้ LLM
func (s *ScriptServiceImpl) styleDescription(id string) string {
	if style, ok := s.catalog.FindStyle(id); ok {
		return fmt.Sprintf("%s：%s", style.Name, style.Description)
	}
	return id
}

func titleFromInspiration(inspiration string) string {
	runes := []rune(strings.TrimSpace(inspiration))
	if len(runes) > 30 {
		return string(runes[:30]) + "..."
	}
	return string(runes)
}

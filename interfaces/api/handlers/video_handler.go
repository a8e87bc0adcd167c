package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storyforge/domain/dto"
	"storyforge/domain/services"
	"storyforge/pkg/logger"
	"storyforge/pkg/utils"
)

type VideoHandler struct {
	videoService  services.VideoService
	exportService services.ExportService
}

func NewVideoHandler(videoService services.VideoService, exportService services.ExportService) *VideoHandler {
	return &VideoHandler{
		videoService:  videoService,
		exportService: exportService,
	}
}

// Generate สร้าง video segment ระหว่าง keyframe ทุกคู่ (รันพร้อมกันใน background)
func (h *VideoHandler) Generate(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.GenerateVideosRequest
	if !bindBody(c, &req) {
		return nil
	}

	segments, err := h.videoService.GenerateVideos(ctx, &req)
	if err != nil {
		return handleServiceError(c, err, "Video generation failed to start", "script_id", req.ScriptID)
	}

	logger.InfoContext(ctx, "Video generation started", "script_id", req.ScriptID, "segments", len(segments))
	return utils.SuccessResponse(c, dto.VideoSegmentsToVideoSegmentResponses(segments))
}

func (h *VideoHandler) ListByScript(c *fiber.Ctx) error {
	scriptID, ok := parseUUIDParam(c, "scriptId", "script")
	if !ok {
		return nil
	}

	segments, err := h.videoService.ListByScript(c.UserContext(), scriptID)
	if err != nil {
		return handleServiceError(c, err, "Failed to list video segments", "script_id", scriptID)
	}

	return utils.SuccessResponse(c, dto.VideoSegmentsToVideoSegmentResponses(segments))
}

func (h *VideoHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id", "video segment")
	if !ok {
		return nil
	}

	seg, err := h.videoService.GetByID(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, err, "Video segment lookup failed", "segment_id", id)
	}

	return utils.SuccessResponse(c, dto.VideoSegmentToVideoSegmentResponse(seg))
}

func (h *VideoHandler) Regenerate(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, ok := parseUUIDParam(c, "id", "video segment")
	if !ok {
		return nil
	}

	var req dto.RegenerateVideoRequest
	if len(c.Body()) > 0 && !bindBody(c, &req) {
		return nil
	}

	seg, err := h.videoService.RegenerateSegment(ctx, id, &req)
	if err != nil {
		return handleServiceError(c, err, "Video regeneration failed to start", "segment_id", id)
	}

	logger.InfoContext(ctx, "Video regeneration started", "segment_id", id, "model", seg.Model)
	return utils.SuccessResponse(c, dto.VideoSegmentToVideoSegmentResponse(seg))
}

// Export รวมวิดีโอที่เสร็จแล้วเป็น zip แล้วคืนลิงก์ดาวน์โหลด
func (h *VideoHandler) Export(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.ExportVideosRequest
	if !bindBody(c, &req) {
		return nil
	}

	result, err := h.exportService.ExportVideos(ctx, req.ScriptID)
	if err != nil {
		return handleServiceError(c, err, "Video export failed", "script_id", req.ScriptID)
	}

	logger.InfoContext(ctx, "Videos exported", "script_id", req.ScriptID, "entries", result.Entries, "skipped", result.Skipped)
	return utils.SuccessResponse(c, result)
}

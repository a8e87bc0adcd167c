package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storyforge/domain/dto"
	"storyforge/domain/services"
	"storyforge/pkg/logger"
	"storyforge/pkg/utils"
)

type KeyframeHandler struct {
	keyframeService services.KeyframeService
	maxUploadSize   int64
}

func NewKeyframeHandler(keyframeService services.KeyframeService, maxUploadSize int64) *KeyframeHandler {
	return &KeyframeHandler{
		keyframeService: keyframeService,
		maxUploadSize:   maxUploadSize,
	}
}

// Generate เริ่ม keyframe pipeline ของ script, ภาพถูกสร้างใน background
func (h *KeyframeHandler) Generate(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.GenerateKeyframesRequest
	if !bindBody(c, &req) {
		return nil
	}

	keyframes, err := h.keyframeService.GenerateKeyframes(ctx, &req)
	if err != nil {
		return handleServiceError(c, err, "Keyframe generation failed to start", "script_id", req.ScriptID)
	}

	logger.InfoContext(ctx, "Keyframe generation started", "script_id", req.ScriptID, "keyframes", len(keyframes))
	return utils.SuccessResponse(c, dto.KeyframesToKeyframeResponses(keyframes))
}

// ListByScript ใช้ poll สถานะ (reap งานค้างก่อนคืนผล)
func (h *KeyframeHandler) ListByScript(c *fiber.Ctx) error {
	scriptID, ok := parseUUIDParam(c, "scriptId", "script")
	if !ok {
		return nil
	}

	keyframes, err := h.keyframeService.ListByScript(c.UserContext(), scriptID)
	if err != nil {
		return handleServiceError(c, err, "Failed to list keyframes", "script_id", scriptID)
	}

	return utils.SuccessResponse(c, dto.KeyframesToKeyframeResponses(keyframes))
}

func (h *KeyframeHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id", "keyframe")
	if !ok {
		return nil
	}

	kf, err := h.keyframeService.GetByID(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, err, "Keyframe lookup failed", "keyframe_id", id)
	}

	return utils.SuccessResponse(c, dto.KeyframeToKeyframeResponse(kf))
}

// Update แก้ prompt ของ keyframe
func (h *KeyframeHandler) Update(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id", "keyframe")
	if !ok {
		return nil
	}

	var req dto.UpdateKeyframeRequest
	if !bindBody(c, &req) {
		return nil
	}

	kf, err := h.keyframeService.UpdatePrompt(c.UserContext(), id, req.Prompt)
	if err != nil {
		return handleServiceError(c, err, "Keyframe update failed", "keyframe_id", id)
	}

	return utils.SuccessResponse(c, dto.KeyframeToKeyframeResponse(kf))
}

func (h *KeyframeHandler) Regenerate(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, ok := parseUUIDParam(c, "id", "keyframe")
	if !ok {
		return nil
	}

	// body ว่างได้ = ใช้ค่าเดิมของ row
	var req dto.RegenerateKeyframeRequest
	if len(c.Body()) > 0 && !bindBody(c, &req) {
		return nil
	}

	kf, err := h.keyframeService.RegenerateKeyframe(ctx, id, &req)
	if err != nil {
		return handleServiceError(c, err, "Keyframe regeneration failed to start", "keyframe_id", id)
	}

	logger.InfoContext(ctx, "Keyframe regeneration started", "keyframe_id", id, "model", kf.Model)
	return utils.SuccessResponse(c, dto.KeyframeToKeyframeResponse(kf))
}

// Upload ใช้ภาพของผู้ใช้แทนภาพที่ generate (multipart field "file")
func (h *KeyframeHandler) Upload(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, ok := parseUUIDParam(c, "id", "keyframe")
	if !ok {
		return nil
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequestResponse(c, "No file provided")
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		return utils.BadRequestResponse(c, "File exceeds maximum upload size of "+utils.FormatBytes(uint64(h.maxUploadSize)))
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.ErrorContext(ctx, "Failed to open uploaded file", "error", err)
		return utils.InternalServerErrorResponse(c)
	}
	defer file.Close()

	kf, err := h.keyframeService.UploadImage(ctx, id, utils.SanitizeFileName(fileHeader.Filename), file)
	if err != nil {
		return handleServiceError(c, err, "Keyframe upload failed", "keyframe_id", id)
	}

	logger.InfoContext(ctx, "Keyframe image uploaded", "keyframe_id", id, "size", fileHeader.Size)
	return utils.SuccessResponse(c, dto.KeyframeToKeyframeResponse(kf))
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storyforge/domain/dto"
	"storyforge/domain/services"
	"storyforge/pkg/logger"
	"storyforge/pkg/utils"
)

const (
	defaultScriptPage  = 1
	defaultScriptLimit = 20
)

type ScriptHandler struct {
	scriptService services.ScriptService
}

func NewScriptHandler(scriptService services.ScriptService) *ScriptHandler {
	return &ScriptHandler{
		scriptService: scriptService,
	}
}

// Create สร้าง script จาก content ที่ผู้ใช้เขียนเอง
func (h *ScriptHandler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.CreateScriptRequest
	if !bindBody(c, &req) {
		return nil
	}

	script, err := h.scriptService.Create(ctx, &req)
	if err != nil {
		return handleServiceError(c, err, "Script creation failed")
	}

	logger.InfoContext(ctx, "Script created", "script_id", script.ID, "title", script.Title)
	return utils.CreatedResponse(c, dto.ScriptToScriptResponse(script))
}

// List ดึง scripts แบบแบ่งหน้า (ใหม่สุดก่อน)
func (h *ScriptHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.ListScriptsRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid query parameters")
	}
	if req.Page < 1 {
		req.Page = defaultScriptPage
	}
	if req.Limit < 1 {
		req.Limit = defaultScriptLimit
	}
	if errs := utils.ValidateStruct(&req); errs != nil {
		return utils.ValidationErrorResponse(c, errs)
	}

	scripts, total, err := h.scriptService.List(ctx, &req)
	if err != nil {
		return handleServiceError(c, err, "Failed to list scripts")
	}

	return utils.PaginatedSuccessResponse(c, dto.ScriptsToScriptResponses(scripts), total, req.Page, req.Limit)
}

func (h *ScriptHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id", "script")
	if !ok {
		return nil
	}

	script, err := h.scriptService.GetByID(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, err, "Script lookup failed", "script_id", id)
	}

	return utils.SuccessResponse(c, dto.ScriptToScriptResponse(script))
}

func (h *ScriptHandler) Update(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, ok := parseUUIDParam(c, "id", "script")
	if !ok {
		return nil
	}

	var req dto.UpdateScriptRequest
	if !bindBody(c, &req) {
		return nil
	}

	script, err := h.scriptService.Update(ctx, id, &req)
	if err != nil {
		return handleServiceError(c, err, "Script update failed", "script_id", id)
	}

	logger.InfoContext(ctx, "Script updated", "script_id", id)
	return utils.SuccessResponse(c, dto.ScriptToScriptResponse(script))
}

// Delete ลบ script พร้อม keyframes และ video segments
func (h *ScriptHandler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, ok := parseUUIDParam(c, "id", "script")
	if !ok {
		return nil
	}

	if err := h.scriptService.Delete(ctx, id); err != nil {
		return handleServiceError(c, err, "Script deletion failed", "script_id", id)
	}

	logger.InfoContext(ctx, "Script deleted", "script_id", id)
	return utils.SuccessResponse(c, fiber.Map{"message": "Script deleted successfully"})
}

// Segments แสดงผลการแบ่ง segment ของ content ปัจจุบัน
func (h *ScriptHandler) Segments(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id", "script")
	if !ok {
		return nil
	}

	segments, err := h.scriptService.PreviewSegments(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, err, "Segment preview failed", "script_id", id)
	}

	return utils.SuccessResponse(c, dto.SegmentsResponse{ScriptID: id, Segments: segments})
}

// Generate ให้ LLM เขียน script จาก inspiration
func (h *ScriptHandler) Generate(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.GenerateScriptRequest
	if !bindBody(c, &req) {
		return nil
	}

	script, segments, err := h.scriptService.GenerateScript(ctx, &req)
	if err != nil {
		return handleServiceError(c, err, "Script generation failed", "style", req.Style, "model", req.Model)
	}

	logger.InfoContext(ctx, "Script generated", "script_id", script.ID, "segments", len(segments))
	return utils.CreatedResponse(c, dto.ScriptWithSegmentsResponse{
		Script:   *dto.ScriptToScriptResponse(script),
		Segments: segments,
	})
}

// Optimize เขียน content ใหม่ตาม creative description
func (h *ScriptHandler) Optimize(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, ok := parseUUIDParam(c, "id", "script")
	if !ok {
		return nil
	}

	var req dto.OptimizeScriptRequest
	if !bindBody(c, &req) {
		return nil
	}

	script, err := h.scriptService.OptimizeScript(ctx, id, &req)
	if err != nil {
		return handleServiceError(c, err, "Script optimization failed", "script_id", id)
	}

	return utils.SuccessResponse(c, dto.ScriptToScriptResponse(script))
}

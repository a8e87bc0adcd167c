package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storyforge/domain/services"
	"storyforge/pkg/utils"
)

// ModelHandler รายการ model/style สำหรับหน้าเลือกของ frontend
type ModelHandler struct {
	catalog services.ModelCatalogService
}

func NewModelHandler(catalog services.ModelCatalogService) *ModelHandler {
	return &ModelHandler{catalog: catalog}
}

// ScriptModels เฉพาะ LLM provider ที่ตั้ง key ไว้
func (h *ModelHandler) ScriptModels(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, h.catalog.ScriptModels())
}

func (h *ModelHandler) ScriptStyles(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, h.catalog.Styles())
}

func (h *ModelHandler) ImageModels(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, h.catalog.ImageModels())
}

func (h *ModelHandler) VideoModels(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, h.catalog.VideoModels())
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"storyforge/interfaces/api/handlers"
)

func SetupScriptRoutes(api fiber.Router, h *handlers.Handlers) {
	scripts := api.Group("/scripts")

	scripts.Post("/generate", h.ScriptHandler.Generate) // LLM เขียน script จาก inspiration
	scripts.Post("/", h.ScriptHandler.Create)
	scripts.Get("/", h.ScriptHandler.List)
	scripts.Get("/:id", h.ScriptHandler.GetByID)
	scripts.Put("/:id", h.ScriptHandler.Update)
	scripts.Delete("/:id", h.ScriptHandler.Delete)          // ลบ keyframes และ videos ด้วย
	scripts.Get("/:id/segments", h.ScriptHandler.Segments)  // preview การแบ่ง segment
	scripts.Post("/:id/optimize", h.ScriptHandler.Optimize) // LLM เขียนใหม่ตาม creative description
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"storyforge/interfaces/api/handlers"
)

func SetupVideoRoutes(api fiber.Router, h *handlers.Handlers) {
	videos := api.Group("/videos")

	videos.Post("/generate", h.VideoHandler.Generate)
	videos.Post("/export", h.VideoHandler.Export) // zip ของ segment ที่เสร็จแล้ว
	videos.Get("/script/:scriptId", h.VideoHandler.ListByScript)
	videos.Get("/:id", h.VideoHandler.GetByID)
	videos.Post("/:id/regenerate", h.VideoHandler.Regenerate)
}

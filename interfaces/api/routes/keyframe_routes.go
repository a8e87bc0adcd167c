package routes

import (
	"github.com/gofiber/fiber/v2"

	"storyforge/interfaces/api/handlers"
)

func SetupKeyframeRoutes(api fiber.Router, h *handlers.Handlers) {
	keyframes := api.Group("/keyframes")

	keyframes.Post("/generate", h.KeyframeHandler.Generate)
	keyframes.Get("/script/:scriptId", h.KeyframeHandler.ListByScript) // reap งานค้างก่อนคืนผล
	keyframes.Get("/:id", h.KeyframeHandler.GetByID)
	keyframes.Put("/:id", h.KeyframeHandler.Update)
	keyframes.Post("/:id/regenerate", h.KeyframeHandler.Regenerate)
	keyframes.Post("/:id/upload", h.KeyframeHandler.Upload) // multipart field "file"
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"storyforge/interfaces/api/handlers"
)

func SetupModelRoutes(api fiber.Router, h *handlers.Handlers) {
	models := api.Group("/models")

	models.Get("/script", h.ModelHandler.ScriptModels)
	models.Get("/script-styles", h.ModelHandler.ScriptStyles)
	models.Get("/image", h.ModelHandler.ImageModels)
	models.Get("/video", h.ModelHandler.VideoModels)
}

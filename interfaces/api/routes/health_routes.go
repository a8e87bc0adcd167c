package routes

import (
	"github.com/gofiber/fiber/v2"

	"storyforge/interfaces/api/handlers"
)

func SetupHealthRoutes(app *fiber.App, h *handlers.Handlers) {
	app.Get("/health", h.HealthHandler.Health)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Storyforge API",
			"docs":    "/api/v1",
			"health":  "/health",
		})
	})
}

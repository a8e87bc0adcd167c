package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"storyforge/interfaces/api/handlers"
	"storyforge/interfaces/api/middleware"
)

func SetupWebSocketRoutes(app *fiber.App, h *handlers.Handlers, jwtSecret string) {
	ws := app.Group("/ws", middleware.Protected(jwtSecret))

	ws.Get("/scripts/:id", h.StatusHandler.Upgrade, websocket.New(h.StatusHandler.Stream))
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"storyforge/interfaces/api/handlers"
	"storyforge/interfaces/api/middleware"
)

// SetupRoutes jwtSecret ว่าง = ทุก route เปิดโดยไม่ต้อง auth
func SetupRoutes(app *fiber.App, h *handlers.Handlers, jwtSecret string) {
	SetupHealthRoutes(app, h)

	api := app.Group("/api/v1", middleware.Protected(jwtSecret))

	SetupScriptRoutes(api, h)
	SetupKeyframeRoutes(api, h)
	SetupVideoRoutes(api, h)
	SetupModelRoutes(api, h)

	// WebSocket อยู่นอก /api/v1
	SetupWebSocketRoutes(app, h, jwtSecret)
}

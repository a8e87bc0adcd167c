package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storyforge/pkg/logger"
	"storyforge/pkg/utils"
)

// Protected ตรวจ bearer token เมื่อตั้ง JWT_SECRET, secret ว่าง = ไม่เปิด auth
// websocket ส่ง header ไม่ได้ จึงรับ ?token= ด้วย
func Protected(jwtSecret string) fiber.Handler {
	if jwtSecret == "" {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		token := utils.ExtractTokenFromHeader(c.Get("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization header")
		}

		userCtx, err := utils.ValidateToken(token, jwtSecret)
		if err != nil {
			logger.WarnContext(ctx, "Token validation failed", "error", err, "path", c.Path())
			switch {
			case errors.Is(err, utils.ErrExpiredToken):
				return utils.UnauthorizedResponse(c, "Token has expired")
			case errors.Is(err, utils.ErrMissingToken):
				return utils.UnauthorizedResponse(c, "Missing token")
			default:
				return utils.UnauthorizedResponse(c, "Invalid token")
			}
		}

		c.Locals("user", userCtx)
		c.SetUserContext(logger.ContextWithUser(ctx, userCtx.Subject))
		return c.Next()
	}
}

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"storyforge/pkg/logger"
)

// LoggerMiddleware log หนึ่งบรรทัดต่อ request หลังตอบเสร็จ
// path ใน skip (เช่น /health) log ที่ระดับ debug
func LoggerMiddleware(skip ...string) fiber.Handler {
	quiet := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		quiet[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		args := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
			"bytes", len(c.Response().Body()),
			"ip", c.IP(),
		}

		ctx := c.UserContext()
		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			logger.ErrorContext(ctx, "Request completed", args...)
		case status >= fiber.StatusBadRequest:
			logger.WarnContext(ctx, "Request completed", args...)
		default:
			if _, ok := quiet[c.Path()]; ok {
				logger.DebugContext(ctx, "Request completed", args...)
			} else {
				logger.InfoContext(ctx, "Request completed", args...)
			}
		}

		return err
	}
}

package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storyforge/pkg/apperrors"
	"storyforge/pkg/logger"
	"storyforge/pkg/utils"
)

// ErrorHandler รับ error ที่หลุดจาก handler (fiber.Error, apperrors, อื่นๆ)
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		ctx := c.UserContext()

		var fe *fiber.Error
		if errors.As(err, &fe) {
			errCode := utils.ErrCodeInternalError
			switch fe.Code {
			case fiber.StatusBadRequest:
				errCode = utils.ErrCodeBadRequest
			case fiber.StatusUnauthorized:
				errCode = utils.ErrCodeUnauthorized
			case fiber.StatusForbidden:
				errCode = utils.ErrCodeForbidden
			case fiber.StatusNotFound:
				errCode = utils.ErrCodeNotFound
			case fiber.StatusConflict:
				errCode = utils.ErrCodeConflict
			case fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed, fiber.StatusUpgradeRequired:
				errCode = utils.ErrCodeBadRequest
			}
			logger.WarnContext(ctx, "Request error", "status", fe.Code, "error", fe.Message, "path", c.Path())
			return utils.ErrorResponse(c, fe.Code, errCode, fe.Message, nil)
		}

		if apperrors.KindOf(err) != "" {
			logger.WarnContext(ctx, "Unhandled service error", "error", err, "path", c.Path())
			return utils.ServiceErrorResponse(c, err)
		}

		logger.ErrorContext(ctx, "Unhandled error", "error", err, "path", c.Path())
		return utils.InternalServerErrorResponse(c)
	}
}

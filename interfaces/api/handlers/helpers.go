package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"storyforge/pkg/apperrors"
	"storyforge/pkg/logger"
	"storyforge/pkg/utils"
)

// handleServiceError log ตามระดับความรุนแรง แล้วแปลงเป็น response มาตรฐาน
func handleServiceError(c *fiber.Ctx, err error, msg string, args ...any) error {
	ctx := c.UserContext()
	args = append(args, "error", err)

	if apperrors.HTTPStatus(err) >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, msg, args...)
	} else {
		logger.WarnContext(ctx, msg, args...)
	}
	return utils.ServiceErrorResponse(c, err)
}

// parseUUIDParam คืน false เมื่อเขียน response 400 ไปแล้ว
func parseUUIDParam(c *fiber.Ctx, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		_ = utils.BadRequestResponse(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// bindBody parse body แล้ว validate, คืน false เมื่อเขียน response ไปแล้ว
func bindBody(c *fiber.Ctx, req any) bool {
	ctx := c.UserContext()

	if err := c.BodyParser(req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		_ = utils.BadRequestResponse(c, "Invalid request body")
		return false
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		logger.WarnContext(ctx, "Validation failed", "errors", errs)
		_ = utils.ValidationErrorResponse(c, errs)
		return false
	}
	return true
}

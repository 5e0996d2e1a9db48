package serverutils

import (
	"errors"

	"intellius-chat-be/internal/pkg/apperror"
	"intellius-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

func StatusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindDependency:
		return fiber.StatusServiceUnavailable
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error returned by a handler in the response envelope.
// Internal failures are logged and answered with a generic message.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := StatusFor(err)

		message := err.Error()
		var appErr *apperror.AppError
		var fe *fiber.Error
		switch {
		case errors.As(err, &appErr):
			message = appErr.Message
		case errors.As(err, &fe):
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": code,
				"error":  err,
			})
			if code == fiber.StatusInternalServerError {
				message = "Internal server error"
			}
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

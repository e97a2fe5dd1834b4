package serverutils

import (
	"errors"

	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindInvalidIdentifier:
		return fiber.StatusBadRequest
	case apperror.KindValidation:
		return fiber.StatusUnprocessableEntity
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindDuplicateName:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into JSON
// bodies. Storage failures are logged and their cause is not exposed.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorResponse{Code: fe.Code, Message: fe.Message})
		}

		kind := apperror.KindOf(err)
		status := StatusFor(kind)
		message := err.Error()
		if status == fiber.StatusInternalServerError {
			log.Error("HTTP", "request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
			message = "internal storage failure"
		}
		return ctx.Status(status).JSON(ErrorResponse{Code: status, Message: message, Kind: string(kind)})
	}
}

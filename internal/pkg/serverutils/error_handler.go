package serverutils

import (
	"errors"

	"context-generator-be/internal/pkg/apperror"
	"context-generator-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindConfiguration: fiber.StatusPreconditionFailed,
	apperror.KindInput:         fiber.StatusBadRequest,
	apperror.KindNotFound:      fiber.StatusNotFound,
	apperror.KindFilesystem:    fiber.StatusInternalServerError,
	apperror.KindToolMissing:   fiber.StatusFailedDependency,
	apperror.KindToolFailed:    fiber.StatusBadGateway,
	apperror.KindRemote:        fiber.StatusBadGateway,
	apperror.KindRemoteAuth:    fiber.StatusUnauthorized,
	apperror.KindRemoteQuota:   fiber.StatusTooManyRequests,
	apperror.KindRemoteModel:   fiber.StatusNotFound,
	apperror.KindRemoteSafety:  fiber.StatusUnprocessableEntity,
	apperror.KindRemoteEmpty:   fiber.StatusBadGateway,
}

// StatusForKind maps an error kind to the HTTP status returned to the UI.
func StatusForKind(kind apperror.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware turns errors returned by controllers into the JSON
// envelope. Every failure is logged once here.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		kind := apperror.KindOf(err)
		status := StatusForKind(kind)

		log.Error("HTTP", "request failed", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"kind":   string(kind),
			"status": status,
			"error":  err.Error(),
		})

		return ctx.Status(status).JSON(ErrorResponseWithDetail(status, err.Error(), ErrorDetail{
			Kind:   string(kind),
			Detail: apperror.DetailOf(err),
		}))
	}
}

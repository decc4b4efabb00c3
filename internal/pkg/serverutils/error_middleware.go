package serverutils

import (
	"errors"

	"clinidoc-be/pkg/clinical"
	"clinidoc-be/pkg/extractor"
	"clinidoc-be/pkg/lease"
	"clinidoc-be/pkg/pipeline"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors onto HTTP statuses so
// controllers can just return err.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		code := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, extractor.ErrUnreadablePDF),
			errors.Is(err, clinical.ErrMalformedInput):
			code = fiber.StatusUnprocessableEntity
		case errors.Is(err, extractor.ErrEmptyDocument):
			code = fiber.StatusBadRequest
		case errors.Is(err, lease.ErrConflict),
			errors.Is(err, pipeline.ErrJobTerminal),
			errors.Is(err, pipeline.ErrJobNotActive):
			code = fiber.StatusConflict
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

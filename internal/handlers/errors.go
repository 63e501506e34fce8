package handlers

import (
	"log/slog"
	"strconv"

	"estoque/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// writeError writes err as the JSON error body with the status of its kind.
// Errors that are not AppErrors are reported as internal without their cause.
func writeError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	appErr, ok := apperror.FromError(err)
	if !ok {
		logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
		appErr = apperror.NewInternal("internal server error", err)
	}
	return c.Status(appErr.StatusCode()).JSON(appErr.ToResponse())
}

func badBody(c *fiber.Ctx, logger *slog.Logger, err error) error {
	logger.DebugContext(c.UserContext(), "error parsing request body", slog.Any("error", err))
	return writeError(c, logger, apperror.NewInvalidInput("invalid request body", nil))
}

// paramID reads a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NewInvalidInput(name+" must be a positive integer", nil)
	}
	return uint(id), nil
}

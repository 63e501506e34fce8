package services

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"estoque/internal/apperror"
)

// Confirmation is returned by removals.
type Confirmation struct {
	Message string `json:"message"`
}

// internalError logs the cause and hides it behind a generic, retry-later message.
func internalError(ctx context.Context, logger *slog.Logger, message string, err error) error {
	logger.ErrorContext(ctx, message, slog.Any("error", err))
	return apperror.NewInternal(message, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func roundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}

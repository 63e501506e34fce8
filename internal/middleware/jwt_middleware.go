package middleware

import (
	"log/slog"
	"strings"

	"estoque/internal/apperror"
	"estoque/internal/security"

	"github.com/gofiber/fiber/v2"
)

// localsClaims is the fiber.Ctx Locals key holding the verified claims.
const localsClaims = "claims"

// AuthRequired is a Fiber middleware to check for a valid bearer token. On
// success the decoded claims are attached to the request for later handlers.
func AuthRequired(issuer security.TokenIssuer, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return unauthorized(c, "authorization header format must be 'Bearer <token>'")
		}

		claims, err := issuer.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.DebugContext(c.UserContext(), "jwt validation failed", slog.Any("error", err))
			return unauthorized(c, "invalid or expired token")
		}

		c.Locals(localsClaims, claims)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	appErr := apperror.NewUnauthorized(message, nil)
	return c.Status(appErr.StatusCode()).JSON(appErr.ToResponse())
}

// ClaimsFrom returns the claims AuthRequired attached to the request.
func ClaimsFrom(c *fiber.Ctx) (*security.Claims, bool) {
	claims, ok := c.Locals(localsClaims).(*security.Claims)
	return claims, ok
}

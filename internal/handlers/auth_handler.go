package handlers

import (
	"log/slog"
	"strings"

	"estoque/internal/apperror"
	"estoque/internal/middleware"
	"estoque/internal/services"
	"estoque/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes. guard protects the profile route.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/profile", guard, h.HandleProfile)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// HandleLogin checks the credentials and issues an access token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, h.logger, err)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return writeError(c, h.logger, err)
	}

	result, err := h.authService.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if !result.Authorized {
		return writeError(c, h.logger, apperror.NewUnauthorized(result.Message, nil))
	}
	return c.JSON(LoginResponse{AccessToken: result.AccessToken})
}

// HandleProfile returns the claims of the authenticated caller.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return writeError(c, h.logger, apperror.NewUnauthorized("authentication required", nil))
	}
	return c.JSON(claims)
}

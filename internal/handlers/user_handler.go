package handlers

import (
	"log/slog"

	"estoque/internal/apperror"
	"estoque/internal/middleware"
	"estoque/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service *services.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the user routes. Registration is public; the
// account routes require guard.
func (h *UserHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/:id", guard, h.HandleGetUser)
	userRoutes.Patch("/:id", guard, h.HandleUpdateUser)
	userRoutes.Delete("/:id", guard, h.HandleDeleteUser)
}

// HandleCreateUser registers a new account.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, h.logger, err)
	}

	user, err := h.service.CreateUser(c.UserContext(), input)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUser returns the caller's own account.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := h.selfID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	user, err := h.service.FindByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(user)
}

// HandleUpdateUser applies a partial update to the caller's own account.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := h.selfID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	var input services.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, h.logger, err)
	}

	user, err := h.service.Update(c.UserContext(), id, input)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(user)
}

// HandleDeleteUser removes the caller's own account.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := h.selfID(c)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	confirmation, err := h.service.Remove(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(confirmation)
}

// selfID returns the :id parameter when it names the authenticated caller.
// Other accounts are reported as not found.
func (h *UserHandler) selfID(c *fiber.Ctx) (uint, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return 0, err
	}
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return 0, apperror.NewUnauthorized("authentication required", nil)
	}
	if claims.Subject != id {
		return 0, apperror.NewNotFound("user not found")
	}
	return id, nil
}

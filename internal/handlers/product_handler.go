package handlers

import (
	"log/slog"
	"net/url"

	"estoque/internal/apperror"
	"estoque/internal/middleware"
	"estoque/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes, all behind guard.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	productRoutes := router.Group("/products", guard)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleGetProducts)
	// Fixed paths first so they are not captured by /:id.
	productRoutes.Get("/date", h.HandleGetProductsByDate)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/category/:category", h.HandleGetProductsByCategory)
	productRoutes.Get("/user/:userId", h.HandleGetProductsByUser)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleCreateProduct registers a product owned by the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return writeError(c, h.logger, apperror.NewUnauthorized("authentication required", nil))
	}

	var input services.CreateProductInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, h.logger, err)
	}

	product, err := h.service.Create(c.UserContext(), claims.Subject, input)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.FindAll(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(products)
}

// HandleGetProductsByDate lists products created on ?date= or between
// ?startDate= and ?endDate=.
func (h *ProductHandler) HandleGetProductsByDate(c *fiber.Ctx) error {
	var query services.DateQuery
	if err := c.QueryParser(&query); err != nil {
		return badBody(c, h.logger, err)
	}

	products, err := h.service.FindByDate(c.UserContext(), query)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(products)
}

// HandleSearchProducts lists products whose name contains ?name=.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	products, err := h.service.FindByName(c.UserContext(), c.Query("name"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(products)
}

// HandleGetProductsByCategory lists the products in a category.
func (h *ProductHandler) HandleGetProductsByCategory(c *fiber.Ctx) error {
	// Fiber hands path params over still percent-encoded.
	category, err := url.PathUnescape(c.Params("category"))
	if err != nil {
		return writeError(c, h.logger, apperror.NewInvalidInput("category is not a valid path segment", nil))
	}
	products, err := h.service.FindByCategory(c.UserContext(), category)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(products)
}

// HandleGetProductsByUser lists the products owned by :userId, which must be the caller.
func (h *ProductHandler) HandleGetProductsByUser(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return writeError(c, h.logger, apperror.NewUnauthorized("authentication required", nil))
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	products, err := h.service.FindByUser(c.UserContext(), userID, claims.Subject)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	product, err := h.service.FindByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	var input services.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, h.logger, err)
	}

	product, err := h.service.Update(c.UserContext(), id, input)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.logger, err)
	}

	confirmation, err := h.service.RemoveByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(confirmation)
}

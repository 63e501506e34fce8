package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"estoque/internal/apperror"
	"estoque/internal/events"
	"estoque/internal/metrics"
	"estoque/internal/models"
	"estoque/internal/repositories"
	"estoque/internal/validation"
)

const dateLayout = "2006-01-02"

// CreateProductInput is the payload for registering a product.
type CreateProductInput struct {
	ProductName        string  `json:"productName" validate:"required,min=2,max=100"`
	DescriptionProduct string  `json:"descriptionProduct" validate:"required"`
	CategoryProduct    string  `json:"categoryProduct" validate:"required,max=50"`
	QuantityProduct    int     `json:"quantityProduct" validate:"gte=0,lte=2147483647"`
	PriceProduct       float64 `json:"priceProduct" validate:"gte=0,lte=99999999.99"`
}

// UpdateProductInput carries the fields to change; nil fields are left as stored.
type UpdateProductInput struct {
	ProductName        *string  `json:"productName" validate:"omitempty,min=2,max=100"`
	DescriptionProduct *string  `json:"descriptionProduct" validate:"omitempty,min=1"`
	CategoryProduct    *string  `json:"categoryProduct" validate:"omitempty,min=1,max=50"`
	QuantityProduct    *int     `json:"quantityProduct" validate:"omitempty,gte=0,lte=2147483647"`
	PriceProduct       *float64 `json:"priceProduct" validate:"omitempty,gte=0,lte=99999999.99"`
}

// DateQuery selects products by creation day: either Date alone, or both
// StartDate and EndDate. Dates use the YYYY-MM-DD layout and are read as UTC.
type DateQuery struct {
	Date      string `query:"date"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	users  *UserService
	events *events.Emitter
	logger *slog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, users *UserService, emitter *events.Emitter, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		users:  users,
		events: emitter,
		logger: logger,
	}
}

// Create registers a product owned by the acting user. Name, category and
// description are stored lower-cased; a name may appear once per owner.
func (s *ProductService) Create(ctx context.Context, actingUserID uint, input CreateProductInput) (*models.Product, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	owner, err := s.users.FindByID(ctx, actingUserID)
	if err != nil {
		return nil, apperror.Wrap(err, "could not create product, try again later")
	}

	product := &models.Product{
		UserID:             owner.ID,
		ProductName:        normalizeText(input.ProductName),
		DescriptionProduct: normalizeText(input.DescriptionProduct),
		CategoryProduct:    normalizeText(input.CategoryProduct),
		QuantityProduct:    input.QuantityProduct,
		PriceProduct:       roundPrice(input.PriceProduct),
	}
	if err := s.ensureNameFree(ctx, product.ProductName, owner.ID, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.NewConflict("product already registered", err)
		}
		return nil, internalError(ctx, s.logger, "could not create product, try again later", err)
	}

	metrics.ProductMutations.WithLabelValues("create").Inc()
	s.events.Emit(ctx, events.ProductCreated, product)
	return product, nil
}

// ensureNameFree fails with Conflict when userID already owns a product named
// name other than exceptID.
func (s *ProductService) ensureNameFree(ctx context.Context, name string, userID, exceptID uint) error {
	existing, err := s.repo.FindByNameAndUser(ctx, name, userID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	case err != nil:
		return internalError(ctx, s.logger, "could not save product, try again later", err)
	case existing.ID != exceptID:
		return apperror.NewConflict("product already registered", nil)
	}
	return nil
}

// Update merges input onto the stored product and refreshes UpdatedAt. The
// owner never changes.
func (s *ProductService) Update(ctx context.Context, id uint, input UpdateProductInput) (*models.Product, error) {
	if id == 0 {
		return nil, apperror.NewNotFound("product id not provided")
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	product, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ProductName != nil {
		name := normalizeText(*input.ProductName)
		if name != product.ProductName {
			if err := s.ensureNameFree(ctx, name, product.UserID, product.ID); err != nil {
				return nil, err
			}
			product.ProductName = name
		}
	}
	if input.DescriptionProduct != nil {
		product.DescriptionProduct = normalizeText(*input.DescriptionProduct)
	}
	if input.CategoryProduct != nil {
		product.CategoryProduct = normalizeText(*input.CategoryProduct)
	}
	if input.QuantityProduct != nil {
		product.QuantityProduct = *input.QuantityProduct
	}
	if input.PriceProduct != nil {
		product.PriceProduct = roundPrice(*input.PriceProduct)
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperror.NewNotFound("product not found")
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, apperror.NewConflict("product already registered", err)
		}
		return nil, internalError(ctx, s.logger, "could not update product, try again later", err)
	}

	metrics.ProductMutations.WithLabelValues("update").Inc()
	s.events.Emit(ctx, events.ProductUpdated, product)
	return product, nil
}

// RemoveByID deletes the product with id.
func (s *ProductService) RemoveByID(ctx context.Context, id uint) (*Confirmation, error) {
	if id == 0 {
		return nil, apperror.NewNotFound("product id not provided")
	}
	product, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NewNotFound("product not found")
		}
		return nil, internalError(ctx, s.logger, "could not remove product, try again later", err)
	}

	metrics.ProductMutations.WithLabelValues("delete").Inc()
	s.events.Emit(ctx, events.ProductDeleted, map[string]uint{"id": product.ID, "userId": product.UserID})
	return &Confirmation{Message: fmt.Sprintf("product %d removed", product.ID)}, nil
}

// FindByID returns the product with id.
func (s *ProductService) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	if id == 0 {
		return nil, apperror.NewNotFound("product not found")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NewNotFound("product not found")
		}
		return nil, internalError(ctx, s.logger, "could not find product, try again later", err)
	}
	return product, nil
}

// FindByDate lists the products created on the requested days, oldest first.
// Both ends of the range are inclusive whole days.
func (s *ProductService) FindByDate(ctx context.Context, params DateQuery) ([]models.Product, error) {
	from, to, err := params.resolve()
	if err != nil {
		return nil, err
	}
	return s.find(ctx, repositories.ProductQuery{
		CreatedFrom:   from,
		CreatedBefore: to.AddDate(0, 0, 1),
		OrderBy:       repositories.OrderByCreatedAt,
	}, "could not list products by date, try again later")
}

func (q DateQuery) resolve() (time.Time, time.Time, error) {
	start, end := q.StartDate, q.EndDate
	switch {
	case q.Date != "":
		start, end = q.Date, q.Date
	case start == "" || end == "":
		return time.Time{}, time.Time{}, apperror.NewInvalidInput("provide a date or a date range", nil)
	}

	from, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.NewInvalidInput("dates must use the YYYY-MM-DD format", nil)
	}
	to, err := time.ParseInLocation(dateLayout, end, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.NewInvalidInput("dates must use the YYYY-MM-DD format", nil)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, apperror.NewInvalidInput("startDate must not be after endDate", nil)
	}
	return from, to, nil
}

// FindByCategory lists the products in category.
func (s *ProductService) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	category = normalizeText(category)
	if category == "" {
		return nil, apperror.NewInvalidInput("category not provided", nil)
	}
	return s.find(ctx, repositories.ProductQuery{Category: category},
		"could not list products, try again later")
}

// FindByUser lists the products owned by requestedUserID. Users may only list
// their own products: any other id fails with NotFound.
func (s *ProductService) FindByUser(ctx context.Context, requestedUserID, actingUserID uint) ([]models.Product, error) {
	if requestedUserID == 0 {
		return nil, apperror.NewInvalidInput("user id not provided", nil)
	}

	acting, err := s.users.FindByID(ctx, actingUserID)
	if err != nil {
		return nil, apperror.Wrap(err, "could not list products, try again later")
	}
	if acting.ID != requestedUserID {
		return nil, apperror.NewNotFound("user not found")
	}

	return s.find(ctx, repositories.ProductQuery{UserID: acting.ID},
		"could not list products, try again later")
}

// FindByName lists the products whose name contains namePattern, ignoring
// case, in id order.
func (s *ProductService) FindByName(ctx context.Context, namePattern string) ([]models.Product, error) {
	if namePattern == "" {
		return nil, apperror.NewInvalidInput("product name not provided", nil)
	}
	return s.find(ctx, repositories.ProductQuery{NameContains: namePattern, OrderBy: repositories.OrderByID},
		"could not list products by name, try again later")
}

// FindAll lists every product.
func (s *ProductService) FindAll(ctx context.Context) ([]models.Product, error) {
	return s.find(ctx, repositories.ProductQuery{}, "could not list products, try again later")
}

func (s *ProductService) find(ctx context.Context, query repositories.ProductQuery, message string) ([]models.Product, error) {
	products, err := s.repo.Find(ctx, query)
	if err != nil {
		return nil, internalError(ctx, s.logger, message, err)
	}
	return products, nil
}

package repositories

import (
	"context"
	"time"

	"estoque/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindByNameAndUser(ctx context.Context, name string, userID uint) (*models.Product, error)
	Find(ctx context.Context, query ProductQuery) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
}

// ProductOrder is the column a product listing is sorted by.
type ProductOrder string

const (
	OrderByID        ProductOrder = "id"
	OrderByCreatedAt ProductOrder = "created_at"
)

// ProductQuery describes a product listing: every non-zero field narrows the result.
type ProductQuery struct {
	UserID       uint
	Category     string
	NameContains string // case-insensitive substring
	// CreatedFrom is inclusive and CreatedBefore exclusive.
	CreatedFrom   time.Time
	CreatedBefore time.Time
	OrderBy       ProductOrder
}

func (q ProductQuery) orderClause() string {
	if q.OrderBy == OrderByCreatedAt {
		return "created_at ASC, id ASC"
	}
	return "id ASC"
}

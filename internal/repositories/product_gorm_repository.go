package repositories

import (
	"context"
	"strings"

	"estoque/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// FindByID retrieves a single product by its ID.
func (r *GORMProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to get product by id")
	}
	return &product, nil
}

// FindByNameAndUser retrieves the product a user registered under name.
func (r *GORMProductRepository) FindByNameAndUser(ctx context.Context, name string, userID uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("product_name = ? AND user_id = ?", name, userID).
		First(&product).Error
	if err != nil {
		return nil, translateError(err, "failed to get product by name")
	}
	return &product, nil
}

// Find lists the products matching query.
func (r *GORMProductRepository) Find(ctx context.Context, query ProductQuery) ([]models.Product, error) {
	tx := r.db.WithContext(ctx).Model(&models.Product{})
	if query.UserID != 0 {
		tx = tx.Where("user_id = ?", query.UserID)
	}
	if query.Category != "" {
		tx = tx.Where("category_product = ?", query.Category)
	}
	if query.NameContains != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(query.NameContains)) + "%"
		tx = tx.Where(`LOWER(product_name) LIKE ? ESCAPE '\'`, pattern)
	}
	if !query.CreatedFrom.IsZero() {
		tx = tx.Where("created_at >= ?", query.CreatedFrom)
	}
	if !query.CreatedBefore.IsZero() {
		tx = tx.Where("created_at < ?", query.CreatedBefore)
	}

	products := make([]models.Product, 0)
	if err := tx.Order(query.orderClause()).Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	return products, nil
}

// Create inserts a new product. The (product_name, user_id) unique index reports duplicates.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return translateError(err, "failed to create product")
	}
	return nil
}

// Update persists every updatable column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).Select("*").Updates(product)
	if res.Error != nil {
		return translateError(res.Error, "failed to update product")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete product")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

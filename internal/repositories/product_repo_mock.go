package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"estoque/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It enforces the (product name, owner) uniqueness of the products table.
type MockProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	now      func() time.Time
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]models.Product),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FindByID returns a product by its ID.
func (r *MockProductRepository) FindByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// FindByNameAndUser returns the product a user registered under name.
func (r *MockProductRepository) FindByNameAndUser(_ context.Context, name string, userID uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ProductName == name && p.UserID == userID {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Find returns the products matching query, in the requested order.
func (r *MockProductRepository) Find(_ context.Context, query ProductQuery) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query.NameContains)
	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		switch {
		case query.UserID != 0 && p.UserID != query.UserID:
			continue
		case query.Category != "" && p.CategoryProduct != query.Category:
			continue
		case needle != "" && !strings.Contains(strings.ToLower(p.ProductName), needle):
			continue
		case !query.CreatedFrom.IsZero() && p.CreatedAt.Before(query.CreatedFrom):
			continue
		case !query.CreatedBefore.IsZero() && !p.CreatedAt.Before(query.CreatedBefore):
			continue
		}
		productList = append(productList, p)
	}

	sort.Slice(productList, func(i, j int) bool {
		a, b := productList[i], productList[j]
		if query.OrderBy == OrderByCreatedAt && !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return productList, nil
}

// Create adds a new product and assigns its ID and timestamps.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTakenLocked(product.ProductName, product.UserID, 0) {
		return ErrDuplicate
	}
	r.nextID++
	product.ID = r.nextID
	now := r.now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}
	r.products[product.ID] = *product
	return nil
}

// Update replaces an existing product. Owner and CreatedAt are kept from the stored record.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	product.UserID = stored.UserID
	product.CreatedAt = stored.CreatedAt
	if r.nameTakenLocked(product.ProductName, product.UserID, product.ID) {
		return ErrDuplicate
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *MockProductRepository) nameTakenLocked(name string, userID, exceptID uint) bool {
	for id, p := range r.products {
		if id != exceptID && p.UserID == userID && p.ProductName == name {
			return true
		}
	}
	return false
}

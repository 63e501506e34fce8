package repositories

import (
	"context"

	"estoque/internal/models"
)

// UserRepository defines the interface for user data access.
// Lookups return ErrNotFound when no user matches; writes return ErrDuplicate on an email collision.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Remove(ctx context.Context, user *models.User) error
}

package repositories

import (
	"context"

	"estoque/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// FindByID retrieves a user by their ID.
func (r *GORMUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to get user by id")
	}
	return &user, nil
}

// FindByEmail retrieves a user by their (already normalized) email.
func (r *GORMUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translateError(err, "failed to get user by email")
	}
	return &user, nil
}

// Create inserts a new user; the store assigns the ID.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateError(err, "failed to create user")
	}
	return nil
}

// Update persists every updatable column of an existing user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).Select("*").Updates(user)
	if res.Error != nil {
		return translateError(res.Error, "failed to update user")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes the given user.
func (r *GORMUserRepository) Remove(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", user.ID)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete user")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package repositories

import (
	"context"
	"sync"
	"time"

	"estoque/internal/models"
)

// MockUserRepository is an in-memory implementation of UserRepository.
// It enforces email uniqueness the same way the users table does.
type MockUserRepository struct {
	users  map[uint]models.User
	nextID uint
	mu     sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[uint]models.User),
	}
}

// FindByID returns a user by its ID.
func (r *MockUserRepository) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// FindByEmail returns a user by its email.
func (r *MockUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// Create adds a new user and assigns its ID.
func (r *MockUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(user.Email, 0) {
		return ErrDuplicate
	}
	r.nextID++
	user.ID = r.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.ID] = *user
	return nil
}

// Update replaces an existing user. CreatedAt is kept from the stored record.
func (r *MockUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if r.emailTakenLocked(user.Email, user.ID) {
		return ErrDuplicate
	}
	user.CreatedAt = stored.CreatedAt
	r.users[user.ID] = *user
	return nil
}

// Remove deletes a user.
func (r *MockUserRepository) Remove(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	delete(r.users, user.ID)
	return nil
}

func (r *MockUserRepository) emailTakenLocked(email string, exceptID uint) bool {
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"estoque/internal/apperror"
	"estoque/internal/events"
	"estoque/internal/metrics"
	"estoque/internal/models"
	"estoque/internal/repositories"
	"estoque/internal/security"
	"estoque/internal/validation"
)

// CreateUserInput is the registration payload.
type CreateUserInput struct {
	Username string      `json:"username" validate:"required,min=2,max=50"`
	Email    string      `json:"email" validate:"required,email,max=50"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Role     models.Role `json:"role" validate:"required,oneof=user admin"`
}

// UpdateUserInput carries the fields to change; nil fields are left as stored.
type UpdateUserInput struct {
	Username *string      `json:"username" validate:"omitempty,min=2,max=50"`
	Email    *string      `json:"email" validate:"omitempty,email,max=50"`
	Password *string      `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *models.Role `json:"role" validate:"omitempty,oneof=user admin"`
}

// UserService handles business logic for user accounts.
type UserService struct {
	repo   repositories.UserRepository
	hasher security.PasswordHasher
	events *events.Emitter
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository, hasher security.PasswordHasher, emitter *events.Emitter, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		events: emitter,
		logger: logger,
	}
}

// CreateUser registers a new user with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.NewConflict("email already registered", nil)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, internalError(ctx, s.logger, "could not create user, try again later", err)
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, internalError(ctx, s.logger, "could not create user, try again later", err)
	}

	user := &models.User{
		Username: input.Username,
		Email:    email,
		Password: digest,
		Role:     input.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.NewConflict("email already registered", err)
		}
		return nil, internalError(ctx, s.logger, "could not create user, try again later", err)
	}

	metrics.UsersRegistered.Inc()
	s.events.Emit(ctx, events.UserCreated, user)
	s.logger.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// FindByID returns the user with id.
func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, apperror.NewNotFound("user not found")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, err)
	}
	return user, nil
}

// FindByEmail returns the user registered under email. Matching ignores case
// and surrounding spaces.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperror.NewNotFound("user not found")
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, s.lookupError(ctx, err)
	}
	return user, nil
}

func (s *UserService) lookupError(ctx context.Context, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperror.NewNotFound("user not found")
	}
	return internalError(ctx, s.logger, "could not find user, try again later", err)
}

// Update merges input onto the stored user. The password is re-hashed only
// when a new one is given.
func (s *UserService) Update(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Password != nil {
		digest, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, internalError(ctx, s.logger, "could not update user, try again later", err)
		}
		user.Password = digest
	}
	if input.Role != nil {
		user.Role = *input.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperror.NewNotFound("user not found")
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, apperror.NewConflict("email already registered", err)
		}
		return nil, internalError(ctx, s.logger, "could not update user, try again later", err)
	}

	s.events.Emit(ctx, events.UserUpdated, user)
	return user, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return apperror.NewConflict("email already registered", nil)
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return internalError(ctx, s.logger, "could not update user, try again later", err)
	}
}

// Remove deletes the user with id.
func (s *UserService) Remove(ctx context.Context, id uint) (*Confirmation, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Remove(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NewNotFound("user not found")
		}
		return nil, internalError(ctx, s.logger, "could not remove user, try again later", err)
	}

	s.events.Emit(ctx, events.UserDeleted, map[string]uint{"id": user.ID})
	return &Confirmation{Message: fmt.Sprintf("user %d removed", user.ID)}, nil
}

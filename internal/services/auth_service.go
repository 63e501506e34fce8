package services

import (
	"context"
	"log/slog"

	"estoque/internal/apperror"
	"estoque/internal/metrics"
	"estoque/internal/models"
	"estoque/internal/security"
)

const invalidCredentials = "invalid credentials"

// SignInResult is the outcome of a login attempt. Rejected credentials are a
// result, not an error: Authorized is false and AccessToken empty.
type SignInResult struct {
	Authorized  bool   `json:"authorized"`
	AccessToken string `json:"access_token,omitempty"`
	Message     string `json:"message,omitempty"`
}

// AuthService handles business logic for authentication.
type AuthService struct {
	users  *UserService
	hasher security.PasswordHasher
	issuer security.TokenIssuer
	logger *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, hasher security.PasswordHasher, issuer security.TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		issuer: issuer,
		logger: logger,
	}
}

// ValidateCredentials returns the user owning email when password matches its
// stored hash. Unknown emails and wrong passwords both fail with NotFound.
func (s *AuthService) ValidateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(invalidCredentials)
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		return nil, internalError(ctx, s.logger, "could not validate credentials, try again later", err)
	}
	if !ok || user.Email != normalizeEmail(email) {
		return nil, apperror.NewNotFound(invalidCredentials)
	}
	return user, nil
}

// CreateAccessToken issues a token for the user registered under email.
func (s *AuthService) CreateAccessToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(security.Claims{Subject: user.ID, Username: user.Username})
	if err != nil || token == "" {
		s.logger.WarnContext(ctx, "token issuance failed", slog.Uint64("user_id", uint64(user.ID)), slog.Any("error", err))
		return "", apperror.NewUnauthorized("could not issue access token", err)
	}
	return token, nil
}

// SignIn validates the credentials and issues an access token. Rejected
// credentials produce an unauthorized result; other failures are errors.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.ValidateCredentials(ctx, email, password)
	if err != nil {
		if apperror.IsNotFound(err) {
			metrics.SignInAttempts.WithLabelValues(metrics.SignInUnauthorized).Inc()
			s.logger.InfoContext(ctx, "sign-in rejected")
			return &SignInResult{Authorized: false, Message: invalidCredentials}, nil
		}
		metrics.SignInAttempts.WithLabelValues(metrics.SignInError).Inc()
		return nil, apperror.Wrap(err, "could not sign in, try again later")
	}

	token, err := s.CreateAccessToken(ctx, user.Email)
	if err != nil {
		metrics.SignInAttempts.WithLabelValues(metrics.SignInError).Inc()
		return nil, apperror.Wrap(err, "could not sign in, try again later")
	}

	metrics.SignInAttempts.WithLabelValues(metrics.SignInAuthorized).Inc()
	s.logger.InfoContext(ctx, "user signed in", slog.Uint64("user_id", uint64(user.ID)))
	return &SignInResult{Authorized: true, AccessToken: token}, nil
}

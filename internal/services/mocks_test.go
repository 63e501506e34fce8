package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"estoque/internal/models"
	"estoque/internal/repositories"
	"estoque/internal/security"
	"estoque/internal/services"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockUserRepository is a testify mock of repositories.UserRepository.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Remove(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

// mockProductRepository is a testify mock of repositories.ProductRepository.
type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductRepository) FindByNameAndUser(ctx context.Context, name string, userID uint) (*models.Product, error) {
	args := m.Called(ctx, name, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductRepository) Find(ctx context.Context, query repositories.ProductQuery) ([]models.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *mockProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepository) Update(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

// mockIssuer is a testify mock of security.TokenIssuer.
type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) Issue(claims security.Claims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *mockIssuer) Verify(token string) (*security.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Claims), args.Error(1)
}

// fixture wires the services over in-memory repositories.
type fixture struct {
	users    *services.UserService
	auth     *services.AuthService
	products *services.ProductService
	issuer   *security.JWTIssuer
	userRepo *repositories.MockUserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	issuer, err := security.NewJWTIssuer(testSecret)
	require.NoError(t, err)

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	userRepo := repositories.NewMockUserRepository()
	users := services.NewUserService(userRepo, hasher, nil, discard)
	return &fixture{
		users:    users,
		auth:     services.NewAuthService(users, hasher, issuer, discard),
		products: services.NewProductService(repositories.NewMockProductRepository(), users, nil, discard),
		issuer:   issuer,
		userRepo: userRepo,
	}
}

func (f *fixture) register(t *testing.T, username, email string) *models.User {
	t.Helper()
	user, err := f.users.CreateUser(context.Background(), services.CreateUserInput{
		Username: username,
		Email:    email,
		Password: "secret1",
		Role:     models.RoleUser,
	})
	require.NoError(t, err)
	return user
}

func ptr[T any](v T) *T {
	return &v
}

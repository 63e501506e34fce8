package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"estoque/internal/apperror"
	"estoque/internal/models"
	"estoque/internal/repositories"
	"estoque/internal/security"
	"estoque/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func widget() services.CreateProductInput {
	return services.CreateProductInput{
		ProductName:        "Widget",
		QuantityProduct:    5,
		PriceProduct:       9.99,
		CategoryProduct:    "Tools",
		DescriptionProduct: "D",
	}
}

func TestProductService_CreateAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Ana", "ana@x.com")

	product, err := f.products.Create(ctx, owner.ID, widget())
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.Equal(t, owner.ID, product.UserID)
	assert.Equal(t, "widget", product.ProductName)
	assert.Equal(t, "tools", product.CategoryProduct)
	assert.Equal(t, "d", product.DescriptionProduct)
	assert.Equal(t, 9.99, product.PriceProduct)

	confirmation, err := f.products.RemoveByID(ctx, product.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, confirmation.Message)

	all, err := f.products.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = f.products.RemoveByID(ctx, product.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = f.products.RemoveByID(ctx, 0)
	assert.True(t, apperror.IsNotFound(err))
}

func TestProductService_Create_NameUniquePerOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "Ana", "ana@x.com")
	bob := f.register(t, "Bob", "bob@x.com")

	_, err := f.products.Create(ctx, ana.ID, widget())
	require.NoError(t, err)

	again := widget()
	again.ProductName = "WIDGET"
	_, err = f.products.Create(ctx, ana.ID, again)
	assert.True(t, apperror.IsConflict(err))

	_, err = f.products.Create(ctx, bob.ID, again)
	assert.NoError(t, err)
}

func TestProductService_Create_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Ana", "ana@x.com")

	_, err := f.products.Create(ctx, 999, widget())
	assert.True(t, apperror.IsNotFound(err))

	bad := widget()
	bad.QuantityProduct = -1
	bad.ProductName = "w"
	_, err = f.products.Create(ctx, owner.ID, bad)
	require.True(t, apperror.IsInvalidInput(err))
	appErr, _ := apperror.FromError(err)
	assert.Contains(t, appErr.Fields, "quantityProduct")
	assert.Contains(t, appErr.Fields, "productName")
}

func TestProductService_Create_RoundsPrice(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "Ana", "ana@x.com")

	input := widget()
	input.PriceProduct = 10.456
	product, err := f.products.Create(context.Background(), owner.ID, input)
	require.NoError(t, err)
	assert.Equal(t, 10.46, product.PriceProduct)
}

func TestProductService_Create_StoreFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	userRepo := repositories.NewMockUserRepository()
	owner := &models.User{Username: "Ana", Email: "ana@x.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, userRepo.Create(ctx, owner))
	users := services.NewUserService(userRepo, security.NewBcryptHasher(bcrypt.MinCost), nil, discard)

	repo := new(mockProductRepository)
	repo.On("FindByNameAndUser", ctx, "widget", owner.ID).Return(nil, repositories.ErrNotFound).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(errors.New("disk full")).Once()

	_, err := services.NewProductService(repo, users, nil, discard).Create(ctx, owner.ID, widget())
	require.True(t, apperror.IsInternal(err))
	appErr, _ := apperror.FromError(err)
	assert.NotContains(t, appErr.Message, "disk full")
	repo.AssertExpectations(t)
}

func TestProductService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Ana", "ana@x.com")
	product, err := f.products.Create(ctx, owner.ID, widget())
	require.NoError(t, err)
	other := widget()
	other.ProductName = "Gadget"
	_, err = f.products.Create(ctx, owner.ID, other)
	require.NoError(t, err)

	t.Run("merges partial fields", func(t *testing.T) {
		updated, err := f.products.Update(ctx, product.ID, services.UpdateProductInput{
			QuantityProduct: ptr(7),
			CategoryProduct: ptr("Hardware"),
		})
		require.NoError(t, err)
		assert.Equal(t, 7, updated.QuantityProduct)
		assert.Equal(t, "hardware", updated.CategoryProduct)
		assert.Equal(t, "widget", updated.ProductName)
		assert.Equal(t, owner.ID, updated.UserID)
		assert.Equal(t, product.CreatedAt, updated.CreatedAt)
		assert.False(t, updated.UpdatedAt.Before(product.UpdatedAt))
	})

	t.Run("rename onto an existing name", func(t *testing.T) {
		_, err := f.products.Update(ctx, product.ID, services.UpdateProductInput{ProductName: ptr("GADGET")})
		assert.True(t, apperror.IsConflict(err))
	})

	t.Run("same name in another case is not a conflict", func(t *testing.T) {
		_, err := f.products.Update(ctx, product.ID, services.UpdateProductInput{ProductName: ptr("Widget")})
		assert.NoError(t, err)
	})

	t.Run("absent product", func(t *testing.T) {
		_, err := f.products.Update(ctx, 999, services.UpdateProductInput{QuantityProduct: ptr(1)})
		assert.True(t, apperror.IsNotFound(err))
		_, err = f.products.Update(ctx, 0, services.UpdateProductInput{QuantityProduct: ptr(1)})
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := f.products.Update(ctx, product.ID, services.UpdateProductInput{QuantityProduct: ptr(-3)})
		assert.True(t, apperror.IsInvalidInput(err))
	})
}

func TestProductService_FindByDate(t *testing.T) {
	ctx := context.Background()
	repo := new(mockProductRepository)
	svc := services.NewProductService(repo, nil, nil, discard)

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expected := []models.Product{{ID: 1}, {ID: 2}}
	repo.On("Find", ctx, repositories.ProductQuery{
		CreatedFrom:   day,
		CreatedBefore: day.AddDate(0, 0, 1),
		OrderBy:       repositories.OrderByCreatedAt,
	}).Return(expected, nil).Once()

	products, err := svc.FindByDate(ctx, services.DateQuery{Date: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, expected, products)

	repo.On("Find", ctx, repositories.ProductQuery{
		CreatedFrom:   day,
		CreatedBefore: day.AddDate(0, 0, 10),
		OrderBy:       repositories.OrderByCreatedAt,
	}).Return([]models.Product{}, nil).Once()

	_, err = svc.FindByDate(ctx, services.DateQuery{StartDate: "2024-01-01", EndDate: "2024-01-09"})
	require.NoError(t, err)
	repo.AssertExpectations(t)

	for name, query := range map[string]services.DateQuery{
		"nothing":       {},
		"start only":    {StartDate: "2024-01-01"},
		"malformed":     {Date: "01/01/2024"},
		"reverse range": {StartDate: "2024-02-01", EndDate: "2024-01-01"},
	} {
		_, err := svc.FindByDate(ctx, query)
		assert.True(t, apperror.IsInvalidInput(err), name)
	}
}

func TestProductService_FindByDate_SelectsCalendarDay(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockProductRepository()
	stamps := []time.Time{
		time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	for i, ts := range stamps {
		require.NoError(t, repo.Create(ctx, &models.Product{
			UserID:      1,
			ProductName: string(rune('a' + i)),
			CreatedAt:   ts,
		}))
	}

	products, err := services.NewProductService(repo, nil, nil, discard).
		FindByDate(ctx, services.DateQuery{Date: "2024-01-01"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, stamps[2], products[0].CreatedAt)
	assert.Equal(t, stamps[1], products[1].CreatedAt)
}

func TestProductService_FindByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.register(t, "Ana", "ana@x.com")
	bob := f.register(t, "Bob", "bob@x.com")
	_, err := f.products.Create(ctx, ana.ID, widget())
	require.NoError(t, err)

	products, err := f.products.FindByUser(ctx, ana.ID, ana.ID)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = f.products.FindByUser(ctx, ana.ID, bob.ID)
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.products.FindByUser(ctx, 0, ana.ID)
	assert.True(t, apperror.IsInvalidInput(err))
}

func TestProductService_FindByNameAndCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "Ana", "ana@x.com")
	for _, name := range []string{"Blue Widget", "Gadget", "Red widget"} {
		input := widget()
		input.ProductName = name
		_, err := f.products.Create(ctx, owner.ID, input)
		require.NoError(t, err)
	}

	byName, err := f.products.FindByName(ctx, "WIDGET")
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, "blue widget", byName[0].ProductName)
	assert.Equal(t, "red widget", byName[1].ProductName)

	byCategory, err := f.products.FindByCategory(ctx, "TOOLS")
	require.NoError(t, err)
	assert.Len(t, byCategory, 3)

	_, err = f.products.FindByName(ctx, "")
	assert.True(t, apperror.IsInvalidInput(err))
	_, err = f.products.FindByCategory(ctx, " ")
	assert.True(t, apperror.IsInvalidInput(err))
}

func TestProductService_FindAll_StoreFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	repo := new(mockProductRepository)
	repo.On("Find", ctx, repositories.ProductQuery{}).Return(nil, errors.New("timeout")).Once()

	_, err := services.NewProductService(repo, nil, nil, discard).FindAll(ctx)
	assert.True(t, apperror.IsInternal(err))
	repo.AssertExpectations(t)
}

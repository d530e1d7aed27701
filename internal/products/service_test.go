package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
)

func productFixture(t *testing.T) Service {
	t.Helper()

	repo := NewRepository(setupProductTestDB(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, code), "got %v", err)
}

func TestCreateProductValidation(t *testing.T) {
	svc := productFixture(t)
	ctx := context.Background()
	storeID := uuid.New()

	_, err := svc.CreateProduct(ctx, storeID, CreateProductInput{
		SellingPrice: decimal.RequireFromString("100"),
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateProduct(ctx, storeID, CreateProductInput{
		Name:         "Negative Ring",
		SellingPrice: decimal.RequireFromString("-1"),
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateProduct(ctx, storeID, CreateProductInput{
		Name:         "Short Ring",
		Stock:        -1,
		SellingPrice: decimal.RequireFromString("100"),
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateProductPersists(t *testing.T) {
	svc := productFixture(t)
	ctx := context.Background()
	storeID := uuid.New()

	created, err := svc.CreateProduct(ctx, storeID, CreateProductInput{
		Name:           "Diamond Pendant",
		Stock:          3,
		SellingPrice:   decimal.RequireFromString("45000.00"),
		TaxRatePercent: decimal.RequireFromString("3"),
	})
	require.NoError(t, err)
	assert.Equal(t, storeID, created.StoreID)
	assert.True(t, created.IsActive)

	rows, err := svc.ListProducts(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Diamond Pendant", rows[0].Name)
}

func TestGetProductNotFound(t *testing.T) {
	svc := productFixture(t)

	_, err := svc.GetProduct(context.Background(), uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateProductCrossStoreForbidden(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	ring := seedProduct(t, repo, uuid.New(), "Foreign Ring", 1)

	name := "Renamed"
	_, err = svc.UpdateProduct(ctx, uuid.New(), ring.ID, UpdateProductInput{Name: &name})
	requireCode(t, err, pkgerrors.CodeForbidden)

	err = svc.DeleteProduct(ctx, uuid.New(), ring.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)
}

func TestUpdateProductAppliesPartial(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	storeID := uuid.New()
	ring := seedProduct(t, repo, storeID, "Plain Ring", 4)

	stock := 10
	price := decimal.RequireFromString("250.00")
	updated, err := svc.UpdateProduct(ctx, storeID, ring.ID, UpdateProductInput{
		Stock:        &stock,
		SellingPrice: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Stock)
	assert.True(t, updated.SellingPrice.Equal(price))
	assert.Equal(t, "Plain Ring", updated.Name)

	bad := -5
	_, err = svc.UpdateProduct(ctx, storeID, ring.ID, UpdateProductInput{Stock: &bad})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteProductHidesFromListing(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	storeID := uuid.New()
	ring := seedProduct(t, repo, storeID, "Doomed Ring", 1)

	require.NoError(t, svc.DeleteProduct(ctx, storeID, ring.ID))

	rows, err := svc.ListProducts(ctx, storeID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// The row survives for past bills.
	found, err := repo.FindByID(ctx, ring.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

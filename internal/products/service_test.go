package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/storefront/pkg/db/dbtest"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc, err := NewService(repo, client)
	require.NoError(t, err)
	return svc, repo
}

func intPtr(v int) *int          { return &v }
func stringPtr(v string) *string { return &v }
func boolPtr(v bool) *bool       { return &v }

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error %s, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "  ", PriceCents: 100})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "Lamp", PriceCents: -1})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateProduct(ctx, CreateProductInput{Name: "Lamp", Stock: -2})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateAndGetProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:       " Desk Lamp ",
		PriceCents: 1999,
		Stock:      4,
		IsActive:   true,
	})
	require.NoError(t, err)
	require.Equal(t, "Desk Lamp", created.Name)
	require.Equal(t, "general", created.Category)
	require.Equal(t, "19.99", created.Price)

	got, err := svc.GetProduct(ctx, created.ID, false)
	require.NoError(t, err)
	require.Equal(t, 4, got.Stock)

	_, err = svc.GetProduct(ctx, uuid.New(), false)
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeactivateHidesFromCatalog(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Mug", PriceCents: 500, Stock: 1, IsActive: true})
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateProduct(ctx, created.ID))

	_, err = svc.GetProduct(ctx, created.ID, false)
	requireCode(t, err, pkgerrors.CodeNotFound)

	admin, err := svc.GetProduct(ctx, created.ID, true)
	require.NoError(t, err)
	require.False(t, admin.IsActive)

	list, err := svc.ListProducts(ctx, ListProductsInput{})
	require.NoError(t, err)
	require.Empty(t, list.Products)

	requireCode(t, svc.DeactivateProduct(ctx, uuid.New()), pkgerrors.CodeNotFound)
}

func TestUpdateProductLeavesStockAlone(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Pen", PriceCents: 150, Stock: 9, IsActive: true})
	require.NoError(t, err)

	price := int64(175)
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{
		Name:       stringPtr("Blue Pen"),
		PriceCents: &price,
		IsActive:   boolPtr(true),
	})
	require.NoError(t, err)
	require.Equal(t, "Blue Pen", updated.Name)
	require.Equal(t, int64(175), updated.PriceCents)
	require.Equal(t, 9, updated.Stock)

	_, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Name: stringPtr(" ")})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateStockFloorsAtZero(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Cable", PriceCents: 300, Stock: 2, IsActive: true})
	require.NoError(t, err)

	_, err = svc.UpdateStock(ctx, created.ID, StockInput{})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.UpdateStock(ctx, created.ID, StockInput{Set: intPtr(-1)})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.UpdateStock(ctx, created.ID, StockInput{Delta: intPtr(-3)})
	requireCode(t, err, pkgerrors.CodeConflict)

	got, err := svc.UpdateStock(ctx, created.ID, StockInput{Delta: intPtr(-2)})
	require.NoError(t, err)
	require.Equal(t, 0, got.Stock)

	got, err = svc.UpdateStock(ctx, created.ID, StockInput{Set: intPtr(12)})
	require.NoError(t, err)
	require.Equal(t, 12, got.Stock)

	_, err = svc.UpdateStock(ctx, uuid.New(), StockInput{Delta: intPtr(1)})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListProductsPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.CreateProduct(ctx, CreateProductInput{Name: name, PriceCents: 100, Stock: 1, IsActive: true})
		require.NoError(t, err)
	}

	first, err := svc.ListProducts(ctx, ListProductsInput{Pagination: pagination.Params{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListProducts(ctx, ListProductsInput{Pagination: pagination.Params{Limit: 2, Cursor: first.NextCursor}})
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	require.Empty(t, second.NextCursor)

	_, err = svc.ListProducts(ctx, ListProductsInput{Pagination: pagination.Params{Cursor: "%%%"}})
	requireCode(t, err, pkgerrors.CodeValidation)
}

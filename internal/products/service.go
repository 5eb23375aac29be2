package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/db"
	"github.com/shopfront/storefront/pkg/db/models"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/pagination"
)

// Service exposes the catalog and the admin side of the inventory ledger.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeactivateProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID, includeInactive bool) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	UpdateStock(ctx context.Context, productID uuid.UUID, input StockInput) (*ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	ImageURL    *string
	PriceCents  int64
	Stock       int
	IsActive    bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *string
	ImageURL    *string
	PriceCents  *int64
	IsActive    *bool
}

// StockInput either overwrites the level (Set) or moves it by Delta.
// Exactly one must be provided.
type StockInput struct {
	Set   *int
	Delta *int
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be 0 or more")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be 0 or more")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = "general"
	}

	product := &models.Product{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		ImageURL:    input.ImageURL,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		IsActive:    input.IsActive,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(product), nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be blank")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be 0 or more")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return s.GetProduct(ctx, productID, true)
}

// DeactivateProduct hides the product from the catalog. Rows are kept so
// order line items keep their product reference.
func (s *service) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.repo.SetActive(ctx, productID, false); err != nil {
		return mapProductErr(err, "deactivate product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID, includeInactive bool) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, listQuery{
		ActiveOnly: !input.IncludeInactive,
		Category:   strings.TrimSpace(input.Category),
		Cursor:     cursor,
		Limit:      input.Pagination.Limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page, next := pagination.Page(rows, input.Pagination.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	result := &ProductListResult{Products: make([]ProductDTO, 0, len(page)), NextCursor: next}
	for i := range page {
		result.Products = append(result.Products, *NewProductDTO(&page[i]))
	}
	return result, nil
}

// UpdateStock is the admin entry into the inventory ledger. Stock never goes
// below zero: a Set below zero is a validation error and a Delta that would
// overdraw is a conflict.
func (s *service) UpdateStock(ctx context.Context, productID uuid.UUID, input StockInput) (*ProductDTO, error) {
	if (input.Set == nil) == (input.Delta == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provide exactly one of stock or delta")
	}
	if input.Set != nil && *input.Set < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if input.Set != nil {
			return txRepo.SetStock(ctx, productID, *input.Set)
		}
		_, err := txRepo.AdjustStock(ctx, productID, *input.Delta)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "stock cannot go below zero").
				WithDetails(map[string]any{"product_id": productID.String(), "delta": *input.Delta})
		}
		return nil, mapProductErr(err, "update stock")
	}
	return s.GetProduct(ctx, productID, true)
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapProductErr(err, "load product")
	}
	return product, nil
}

func mapProductErr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopfront/storefront/pkg/db/models"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/types"
)

// Service exposes the customer cart operations.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if _, err := s.repo.FindOrCreate(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return s.view(ctx, userID)
}

// AddItem adds quantity of a product, merging with an existing line. Stock
// is checked against the merged quantity but not reserved.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if quantity > types.MaxQuantity {
		return nil, quantityTooLarge()
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is not available").
			WithDetails(map[string]any{"product_id": productID.String()})
	}
	if product.Stock < quantity {
		return nil, stockConflict(product, quantity, 0)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := txRepo.FindOrCreate(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
		}
		current := FromModel(record)
		existing, _ := current.Quantity(productID)
		merged := current.Add(productID, quantity)
		if merged > types.MaxQuantity {
			return quantityTooLarge()
		}
		if product.Stock < merged {
			return stockConflict(product, merged, existing)
		}
		if err := txRepo.UpsertItem(ctx, record.ID, productID, merged, nextPosition(record)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, userID)
}

// UpdateItem sets the quantity of a product already in the cart. Zero
// removes the line.
func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be 0 or more")
	}
	if quantity > types.MaxQuantity {
		return nil, quantityTooLarge()
	}
	current, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if current.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	if _, ok := current.Quantity(productID); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found in cart")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	product, err := s.products.FindByID(ctx, productID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is no longer available").
			WithDetails(map[string]any{"product_id": productID.String(), "available": 0, "requested": quantity})
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	case product.Stock < quantity:
		return nil, stockConflict(product, quantity, 0)
	}

	if err := s.repo.UpsertItem(ctx, current.ID, productID, quantity, 0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	return s.view(ctx, userID)
}

// RemoveItem drops a product line.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	current, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if current.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	removed, err := s.repo.DeleteItem(ctx, current.ID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found in cart")
	}
	return s.view(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.ClearByUserID(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) view(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	current, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	products, err := s.products.FindByIDs(ctx, current.ProductIDs())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	return newCartDTO(current, products), nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func stockConflict(product *models.Product, requested, inCart int) error {
	details := map[string]any{
		"product_id": product.ID.String(),
		"available":  product.Stock,
		"requested":  requested,
	}
	if inCart > 0 {
		details["in_cart"] = inCart
	}
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("not enough stock for %q", product.Name)).
		WithDetails(details)
}

func nextPosition(record *models.Cart) int {
	next := 0
	for _, item := range record.Items {
		if item.Position >= next {
			next = item.Position + 1
		}
	}
	return next
}

func quantityTooLarge() error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be at most %d", types.MaxQuantity))
}

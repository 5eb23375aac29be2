package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/shopfront/storefront/internal/products"
	"github.com/shopfront/storefront/internal/wallet"
	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/outbox/payloads"
	"github.com/shopfront/storefront/pkg/types"
)

const (
	sourceCart   = "cart"
	sourceDirect = "direct"

	placedDescription = "Your order has been placed successfully"
)

// PlaceFromCart converts the caller's cart into an order. Prices are read
// from the locked product rows, stock is decremented and the cart cleared in
// the same transaction; any failure leaves all three untouched.
func (s *service) PlaceFromCart(ctx context.Context, actor Actor, simulatePayment bool) (*OrderDTO, error) {
	order, err := s.placeFromCart(ctx, actor, simulatePayment)
	if err != nil {
		s.reject(ctx, "place_cart", err)
		return nil, err
	}
	s.metrics.IncPlaced(sourceCart, string(order.PaymentMethod))
	s.logg.Info(s.logg.WithOrderID(s.logg.WithUserID(ctx, actor.UserID.String()), order.ID.String()), "order placed from cart")
	return s.load(ctx, order.ID)
}

func (s *service) placeFromCart(ctx context.Context, actor Actor, simulatePayment bool) (*models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	current, err := s.stores.Carts(nil).Load(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if current.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.lockActiveUser(ctx, tx, actor.UserID); err != nil {
			return err
		}
		carts := s.stores.Carts(tx)
		products := s.stores.Products(tx)

		// Re-read under the transaction so the snapshot matches what is cleared.
		current, err := carts.Load(ctx, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if current.IsEmpty() {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		locked, err := products.FindByIDsForUpdate(ctx, current.ProductIDs())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock products")
		}

		lines := current.Lines()
		items := make([]models.OrderLineItem, 0, len(lines))
		var total int64
		for i, line := range lines {
			p, ok := locked[line.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": line.ProductID.String()})
			}
			if !p.IsActive {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product %q is no longer available", p.Name)).
					WithDetails(map[string]any{"product_id": p.ID.String()})
			}
			if p.Stock < line.Quantity {
				return insufficientStock(p.ID, p.Name, p.Stock, line.Quantity)
			}
			subtotal, err := types.LineTotal(p.PriceCents, line.Quantity)
			if err != nil {
				return totalOutOfRange(i)
			}
			if total, err = types.AddCents(total, subtotal); err != nil {
				return totalOutOfRange(i)
			}
			productID := p.ID
			items = append(items, models.OrderLineItem{
				ProductID:      &productID,
				ProductName:    p.Name,
				Quantity:       line.Quantity,
				UnitPriceCents: p.PriceCents,
				SubtotalCents:  subtotal,
				ImageURL:       p.ImageURL,
				Position:       i,
			})
		}

		order = &models.Order{
			UserID:        actor.UserID,
			TotalCents:    total,
			Status:        enums.OrderStatusPending,
			PaymentStatus: enums.PaymentStatusPending,
			PaymentMethod: enums.PaymentMethodWallet,
			ShippingAddress: models.ShippingAddress{
				Country: s.cfg.DefaultCountry,
			},
			LineItems: items,
			Timeline:  []models.OrderTimelineEntry{s.placedEntry()},
		}
		if simulatePayment {
			paidAt := s.now()
			order.PaymentStatus = enums.PaymentStatusPaid
			order.PaidAt = &paidAt
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for _, item := range items {
			if _, err := products.AdjustStock(ctx, *item.ProductID, -item.Quantity); err != nil {
				if errors.Is(err, product.ErrInsufficientStock) {
					return insufficientStock(*item.ProductID, item.ProductName, locked[*item.ProductID].Stock, item.Quantity)
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
		}
		if err := carts.ClearByUserID(ctx, actor.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return s.emit(ctx, tx, actor, enums.EventOrderPlaced, order.ID, placedEvent(order, sourceCart))
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// PlaceDirect records an order for externally priced items. It never
// touches the catalog, stock or cart. Wallet orders debit the balance in the
// same transaction that creates the order.
func (s *service) PlaceDirect(ctx context.Context, actor Actor, input DirectOrderInput) (*OrderDTO, error) {
	order, err := s.placeDirect(ctx, actor, input)
	if err != nil {
		s.reject(ctx, "place_direct", err)
		return nil, err
	}
	s.metrics.IncPlaced(sourceDirect, string(order.PaymentMethod))
	if order.PaymentMethod.SettlesAtPlacement() {
		s.metrics.AddWalletMovement(string(enums.WalletDebit), order.TotalCents)
	}
	s.logg.Info(s.logg.WithOrderID(s.logg.WithUserID(ctx, actor.UserID.String()), order.ID.String()), "direct order placed")
	return s.load(ctx, order.ID)
}

func (s *service) placeDirect(ctx context.Context, actor Actor, input DirectOrderInput) (*models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	items, total, err := directLines(input.Items)
	if err != nil {
		return nil, err
	}
	address, err := s.shippingAddress(input.Shipping)
	if err != nil {
		return nil, err
	}
	method, err := enums.ParsePaymentMethod(strings.TrimSpace(input.PaymentMethod))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	notes := "Order from external source."
	if email := strings.TrimSpace(input.Email); email != "" {
		notes += " Email: " + email
	}
	order := &models.Order{
		UserID:          actor.UserID,
		TotalCents:      total,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		PaymentMethod:   method,
		ShippingAddress: address,
		Notes:           &notes,
		LineItems:       items,
		Timeline:        []models.OrderTimelineEntry{s.placedEntry()},
	}
	if method.SettlesAtPlacement() {
		paidAt := s.now()
		order.PaymentStatus = enums.PaymentStatusPaid
		order.PaidAt = &paidAt
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.lockActiveUser(ctx, tx, actor.UserID); err != nil {
			return err
		}
		wallets := s.stores.Wallets(tx)
		if method.SettlesAtPlacement() {
			balance, err := wallets.Balance(ctx, actor.UserID)
			if err != nil {
				return mapUserErr(err)
			}
			if balance < total {
				return insufficientBalance(balance, total)
			}
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if method.SettlesAtPlacement() && total > 0 {
			_, err := wallets.ApplyTransaction(ctx, wallet.Entry{
				UserID:      actor.UserID,
				OrderID:     order.ID,
				AmountCents: total,
				Type:        enums.WalletDebit,
			})
			if errors.Is(err, wallet.ErrInsufficientBalance) {
				balance, _ := wallets.Balance(ctx, actor.UserID)
				return insufficientBalance(balance, total)
			}
			if err != nil {
				return mapUserErr(err)
			}
		}
		return s.emit(ctx, tx, actor, enums.EventOrderPlaced, order.ID, placedEvent(order, sourceDirect))
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// directLines validates client items and prices them server-side; any total
// the client sent is ignored.
func directLines(inputs []DirectItemInput) ([]models.OrderLineItem, int64, error) {
	if len(inputs) == 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	items := make([]models.OrderLineItem, 0, len(inputs))
	var total int64
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "item name is required").
				WithDetails(map[string]any{"index": i})
		}
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"index": i})
		}
		if qty > types.MaxQuantity {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be at most %d", types.MaxQuantity)).
				WithDetails(map[string]any{"index": i})
		}
		price, err := types.CentsFromDecimal(in.Price)
		if err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item price").
				WithDetails(map[string]any{"index": i})
		}
		subtotal, err := types.LineTotal(price, qty)
		if err != nil {
			return nil, 0, totalOutOfRange(i)
		}
		if total, err = types.AddCents(total, subtotal); err != nil {
			return nil, 0, totalOutOfRange(i)
		}
		items = append(items, models.OrderLineItem{
			ProductName:    name,
			Quantity:       qty,
			UnitPriceCents: price,
			SubtotalCents:  subtotal,
			ImageURL:       optional(in.Image),
			Position:       i,
		})
	}
	return items, total, nil
}

func totalOutOfRange(index int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "order total out of range").
		WithDetails(map[string]any{"index": index, "max": types.FormatCents(types.MaxCents)})
}

func (s *service) shippingAddress(in ShippingInput) (models.ShippingAddress, error) {
	fullName := strings.TrimSpace(in.FullName)
	line := strings.TrimSpace(in.AddressLine)
	if fullName == "" || line == "" {
		return models.ShippingAddress{}, pkgerrors.New(pkgerrors.CodeValidation, "complete shipping address is required").
			WithDetails(map[string]any{"required": []string{"full_name", "address_line"}})
	}
	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = s.cfg.DefaultCountry
	}
	return models.ShippingAddress{
		FullName:   fullName,
		Line:       line,
		City:       optional(in.City),
		PostalCode: optional(in.PostalCode),
		Phone:      optional(in.Phone),
		Country:    country,
	}, nil
}

func (s *service) placedEntry() models.OrderTimelineEntry {
	return models.OrderTimelineEntry{
		Status:      enums.TimelinePending,
		Description: placedDescription,
		Location:    optional(s.cfg.DefaultLocation),
		OccurredAt:  s.now(),
	}
}

func placedEvent(order *models.Order, source string) payloads.OrderPlacedEvent {
	lines := make([]payloads.OrderLine, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		lines = append(lines, payloads.OrderLine{
			ProductID:  item.ProductID,
			Name:       item.ProductName,
			Quantity:   item.Quantity,
			PriceCents: item.UnitPriceCents,
		})
	}
	return payloads.OrderPlacedEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Source:        source,
		TotalCents:    order.TotalCents,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		Lines:         lines,
		PlacedAt:      order.CreatedAt,
	}
}

func insufficientStock(productID uuid.UUID, name string, available, requested int) error {
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("not enough stock for %q", name)).
		WithDetails(map[string]any{
			"product_id": productID.String(),
			"available":  available,
			"requested":  requested,
		})
}

func insufficientBalance(balance, required int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "insufficient wallet balance").
		WithDetails(map[string]any{
			"balance":  types.FormatCents(balance),
			"required": types.FormatCents(required),
		})
}

// lockActiveUser serialises the caller's order writes and rejects blocked
// accounts.
func (s *service) lockActiveUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	user, err := s.repo.WithTx(tx).LockUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock user")
	}
	if !user.IsActive {
		return pkgerrors.New(pkgerrors.CodeForbidden, "account is blocked")
	}
	return nil
}

func mapUserErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wallet")
}

package cart

import (
	"sort"

	"github.com/google/uuid"

	"github.com/shopfront/storefront/pkg/db/models"
)

// Line is one product/quantity pair in cart order.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// Cart is a user's cart as an insertion-ordered map keyed by product id.
// A product appears at most once; adding it again merges the quantity.
type Cart struct {
	ID     uuid.UUID
	UserID uuid.UUID
	qty    map[uuid.UUID]int
	order  []uuid.UUID
}

// New returns an empty cart for the user.
func New(userID uuid.UUID) *Cart {
	return &Cart{UserID: userID, qty: map[uuid.UUID]int{}}
}

// FromModel rebuilds the ordered cart from its persisted rows.
func FromModel(m *models.Cart) *Cart {
	if m == nil {
		return nil
	}
	c := New(m.UserID)
	c.ID = m.ID
	items := append([]models.CartItem(nil), m.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	for _, item := range items {
		c.Add(item.ProductID, item.Quantity)
	}
	return c
}

// Add merges qty into the product's line, appending it when new, and
// returns the resulting quantity.
func (c *Cart) Add(productID uuid.UUID, qty int) int {
	if _, ok := c.qty[productID]; !ok {
		c.order = append(c.order, productID)
	}
	c.qty[productID] += qty
	return c.qty[productID]
}

// Set overwrites the quantity of an existing line. Zero removes it.
// It reports false when the product is not in the cart.
func (c *Cart) Set(productID uuid.UUID, qty int) bool {
	if _, ok := c.qty[productID]; !ok {
		return false
	}
	if qty <= 0 {
		return c.Remove(productID)
	}
	c.qty[productID] = qty
	return true
}

// Remove drops the product's line, reporting whether it was present.
func (c *Cart) Remove(productID uuid.UUID) bool {
	if _, ok := c.qty[productID]; !ok {
		return false
	}
	delete(c.qty, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Quantity returns the product's quantity and whether it is in the cart.
func (c *Cart) Quantity(productID uuid.UUID) (int, bool) {
	q, ok := c.qty[productID]
	return q, ok
}

// Lines returns the lines in insertion order.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		lines = append(lines, Line{ProductID: id, Quantity: c.qty[id]})
	}
	return lines
}

// ProductIDs returns the product ids in insertion order.
func (c *Cart) ProductIDs() []uuid.UUID {
	return append([]uuid.UUID(nil), c.order...)
}

func (c *Cart) Len() int { return len(c.order) }

func (c *Cart) IsEmpty() bool { return c == nil || len(c.order) == 0 }

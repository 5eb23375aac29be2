package cart

import (
	"testing"

	"github.com/google/uuid"

	"github.com/shopfront/storefront/pkg/db/models"
)

func TestCartKeepsInsertionOrderAndMerges(t *testing.T) {
	c := New(uuid.New())
	a, b, d := uuid.New(), uuid.New(), uuid.New()

	c.Add(a, 1)
	c.Add(b, 2)
	c.Add(d, 1)
	if got := c.Add(a, 3); got != 4 {
		t.Fatalf("expected merged quantity 4, got %d", got)
	}

	lines := c.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	want := []uuid.UUID{a, b, d}
	for i, line := range lines {
		if line.ProductID != want[i] {
			t.Fatalf("line %d: expected %s, got %s", i, want[i], line.ProductID)
		}
	}
	if lines[0].Quantity != 4 {
		t.Fatalf("expected first line quantity 4, got %d", lines[0].Quantity)
	}
}

func TestCartSetAndRemove(t *testing.T) {
	c := New(uuid.New())
	a, b := uuid.New(), uuid.New()
	c.Add(a, 1)
	c.Add(b, 1)

	if c.Set(uuid.New(), 2) {
		t.Fatalf("set on absent product should report false")
	}
	if !c.Set(b, 5) {
		t.Fatalf("set on present product should succeed")
	}
	if q, _ := c.Quantity(b); q != 5 {
		t.Fatalf("expected quantity 5, got %d", q)
	}
	if !c.Set(a, 0) {
		t.Fatalf("set to zero should remove")
	}
	if _, ok := c.Quantity(a); ok {
		t.Fatalf("product should be gone after zero quantity")
	}
	if c.Remove(a) {
		t.Fatalf("second remove should report false")
	}
	if c.Len() != 1 || c.IsEmpty() {
		t.Fatalf("expected one remaining line")
	}

	c.Add(a, 1)
	if ids := c.ProductIDs(); ids[0] != b || ids[1] != a {
		t.Fatalf("re-added product must go to the end, got %v", ids)
	}
}

func TestFromModelOrdersByPosition(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	record := &models.Cart{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Items: []models.CartItem{
			{ProductID: second, Quantity: 2, Position: 4},
			{ProductID: first, Quantity: 1, Position: 1},
		},
	}
	c := FromModel(record)
	if c.ID != record.ID {
		t.Fatalf("cart id not carried over")
	}
	lines := c.Lines()
	if lines[0].ProductID != first || lines[1].ProductID != second {
		t.Fatalf("lines not ordered by position: %+v", lines)
	}

	var empty *Cart
	if !empty.IsEmpty() {
		t.Fatalf("nil cart should be empty")
	}
}

package types

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// MaxCents bounds every stored amount so it survives a round trip
	// through a JSON number.
	MaxCents int64 = 1 << 53
	// MaxQuantity bounds a single order or cart line.
	MaxQuantity = 10000
)

// ErrAmountOutOfRange is returned when arithmetic on amounts leaves
// [0, MaxCents].
var ErrAmountOutOfRange = errors.New("amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(MaxCents)
)

// CentsFromDecimal converts a currency amount into integer cents. Amounts
// with more than two fractional digits or below zero are rejected.
func CentsFromDecimal(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount %s must not be negative", amount.String())
	}
	scaled := amount.Mul(hundred)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than two decimal places", amount.String())
	}
	if scaled.GreaterThan(maxCents) {
		return 0, fmt.Errorf("amount %s is out of range", amount.String())
	}
	return scaled.IntPart(), nil
}

// FormatCents renders cents as a fixed two-decimal string, e.g. 1999 -> "19.99".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// LineTotal returns unit * quantity in cents.
func LineTotal(unit int64, quantity int) (int64, error) {
	if unit < 0 || quantity < 0 || unit > MaxCents {
		return 0, ErrAmountOutOfRange
	}
	if quantity > 0 && unit > MaxCents/int64(quantity) {
		return 0, ErrAmountOutOfRange
	}
	return unit * int64(quantity), nil
}

// AddCents returns a + b, failing instead of exceeding MaxCents.
func AddCents(a, b int64) (int64, error) {
	if a < 0 || b < 0 || a > MaxCents || b > MaxCents-a {
		return 0, ErrAmountOutOfRange
	}
	return a + b, nil
}

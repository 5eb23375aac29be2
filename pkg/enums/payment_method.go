package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how a customer settles an order.
type PaymentMethod string

const (
	// PaymentMethodWallet debits the store wallet when the order is placed.
	PaymentMethodWallet PaymentMethod = "wallet"
	// PaymentMethodCard is settled later through the pay endpoint.
	PaymentMethodCard PaymentMethod = "card"
)

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodWallet, PaymentMethodCard:
		return true
	}
	return false
}

// SettlesAtPlacement reports whether funds move in the placement
// transaction, which makes the order paid from the start.
func (p PaymentMethod) SettlesAtPlacement() bool {
	return p == PaymentMethodWallet
}

// ParsePaymentMethod is case-insensitive. Blank input selects the wallet.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return PaymentMethodWallet, nil
	}
	if method := PaymentMethod(value); method.IsValid() {
		return method, nil
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

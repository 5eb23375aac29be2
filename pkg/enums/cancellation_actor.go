package enums

import "fmt"

// CancellationActor records who cancelled an order.
type CancellationActor string

const (
	CancelledByCustomer CancellationActor = "customer"
	CancelledByAdmin    CancellationActor = "admin"
)

func (a CancellationActor) IsValid() bool {
	return a == CancelledByCustomer || a == CancelledByAdmin
}

func ParseCancellationActor(value string) (CancellationActor, error) {
	a := CancellationActor(value)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid cancellation actor %q", value)
	}
	return a, nil
}

package enums

import "fmt"

// PaymentMethod identifies how a bill was settled at the counter.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodUPI      PaymentMethod = "upi"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodUPICash  PaymentMethod = "upi_cash"
	PaymentMethodCardCash PaymentMethod = "card_cash"
	PaymentMethodCredit   PaymentMethod = "credit"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodUPI,
	PaymentMethodCard,
	PaymentMethodUPICash,
	PaymentMethodCardCash,
	PaymentMethodCredit,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

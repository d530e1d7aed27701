package enums

import "fmt"

// BillStatus tracks the lifecycle of a persisted bill.
type BillStatus string

const (
	BillStatusCompleted BillStatus = "completed"
	BillStatusReturned  BillStatus = "returned"
	BillStatusVoided    BillStatus = "voided"
)

var validBillStatuses = []BillStatus{
	BillStatusCompleted,
	BillStatusReturned,
	BillStatusVoided,
}

// String implements fmt.Stringer.
func (b BillStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is known.
func (b BillStatus) IsValid() bool {
	for _, candidate := range validBillStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBillStatus converts raw input into a BillStatus.
func ParseBillStatus(value string) (BillStatus, error) {
	for _, candidate := range validBillStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bill status %q", value)
}

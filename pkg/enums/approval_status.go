package enums

import "fmt"

// ApprovalStatus tracks the lifecycle of a discount approval request.
type ApprovalStatus string

const (
	ApprovalStatusNotRequired ApprovalStatus = "not_required"
	ApprovalStatusPending     ApprovalStatus = "pending"
	ApprovalStatusApproved    ApprovalStatus = "approved"
	ApprovalStatusDenied      ApprovalStatus = "denied"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusNotRequired,
	ApprovalStatusPending,
	ApprovalStatusApproved,
	ApprovalStatusDenied,
}

// String implements fmt.Stringer.
func (a ApprovalStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is known.
func (a ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the approval workflow has resolved.
func (a ApprovalStatus) IsTerminal() bool {
	return a == ApprovalStatusApproved || a == ApprovalStatusDenied
}

// ParseApprovalStatus converts raw input into an ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}

package billing

import "github.com/google/uuid"

// NoticeKind labels a non-fatal condition surfaced alongside a successful
// cart operation.
type NoticeKind string

const (
	// NoticeStockLimited reports a quantity capped at the available stock.
	NoticeStockLimited NoticeKind = "stock_limited"
	// NoticeLineDropped reports a line evicted because stock hit zero.
	NoticeLineDropped NoticeKind = "line_dropped"
	// NoticeApprovalRequired reports that the discount now needs approval.
	NoticeApprovalRequired NoticeKind = "approval_required"
)

// Notice is a user-visible, non-fatal side effect of a cart mutation. Stock
// conditions are recovered locally; the notice tells the operator what
// happened.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	LineID    uuid.UUID  `json:"line_id,omitempty"`
	ProductID uuid.UUID  `json:"product_id,omitempty"`
	Requested int        `json:"requested,omitempty"`
	Applied   int        `json:"applied,omitempty"`
}

package invoices

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aurumworks/jewelpos-backend/internal/billing"
	"github.com/aurumworks/jewelpos-backend/internal/tax"
	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	"github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/ids"
)

// Assemble turns a finalized cart into an immutable bill. The cart must be
// non-empty and, when the discount crosses the approval threshold, carry an
// approved request. Line figures are copied, not recomputed, so the bill
// records exactly what the cashier saw.
func Assemble(cart billing.Cart, createdBy uuid.UUID) (*models.Bill, error) {
	if cart.IsEmpty() {
		return nil, errors.New(errors.CodeEmptyCart, "cannot save a bill with no items")
	}
	if cart.RequiresApproval() && cart.Approval != enums.ApprovalStatusApproved {
		details := map[string]any{"approval_status": cart.Approval}
		if cart.ApprovalReqID != "" {
			details["request_id"] = cart.ApprovalReqID
		}
		return nil, errors.New(errors.CodeDiscountPending,
			fmt.Sprintf("discount of %s%% is not approved", cart.DiscountPercent.StringFixed(2))).
			WithDetails(details)
	}

	bill := &models.Bill{
		ID:              ids.NewBillID(),
		StoreID:         cart.StoreID,
		CustomerID:      cart.CustomerID,
		CustomerName:    cart.CustomerName,
		CustomerPhone:   cart.CustomerPhone,
		Subtotal:        cart.Totals.Subtotal,
		DiscountPercent: cart.DiscountPercent,
		DiscountAmount:  cart.Totals.DiscountAmount,
		TaxableAmount:   cart.Totals.TaxableAmount,
		CGST:            cart.Totals.CGST,
		SGST:            cart.Totals.SGST,
		TotalTax:        cart.Totals.TotalTax,
		Total:           cart.Totals.FinalTotal,
		PaymentMethod:   cart.PaymentMethod,
		Status:          enums.BillStatusCompleted,
		CreatedBy:       createdBy,
	}
	if cart.ApprovalReqID != "" {
		reqID := cart.ApprovalReqID
		bill.DiscountRequestID = &reqID
	}

	bill.Items = make([]models.BillItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lineTax := tax.PerLineTax(line.Subtotal, line.TaxRatePercent, cart.DiscountPercent)
		bill.Items = append(bill.Items, models.BillItem{
			ID:             uuid.New(),
			BillID:         bill.ID,
			ProductID:      line.ProductID,
			Name:           line.Name,
			Quantity:       line.Quantity,
			BasePrice:      line.BasePrice,
			SellingPrice:   line.SellingPrice,
			TaxRatePercent: line.TaxRatePercent,
			Subtotal:       line.Subtotal,
			CGST:           lineTax.CGST,
			SGST:           lineTax.SGST,
			Barcode:        line.Barcode,
			HSNCode:        line.HSNCode,
		})
	}
	return bill, nil
}

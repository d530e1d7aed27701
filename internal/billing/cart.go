package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurumworks/jewelpos-backend/internal/tax"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	"github.com/aurumworks/jewelpos-backend/pkg/errors"
)

// Rules are the store-level billing policies a cart is created with.
type Rules struct {
	// ApprovalThreshold is the discount percent above which a manager
	// approval is required before the bill can be saved.
	ApprovalThreshold decimal.Decimal
	// WalkInCustomerName is the customer name applied when no customer is
	// attached to the cart.
	WalkInCustomerName string
}

// ProductInfo is the slice of the catalog record the cart needs to add or
// requantify a line. Stock is the live on-hand count at read time.
type ProductInfo struct {
	ID             uuid.UUID
	Name           string
	Barcode        string
	HSNCode        string
	Stock          int
	SellingPrice   decimal.Decimal
	TaxRatePercent decimal.Decimal
}

// Line is one cart row. BasePrice is derived from the tax-inclusive selling
// price at add time and never recomputed afterwards, so a catalog price edit
// does not silently reprice an open cart.
type Line struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	Barcode        string          `json:"barcode,omitempty"`
	HSNCode        string          `json:"hsn_code,omitempty"`
	Quantity       int             `json:"quantity"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	BasePrice      decimal.Decimal `json:"base_price"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

func (l Line) taxLine() tax.Line {
	return tax.Line{Subtotal: l.Subtotal, TaxRatePercent: l.TaxRatePercent}
}

// Cart is the in-memory state of one open billing tab. It is a value type:
// every mutation returns a new Cart, and the Registry serializes mutations
// per tab, so a Cart snapshot is always internally consistent.
type Cart struct {
	TabID   uuid.UUID `json:"tab_id"`
	StoreID uuid.UUID `json:"store_id"`

	Lines []Line `json:"lines"`

	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone,omitempty"`

	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	Approval        enums.ApprovalStatus `json:"approval_status"`
	ApprovalReqID   string               `json:"approval_request_id,omitempty"`

	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaperSize     enums.PaperSize     `json:"paper_size"`

	// TotalOverridden is set when the operator typed a final total directly
	// and the discount percent was back-solved from it. It holds until the
	// next change to the cart contents or the discount.
	TotalOverridden bool       `json:"total_overridden"`
	Totals          tax.Totals `json:"totals"`

	rules Rules
}

// NewCart returns an empty cart for the given store under the given rules.
func NewCart(tabID, storeID uuid.UUID, rules Rules) Cart {
	c := Cart{
		TabID:         tabID,
		StoreID:       storeID,
		CustomerName:  rules.WalkInCustomerName,
		Approval:      enums.ApprovalStatusNotRequired,
		PaymentMethod: enums.PaymentMethodCash,
		PaperSize:     enums.PaperSizeThermal80,
		rules:         rules,
	}
	c.Totals = tax.Totals{}
	return c
}

// Rules returns the policies the cart was created with.
func (c Cart) Rules() Rules { return c.rules }

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// RequiresApproval reports whether the current discount percent is above the
// approval threshold.
func (c Cart) RequiresApproval() bool {
	return c.DiscountPercent.GreaterThan(c.rules.ApprovalThreshold)
}

// Quantity returns the quantity of the given product across the cart. Lines
// for the same product are merged on add, so this is a single line's count.
func (c Cart) Quantity(productID uuid.UUID) int {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// AddItem adds quantity units of the product to the cart, merging into an
// existing line for the same product. When fewer units than requested fit
// under the live stock count, the addable portion is added and a
// NoticeStockLimited is returned with the operation still succeeding. Zero
// stock and an already-at-cap line are hard errors.
func (c Cart) AddItem(p ProductInfo, quantity int) (Cart, *Notice, error) {
	if quantity <= 0 {
		return c, nil, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if p.Stock <= 0 {
		return c, nil, errors.New(errors.CodeOutOfStock,
			fmt.Sprintf("%s is out of stock", p.Name))
	}

	inCart := c.Quantity(p.ID)
	addable := p.Stock - inCart
	if addable <= 0 {
		return c, nil, errors.New(errors.CodeStockLimit,
			fmt.Sprintf("all %d units of %s are already in the cart", p.Stock, p.Name))
	}

	added := quantity
	var notice *Notice
	if added > addable {
		added = addable
		notice = &Notice{
			Kind:      NoticeStockLimited,
			Message:   fmt.Sprintf("only %d of %d requested units of %s added, stock limit reached", added, quantity, p.Name),
			ProductID: p.ID,
			Requested: quantity,
			Applied:   added,
		}
	}

	base := tax.BasePriceFromSelling(p.SellingPrice, p.TaxRatePercent)

	merged := false
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	for i := range lines {
		if lines[i].ProductID == p.ID {
			lines[i].Quantity += added
			lines[i].Subtotal = tax.LineSubtotal(lines[i].BasePrice, lines[i].Quantity)
			merged = true
			if notice != nil {
				notice.LineID = lines[i].ID
			}
			break
		}
	}
	if !merged {
		line := Line{
			ID:             uuid.New(),
			ProductID:      p.ID,
			Name:           p.Name,
			Barcode:        p.Barcode,
			HSNCode:        p.HSNCode,
			Quantity:       added,
			SellingPrice:   p.SellingPrice,
			BasePrice:      base,
			TaxRatePercent: p.TaxRatePercent,
			Subtotal:       tax.LineSubtotal(base, added),
		}
		lines = append(lines, line)
		if notice != nil {
			notice.LineID = line.ID
		}
	}

	c.Lines = lines
	return c.recomputed(), notice, nil
}

// RemoveItem removes the line with the given id. Removing a line that is not
// in the cart is a no-op.
func (c Cart) RemoveItem(lineID uuid.UUID) Cart {
	lines := make([]Line, 0, len(c.Lines))
	removed := false
	for _, l := range c.Lines {
		if l.ID == lineID {
			removed = true
			continue
		}
		lines = append(lines, l)
	}
	if !removed {
		return c
	}
	c.Lines = lines
	return c.recomputed()
}

// SetQuantity sets the line to the given quantity, capped at the live stock
// count with a NoticeStockLimited when the cap bites. Zero or negative
// quantity removes the line. An unknown line id is a no-op.
func (c Cart) SetQuantity(lineID uuid.UUID, quantity, stock int) (Cart, *Notice) {
	if quantity <= 0 {
		return c.RemoveItem(lineID), nil
	}

	idx := -1
	for i, l := range c.Lines {
		if l.ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return c, nil
	}

	applied := quantity
	var notice *Notice
	if stock < applied {
		applied = stock
		notice = &Notice{
			Kind:      NoticeStockLimited,
			Message:   fmt.Sprintf("quantity for %s capped at %d, stock limit reached", c.Lines[idx].Name, applied),
			LineID:    lineID,
			ProductID: c.Lines[idx].ProductID,
			Requested: quantity,
			Applied:   applied,
		}
	}
	if applied <= 0 {
		return c.RemoveItem(lineID), notice
	}

	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	lines[idx].Quantity = applied
	lines[idx].Subtotal = tax.LineSubtotal(lines[idx].BasePrice, applied)
	c.Lines = lines
	return c.recomputed(), notice
}

// SetDiscount sets the order-level discount percent, clamped to [0, 100].
// Changing the percent invalidates any prior approval state: a pending or
// decided request no longer describes the cart, so the status falls back to
// not-required and a fresh request must be raised at save time. Crossing the
// threshold upward returns a NoticeApprovalRequired.
func (c Cart) SetDiscount(percent decimal.Decimal) (Cart, *Notice) {
	percent = clampPercent(percent)
	if percent.Equal(c.DiscountPercent) {
		return c, nil
	}

	wasAbove := c.RequiresApproval()
	c.DiscountPercent = percent
	c.Approval = enums.ApprovalStatusNotRequired
	c.ApprovalReqID = ""

	var notice *Notice
	if !wasAbove && c.RequiresApproval() {
		notice = &Notice{
			Kind:    NoticeApprovalRequired,
			Message: fmt.Sprintf("discount of %s%% requires manager approval before saving", percent.StringFixed(2)),
		}
	}
	return c.recomputed(), notice
}

// OverrideTotal sets the final payable amount directly and back-solves the
// implied order discount from it. The given total is pinned until the next
// content or discount change; the derived percent goes through the same
// approval invalidation as SetDiscount.
func (c Cart) OverrideTotal(total decimal.Decimal) (Cart, *Notice, error) {
	if c.IsEmpty() {
		return c, nil, errors.New(errors.CodeEmptyCart, "cannot override the total of an empty cart")
	}
	if total.IsNegative() {
		return c, nil, errors.New(errors.CodeValidation, "total must not be negative")
	}

	subtotal := tax.CartSubtotal(c.lineSubtotals())
	if !subtotal.IsPositive() {
		return c, nil, errors.New(errors.CodeValidation, "cart subtotal must be positive to override the total")
	}

	// total = (subtotal - discount) + tax, with tax proportional to the
	// undiscounted base. Solving for the discount fraction f:
	//   total = (1 - f) * (subtotal + fullTax)
	fullTax := decimal.Zero
	for _, l := range c.Lines {
		fullTax = fullTax.Add(tax.PerLineTax(l.Subtotal, l.TaxRatePercent, decimal.Zero).Total)
	}
	gross := subtotal.Add(fullTax)
	implied := decimal.NewFromInt(1).
		Sub(total.DivRound(gross, 8)).
		Mul(decimal.NewFromInt(100))

	out, notice := c.SetDiscount(tax.Round2(implied))
	out.TotalOverridden = true
	out.Totals.FinalTotal = total.Round(0).IntPart()
	return out, notice, nil
}

// SetCustomer attaches a customer to the cart, or resets to the walk-in
// default when id is nil and name is empty.
func (c Cart) SetCustomer(id *uuid.UUID, name, phone string) Cart {
	if id == nil && name == "" {
		c.CustomerID = nil
		c.CustomerName = c.rules.WalkInCustomerName
		c.CustomerPhone = ""
		return c
	}
	c.CustomerID = id
	c.CustomerName = name
	c.CustomerPhone = phone
	return c
}

// SetPaymentMethod records how the bill will be settled.
func (c Cart) SetPaymentMethod(m enums.PaymentMethod) Cart {
	c.PaymentMethod = m
	return c
}

// SetPaperSize records the receipt format for this bill.
func (c Cart) SetPaperSize(s enums.PaperSize) Cart {
	c.PaperSize = s
	return c
}

// WithApproval records the approval request id and status on the cart. Used
// by the save flow when a request is raised and by the poller when the
// decision lands.
func (c Cart) WithApproval(requestID string, status enums.ApprovalStatus) Cart {
	c.ApprovalReqID = requestID
	c.Approval = status
	return c
}

// Clear returns an empty cart with the same tab, store, and rules.
func (c Cart) Clear() Cart {
	return NewCart(c.TabID, c.StoreID, c.rules)
}

// Reconcile trims the cart against an authoritative stock map. Lines whose
// product no longer has stock are dropped; lines over the new count are
// capped. Products missing from the map are left untouched. The second
// return lists what changed; the third reports whether anything did.
func (c Cart) Reconcile(stock map[uuid.UUID]int) (Cart, []Notice, bool) {
	var notices []Notice
	changed := false
	lines := make([]Line, 0, len(c.Lines))

	for _, l := range c.Lines {
		avail, ok := stock[l.ProductID]
		if !ok {
			lines = append(lines, l)
			continue
		}
		switch {
		case avail <= 0:
			changed = true
			notices = append(notices, Notice{
				Kind:      NoticeLineDropped,
				Message:   fmt.Sprintf("%s removed from cart, out of stock", l.Name),
				LineID:    l.ID,
				ProductID: l.ProductID,
				Requested: l.Quantity,
			})
		case avail < l.Quantity:
			changed = true
			notices = append(notices, Notice{
				Kind:      NoticeStockLimited,
				Message:   fmt.Sprintf("quantity for %s reduced to %d, stock limit reached", l.Name, avail),
				LineID:    l.ID,
				ProductID: l.ProductID,
				Requested: l.Quantity,
				Applied:   avail,
			})
			l.Quantity = avail
			l.Subtotal = tax.LineSubtotal(l.BasePrice, avail)
			lines = append(lines, l)
		default:
			lines = append(lines, l)
		}
	}

	if !changed {
		return c, nil, false
	}
	c.Lines = lines
	return c.recomputed(), notices, true
}

func (c Cart) lineSubtotals() []decimal.Decimal {
	subs := make([]decimal.Decimal, len(c.Lines))
	for i, l := range c.Lines {
		subs[i] = l.Subtotal
	}
	return subs
}

// recomputed rebuilds the totals from the lines and discount. Any pinned
// override is released, since the inputs it was solved from have changed.
func (c Cart) recomputed() Cart {
	taxLines := make([]tax.Line, len(c.Lines))
	for i, l := range c.Lines {
		taxLines[i] = l.taxLine()
	}
	c.Totals = tax.ComputeTotals(taxLines, c.DiscountPercent)
	c.TotalOverridden = false
	return c
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

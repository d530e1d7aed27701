package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
)

func testRules() Rules {
	return Rules{
		ApprovalThreshold:  decimal.NewFromInt(10),
		WalkInCustomerName: "Walk-in Customer",
	}
}

func testCart() Cart {
	return NewCart(uuid.New(), uuid.New(), testRules())
}

func ring(t *testing.T, price string, rate string, stock int) ProductInfo {
	t.Helper()
	return ProductInfo{
		ID:             uuid.New(),
		Name:           "Gold Ring",
		Stock:          stock,
		SellingPrice:   decimal.RequireFromString(price),
		TaxRatePercent: decimal.RequireFromString(rate),
	}
}

func TestAddItemComputesTotals(t *testing.T) {
	t.Parallel()

	cart, notice, err := testCart().AddItem(ring(t, "118", "18", 10), 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if notice != nil {
		t.Fatalf("unexpected notice: %+v", notice)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}

	line := cart.Lines[0]
	if got := line.BasePrice.StringFixed(2); got != "100.00" {
		t.Fatalf("base price = %s, want 100.00", got)
	}
	if got := line.Subtotal.StringFixed(2); got != "200.00" {
		t.Fatalf("line subtotal = %s, want 200.00", got)
	}
	if got := cart.Totals.TotalTax.StringFixed(2); got != "36.00" {
		t.Fatalf("total tax = %s, want 36.00", got)
	}
	if cart.Totals.FinalTotal != 236 {
		t.Fatalf("final total = %d, want 236", cart.Totals.FinalTotal)
	}
}

func TestAddItemMergesSameProduct(t *testing.T) {
	t.Parallel()

	p := ring(t, "118", "18", 10)
	cart, _, err := testCart().AddItem(p, 2)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, _, err = cart.AddItem(p, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", cart.Lines[0].Quantity)
	}
	if got := cart.Lines[0].Subtotal.StringFixed(2); got != "500.00" {
		t.Fatalf("subtotal = %s, want 500.00", got)
	}
}

func TestAddItemOutOfStock(t *testing.T) {
	t.Parallel()

	_, _, err := testCart().AddItem(ring(t, "118", "18", 0), 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeOutOfStock) {
		t.Fatalf("expected OUT_OF_STOCK, got %v", err)
	}
}

func TestAddItemPartialAddWithNotice(t *testing.T) {
	t.Parallel()

	cart, notice, err := testCart().AddItem(ring(t, "118", "18", 3), 5)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if notice == nil || notice.Kind != NoticeStockLimited {
		t.Fatalf("expected stock limited notice, got %+v", notice)
	}
	if notice.Requested != 5 || notice.Applied != 3 {
		t.Fatalf("notice counts = %d/%d, want 5/3", notice.Requested, notice.Applied)
	}
	if cart.Lines[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", cart.Lines[0].Quantity)
	}
}

func TestAddItemAtStockCapFails(t *testing.T) {
	t.Parallel()

	p := ring(t, "118", "18", 3)
	cart, _, err := testCart().AddItem(p, 3)
	if err != nil {
		t.Fatalf("add to cap: %v", err)
	}
	_, _, err = cart.AddItem(p, 1)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStockLimit) {
		t.Fatalf("expected STOCK_LIMIT_REACHED, got %v", err)
	}
}

func TestRemoveItemIdempotent(t *testing.T) {
	t.Parallel()

	cart, _, err := testCart().AddItem(ring(t, "118", "18", 10), 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	lineID := cart.Lines[0].ID

	cart = cart.RemoveItem(lineID)
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart after remove")
	}
	if cart.Totals.FinalTotal != 0 {
		t.Fatalf("final total = %d, want 0", cart.Totals.FinalTotal)
	}

	again := cart.RemoveItem(lineID)
	if !again.IsEmpty() {
		t.Fatal("second remove should be a no-op")
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	cart, _, err := testCart().AddItem(ring(t, "118", "18", 10), 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	cart, notice := cart.SetQuantity(cart.Lines[0].ID, 0, 10)
	if notice != nil {
		t.Fatalf("unexpected notice: %+v", notice)
	}
	if !cart.IsEmpty() {
		t.Fatal("expected line removed")
	}
}

func TestSetQuantityCappedAtStock(t *testing.T) {
	t.Parallel()

	cart, _, err := testCart().AddItem(ring(t, "118", "18", 10), 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	cart, notice := cart.SetQuantity(cart.Lines[0].ID, 8, 4)
	if notice == nil || notice.Kind != NoticeStockLimited {
		t.Fatalf("expected stock limited notice, got %+v", notice)
	}
	if cart.Lines[0].Quantity != 4 {
		t.Fatalf("quantity = %d, want 4", cart.Lines[0].Quantity)
	}
}

func TestSetDiscountRecomputesTotals(t *testing.T) {
	t.Parallel()

	cart, _, err := testCart().AddItem(ring(t, "118", "18", 10), 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	cart, notice := cart.SetDiscount(decimal.NewFromInt(5))
	if notice != nil {
		t.Fatalf("unexpected notice at 5%%: %+v", notice)
	}
	if got := cart.Totals.DiscountAmount.StringFixed(2); got != "10.00" {
		t.Fatalf("discount = %s, want 10.00", got)
	}
	if got := cart.Totals.TaxableAmount.StringFixed(2); got != "190.00" {
		t.Fatalf("taxable = %s, want 190.00", got)
	}
	if cart.Totals.FinalTotal != 224 {
		t.Fatalf("final total = %d, want 224", cart.Totals.FinalTotal)
	}
}

func TestSetDiscountClampsToRange(t *testing.T) {
	t.Parallel()

	base, _, err := testCart().AddItem(ring(t, "118", "18", 10), 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	cart, _ := base.SetDiscount(decimal.NewFromInt(150))
	if !cart.DiscountPercent.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("percent = %s, want 100", cart.DiscountPercent)
	}
	if cart.Totals.FinalTotal != 0 {
		t.Fatalf("final total = %d, want 0 at full discount", cart.Totals.FinalTotal)
	}

	cart, _ = base.SetDiscount(decimal.NewFromInt(-5))
	if !cart.DiscountPercent.IsZero() {
		t.Fatalf("percent = %s, want 0", cart.DiscountPercent)
	}
}

func TestSetDiscountCrossingThresholdNotifies(t *testing.T) {
	t.Parallel()

	cart, _, err := testCart().AddItem(ring(t, "118", "18", 10), 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	cart, notice := cart.SetDiscount(decimal.NewFromInt(15))
	if notice == nil || notice.Kind != NoticeApprovalRequired {
		t.Fatalf("expected approval notice, got %+v", notice)
	}
	if !cart.RequiresApproval() {
		t.Fatal("expected approval required at 15%")
	}

	// Exactly the threshold does not need approval.
	cart, _ = cart.SetDiscount(decimal.NewFromInt(10))
	if cart.RequiresApproval() {
		t.Fatal("10% should not require approval")
	}
}

func TestSetDiscountInvalidatesApprovalState(t *testing.T) {
	t.Parallel()

	cart, _, err := testCart().AddItem(ring(t, "118", "18", 10), 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	cart, _ = cart.SetDiscount(decimal.NewFromInt(15))
	cart = cart.WithApproval("DISC-abc123def456", enums.ApprovalStatusApproved)

	cart, _ = cart.SetDiscount(decimal.NewFromInt(20))
	if cart.Approval != enums.ApprovalStatusNotRequired {
		t.Fatalf("approval = %s, want reset to not_required", cart.Approval)
	}
	if cart.ApprovalReqID != "" {
		t.Fatalf("request id should be cleared, got %s", cart.ApprovalReqID)
	}
}

func TestOverrideTotalBackSolvesDiscount(t *testing.T) {
	t.Parallel()

	cart, _, err := testCart().AddItem(ring(t, "118", "18", 10), 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	// Natural total is 236; pin 224 and the implied discount is ~5.08%.
	cart, _, err = cart.OverrideTotal(decimal.NewFromInt(224))
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if !cart.TotalOverridden {
		t.Fatal("expected override flag set")
	}
	if cart.Totals.FinalTotal != 224 {
		t.Fatalf("final total = %d, want pinned 224", cart.Totals.FinalTotal)
	}
	if got := cart.DiscountPercent.StringFixed(2); got != "5.08" {
		t.Fatalf("implied discount = %s, want 5.08", got)
	}
}

func TestOverrideTotalReleasedOnContentChange(t *testing.T) {
	t.Parallel()

	p := ring(t, "118", "18", 10)
	cart, _, err := testCart().AddItem(p, 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	cart, _, err = cart.OverrideTotal(decimal.NewFromInt(230))
	if err != nil {
		t.Fatalf("override: %v", err)
	}

	cart, _, err = cart.AddItem(p, 1)
	if err != nil {
		t.Fatalf("add after override: %v", err)
	}
	if cart.TotalOverridden {
		t.Fatal("override should be released on content change")
	}
}

func TestOverrideTotalEmptyCart(t *testing.T) {
	t.Parallel()

	_, _, err := testCart().OverrideTotal(decimal.NewFromInt(100))
	if !pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected EMPTY_CART, got %v", err)
	}
}

func TestSetCustomerResetToWalkIn(t *testing.T) {
	t.Parallel()

	cart := testCart()
	id := uuid.New()
	cart = cart.SetCustomer(&id, "Priya Sharma", "9876543210")
	if cart.CustomerName != "Priya Sharma" {
		t.Fatalf("name = %s", cart.CustomerName)
	}

	cart = cart.SetCustomer(nil, "", "")
	if cart.CustomerName != "Walk-in Customer" || cart.CustomerID != nil {
		t.Fatalf("expected walk-in reset, got %s", cart.CustomerName)
	}
}

func TestClearKeepsTabIdentity(t *testing.T) {
	t.Parallel()

	cart, _, err := testCart().AddItem(ring(t, "118", "18", 10), 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	cleared := cart.Clear()
	if !cleared.IsEmpty() {
		t.Fatal("expected empty cart")
	}
	if cleared.TabID != cart.TabID || cleared.StoreID != cart.StoreID {
		t.Fatal("clear must keep tab and store ids")
	}
}

func TestReconcileCapsAndDrops(t *testing.T) {
	t.Parallel()

	gold := ring(t, "118", "18", 10)
	chain := ProductInfo{
		ID:             uuid.New(),
		Name:           "Silver Chain",
		Stock:          5,
		SellingPrice:   decimal.RequireFromString("210"),
		TaxRatePercent: decimal.RequireFromString("5"),
	}

	cart, _, err := testCart().AddItem(gold, 4)
	if err != nil {
		t.Fatalf("add gold: %v", err)
	}
	cart, _, err = cart.AddItem(chain, 3)
	if err != nil {
		t.Fatalf("add chain: %v", err)
	}

	next, notices, changed := cart.Reconcile(map[uuid.UUID]int{
		gold.ID:  2,
		chain.ID: 0,
	})
	if !changed {
		t.Fatal("expected reconcile to report changes")
	}
	if len(next.Lines) != 1 {
		t.Fatalf("expected chain dropped, got %d lines", len(next.Lines))
	}
	if next.Lines[0].Quantity != 2 {
		t.Fatalf("gold quantity = %d, want capped 2", next.Lines[0].Quantity)
	}
	if len(notices) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(notices))
	}

	// Totals follow the trimmed lines.
	if got := next.Totals.Subtotal.StringFixed(2); got != "200.00" {
		t.Fatalf("subtotal = %s, want 200.00", got)
	}
}

func TestReconcileNoChangeKeepsCart(t *testing.T) {
	t.Parallel()

	gold := ring(t, "118", "18", 10)
	cart, _, err := testCart().AddItem(gold, 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	next, notices, changed := cart.Reconcile(map[uuid.UUID]int{gold.ID: 10})
	if changed || len(notices) != 0 {
		t.Fatalf("expected no-op reconcile, changed=%v notices=%d", changed, len(notices))
	}
	if next.Totals.FinalTotal != cart.Totals.FinalTotal {
		t.Fatal("totals must be unchanged")
	}
}

func TestReconcileMissingProductUntouched(t *testing.T) {
	t.Parallel()

	gold := ring(t, "118", "18", 10)
	cart, _, err := testCart().AddItem(gold, 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	_, _, changed := cart.Reconcile(map[uuid.UUID]int{uuid.New(): 0})
	if changed {
		t.Fatal("unknown products must not affect the cart")
	}
}

package tax

import "github.com/shopspring/decimal"

// All intermediate currency values are rounded to 2 decimals to mirror what
// the billing screen displays; only the grand total is rounded to a whole
// rupee. Aggregate tax figures are sums of per-line values, never a single
// blended computation on the cart-level taxable amount, so that carts mixing
// tax rates do not accumulate rounding drift.

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// Round2 rounds to 2 decimal places, the display precision for currency.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// BasePriceFromSelling strips tax from a tax-inclusive selling price. This is
// applied exactly once, at add-to-cart time; the cart stores tax-exclusive
// unit prices from then on.
func BasePriceFromSelling(sellingPrice, taxRatePercent decimal.Decimal) decimal.Decimal {
	divisor := decimal.NewFromInt(1).Add(taxRatePercent.Div(hundred))
	return Round2(sellingPrice.DivRound(divisor, 8))
}

// LineSubtotal is the rounded extended price of one cart line.
func LineSubtotal(basePrice decimal.Decimal, quantity int) decimal.Decimal {
	return Round2(basePrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// CartSubtotal sums already-rounded line subtotals.
func CartSubtotal(subtotals []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range subtotals {
		sum = sum.Add(s)
	}
	return Round2(sum)
}

// DiscountAmount converts a discount percent into a currency amount.
func DiscountAmount(subtotal, discountPercent decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Mul(discountPercent).Div(hundred))
}

// TaxableAmount is the post-discount base on which tax is computed.
func TaxableAmount(subtotal, discountAmount decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Sub(discountAmount))
}

// LineTax is the tax contribution of a single line.
type LineTax struct {
	CGST  decimal.Decimal
	SGST  decimal.Decimal
	Total decimal.Decimal
}

// PerLineTax applies the line's proportional share of the cart discount, then
// computes its tax and splits it evenly into CGST and SGST.
func PerLineTax(lineSubtotal, taxRatePercent, discountPercent decimal.Decimal) LineTax {
	lineDiscount := Round2(lineSubtotal.Mul(discountPercent).Div(hundred))
	lineTaxable := Round2(lineSubtotal.Sub(lineDiscount))
	total := Round2(lineTaxable.Mul(taxRatePercent).Div(hundred))
	half := Round2(total.Div(two))
	return LineTax{CGST: half, SGST: half, Total: total}
}

// FinalTotal rounds to the nearest whole currency unit; the only place integer
// rounding applies.
func FinalTotal(taxableAmount, totalTax decimal.Decimal) int64 {
	return taxableAmount.Add(totalTax).Round(0).IntPart()
}

// Line is the minimal shape the engine needs from a cart line.
type Line struct {
	Subtotal       decimal.Decimal
	TaxRatePercent decimal.Decimal
}

// Totals is every derived figure for a cart at a given discount.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	CGST           decimal.Decimal
	SGST           decimal.Decimal
	TotalTax       decimal.Decimal
	FinalTotal     int64
}

// ComputeTotals derives the full invoice arithmetic for the given lines and
// discount percent.
func ComputeTotals(lines []Line, discountPercent decimal.Decimal) Totals {
	subtotals := make([]decimal.Decimal, 0, len(lines))
	for _, line := range lines {
		subtotals = append(subtotals, line.Subtotal)
	}
	subtotal := CartSubtotal(subtotals)
	discount := DiscountAmount(subtotal, discountPercent)
	taxable := TaxableAmount(subtotal, discount)

	cgst := decimal.Zero
	sgst := decimal.Zero
	totalTax := decimal.Zero
	for _, line := range lines {
		lt := PerLineTax(line.Subtotal, line.TaxRatePercent, discountPercent)
		cgst = cgst.Add(lt.CGST)
		sgst = sgst.Add(lt.SGST)
		totalTax = totalTax.Add(lt.Total)
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		CGST:           Round2(cgst),
		SGST:           Round2(sgst),
		TotalTax:       Round2(totalTax),
		FinalTotal:     FinalTotal(taxable, Round2(totalTax)),
	}
}

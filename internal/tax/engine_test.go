package tax

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBasePriceFromSellingRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		selling string
		rate    string
	}{
		{"118", "18"},
		{"100", "0"},
		{"59999", "3"},
		{"1499.50", "12"},
		{"42750", "5"},
	}

	for _, tc := range cases {
		selling := dec(tc.selling)
		rate := dec(tc.rate)
		base := BasePriceFromSelling(selling, rate)

		back := base.Mul(decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100))))
		diff := back.Sub(selling).Abs()
		if diff.GreaterThan(dec("0.01")) {
			t.Fatalf("selling %s rate %s: round trip off by %s", tc.selling, tc.rate, diff)
		}
	}
}

func TestBasePriceZeroRateEqualsSelling(t *testing.T) {
	t.Parallel()

	if got := BasePriceFromSelling(dec("250.00"), decimal.Zero); !got.Equal(dec("250.00")) {
		t.Fatalf("expected 250.00, got %s", got)
	}
}

func TestScenarioAZeroDiscount(t *testing.T) {
	t.Parallel()

	// one line, ₹118 tax-inclusive at 18%, qty 2
	base := BasePriceFromSelling(dec("118"), dec("18"))
	if !base.Equal(dec("100")) {
		t.Fatalf("base price: expected 100, got %s", base)
	}
	sub := LineSubtotal(base, 2)
	if !sub.Equal(dec("200")) {
		t.Fatalf("line subtotal: expected 200, got %s", sub)
	}

	totals := ComputeTotals([]Line{{Subtotal: sub, TaxRatePercent: dec("18")}}, decimal.Zero)
	if !totals.TaxableAmount.Equal(dec("200")) {
		t.Fatalf("taxable: expected 200, got %s", totals.TaxableAmount)
	}
	if !totals.TotalTax.Equal(dec("36")) {
		t.Fatalf("tax: expected 36, got %s", totals.TotalTax)
	}
	if !totals.CGST.Equal(dec("18")) || !totals.SGST.Equal(dec("18")) {
		t.Fatalf("expected CGST=SGST=18, got %s/%s", totals.CGST, totals.SGST)
	}
	if totals.FinalTotal != 236 {
		t.Fatalf("final total: expected 236, got %d", totals.FinalTotal)
	}
}

func TestScenarioBFivePercentDiscount(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals([]Line{{Subtotal: dec("200"), TaxRatePercent: dec("18")}}, dec("5"))
	if !totals.DiscountAmount.Equal(dec("10")) {
		t.Fatalf("discount: expected 10, got %s", totals.DiscountAmount)
	}
	if !totals.TaxableAmount.Equal(dec("190")) {
		t.Fatalf("taxable: expected 190, got %s", totals.TaxableAmount)
	}
	if !totals.TotalTax.Equal(dec("34.20")) {
		t.Fatalf("tax: expected 34.20, got %s", totals.TotalTax)
	}
	if totals.FinalTotal != 224 {
		t.Fatalf("final total: expected 224, got %d", totals.FinalTotal)
	}
}

func TestFullDiscountZeroesEverything(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals([]Line{
		{Subtotal: dec("200"), TaxRatePercent: dec("18")},
		{Subtotal: dec("99.99"), TaxRatePercent: dec("3")},
	}, dec("100"))

	if !totals.TaxableAmount.IsZero() {
		t.Fatalf("taxable should be 0, got %s", totals.TaxableAmount)
	}
	if !totals.TotalTax.IsZero() {
		t.Fatalf("tax should be 0, got %s", totals.TotalTax)
	}
	if totals.FinalTotal != 0 {
		t.Fatalf("final total should be 0, got %d", totals.FinalTotal)
	}
}

func TestEmptyCartIsAllZero(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(nil, dec("5"))
	if !totals.Subtotal.IsZero() || !totals.TotalTax.IsZero() || totals.FinalTotal != 0 {
		t.Fatalf("empty cart should produce zeroes, got %+v", totals)
	}
}

func TestCGSTEqualsSGSTForUniformRate(t *testing.T) {
	t.Parallel()

	lines := []Line{
		{Subtotal: dec("123.45"), TaxRatePercent: dec("18")},
		{Subtotal: dec("67.89"), TaxRatePercent: dec("18")},
		{Subtotal: dec("1000.01"), TaxRatePercent: dec("18")},
	}
	for _, discount := range []string{"0", "5", "10", "33.33", "99"} {
		totals := ComputeTotals(lines, dec(discount))
		if !totals.CGST.Equal(totals.SGST) {
			t.Fatalf("discount %s: CGST %s != SGST %s", discount, totals.CGST, totals.SGST)
		}
	}
}

func TestAggregateTaxIsSumOfPerLineValues(t *testing.T) {
	t.Parallel()

	// mixed rates: summing per-line tax must match the aggregate exactly
	lines := []Line{
		{Subtotal: dec("333.33"), TaxRatePercent: dec("3")},
		{Subtotal: dec("250.00"), TaxRatePercent: dec("18")},
		{Subtotal: dec("99.95"), TaxRatePercent: dec("12")},
	}
	discount := dec("7")

	want := decimal.Zero
	for _, line := range lines {
		want = want.Add(PerLineTax(line.Subtotal, line.TaxRatePercent, discount).Total)
	}

	totals := ComputeTotals(lines, discount)
	if !totals.TotalTax.Equal(Round2(want)) {
		t.Fatalf("aggregate tax %s != per-line sum %s", totals.TotalTax, want)
	}
}

func TestTaxableAmountMatchesSpecFormula(t *testing.T) {
	t.Parallel()

	for _, discount := range []string{"0", "1", "9.5", "50", "100"} {
		sub := dec("1234.56")
		d := dec(discount)
		totals := ComputeTotals([]Line{{Subtotal: sub, TaxRatePercent: dec("18")}}, d)
		want := Round2(sub.Sub(Round2(sub.Mul(d).Div(decimal.NewFromInt(100)))))
		if !totals.TaxableAmount.Equal(want) {
			t.Fatalf("discount %s: taxable %s != %s", discount, totals.TaxableAmount, want)
		}
	}
}

func TestFinalTotalIsNonNegativeInteger(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals([]Line{{Subtotal: dec("0.40"), TaxRatePercent: dec("18")}}, dec("99")) // tiny cart
	if totals.FinalTotal < 0 {
		t.Fatalf("final total must never be negative, got %d", totals.FinalTotal)
	}
}

// Package printing renders finalized bills into plain-text receipts for the
// supported paper sizes. The numbers come straight off the bill; layout is
// best effort and printers are free to reflow it.
package printing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
)

// Renderer turns a saved bill into printable output.
type Renderer interface {
	Render(bill *models.Bill, store *models.Store, size enums.PaperSize) (string, error)
}

type textRenderer struct{}

// NewTextRenderer returns the monospaced receipt renderer.
func NewTextRenderer() Renderer {
	return &textRenderer{}
}

func widthFor(size enums.PaperSize) (int, error) {
	switch size {
	case enums.PaperSizeThermal58:
		return 32, nil
	case enums.PaperSizeThermal80:
		return 48, nil
	case enums.PaperSizeA4, enums.PaperSizeLetter:
		return 80, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported paper size %q", size))
	}
}

func (r *textRenderer) Render(bill *models.Bill, store *models.Store, size enums.PaperSize) (string, error) {
	if bill == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "bill required")
	}
	width, err := widthFor(size)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	rule := strings.Repeat("-", width)

	if store != nil {
		writeCentered(&b, store.Name, width)
		if store.Address != "" {
			writeCentered(&b, store.Address, width)
		}
		if store.Phone != "" {
			writeCentered(&b, "Ph: "+store.Phone, width)
		}
		if store.GSTIN != "" {
			writeCentered(&b, "GSTIN: "+store.GSTIN, width)
		}
		b.WriteString(rule + "\n")
	}

	writeRow(&b, "Invoice", bill.ID, width)
	writeRow(&b, "Date", bill.CreatedAt.Format("02/01/2006 15:04"), width)
	writeRow(&b, "Customer", bill.CustomerName, width)
	if bill.CustomerPhone != "" {
		writeRow(&b, "Phone", bill.CustomerPhone, width)
	}
	b.WriteString(rule + "\n")

	for _, item := range bill.Items {
		b.WriteString(clip(item.Name, width) + "\n")
		qty := fmt.Sprintf("%d x %s", item.Quantity, item.SellingPrice.StringFixed(2))
		writeRow(&b, "  "+qty, lineTotal(item).StringFixed(2), width)
		if item.HSNCode != "" {
			b.WriteString(clip("  HSN "+item.HSNCode, width) + "\n")
		}
	}
	b.WriteString(rule + "\n")

	writeRow(&b, "Subtotal", bill.Subtotal.StringFixed(2), width)
	if bill.DiscountPercent.IsPositive() {
		label := fmt.Sprintf("Discount (%s%%)", bill.DiscountPercent.StringFixed(2))
		writeRow(&b, label, "-"+bill.DiscountAmount.StringFixed(2), width)
		writeRow(&b, "Taxable", bill.TaxableAmount.StringFixed(2), width)
	}
	writeRow(&b, "CGST", bill.CGST.StringFixed(2), width)
	writeRow(&b, "SGST", bill.SGST.StringFixed(2), width)
	writeRow(&b, "TOTAL", fmt.Sprintf("%d.00", bill.Total), width)
	b.WriteString(rule + "\n")

	writeRow(&b, "Paid by", strings.ToUpper(string(bill.PaymentMethod)), width)
	writeCentered(&b, "Thank you, visit again!", width)

	return b.String(), nil
}

// lineTotal is the tax-inclusive amount charged for the line.
func lineTotal(item models.BillItem) decimal.Decimal {
	return item.SellingPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
}

func writeCentered(b *strings.Builder, text string, width int) {
	text = clip(text, width)
	pad := (width - len(text)) / 2
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(text + "\n")
}

// writeRow left-aligns the label and right-aligns the value on one line,
// splitting onto two lines when they cannot both fit.
func writeRow(b *strings.Builder, label, value string, width int) {
	gap := width - len(label) - len(value)
	if gap < 1 {
		b.WriteString(clip(label, width) + "\n")
		gap = width - len(value)
		if gap < 0 {
			gap = 0
		}
		b.WriteString(strings.Repeat(" ", gap) + value + "\n")
		return
	}
	b.WriteString(label + strings.Repeat(" ", gap) + value + "\n")
}

func clip(text string, width int) string {
	if len(text) <= width {
		return text
	}
	return text[:width]
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillItem is an invoice line copied from the cart at finalize time.
type BillItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BillID         string          `gorm:"column:bill_id;not null;index" json:"bill_id"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Name           string          `gorm:"column:name;not null" json:"name"`
	Quantity       int             `gorm:"column:quantity;not null" json:"quantity"`
	BasePrice      decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null" json:"base_price"`
	SellingPrice   decimal.Decimal `gorm:"column:selling_price;type:numeric(12,2);not null" json:"selling_price"`
	TaxRatePercent decimal.Decimal `gorm:"column:tax_rate_percent;type:numeric(5,2);not null;default:0" json:"tax_rate_percent"`
	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	CGST           decimal.Decimal `gorm:"column:cgst;type:numeric(12,2);not null;default:0" json:"cgst"`
	SGST           decimal.Decimal `gorm:"column:sgst;type:numeric(12,2);not null;default:0" json:"sgst"`
	Barcode        string          `gorm:"column:barcode" json:"barcode,omitempty"`
	HSNCode        string          `gorm:"column:hsn_code" json:"hsn_code,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (BillItem) TableName() string { return "bill_items" }

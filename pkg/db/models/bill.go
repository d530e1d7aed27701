package models

import (
	"time"

	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill is the persisted, immutable tax invoice. Rows are written once when a
// tab is finalized; corrections go through returns, never updates.
type Bill struct {
	ID                string              `gorm:"column:id;primaryKey" json:"id"`
	StoreID           uuid.UUID           `gorm:"column:store_id;type:uuid;not null" json:"store_id"`
	CustomerID        *uuid.UUID          `gorm:"column:customer_id;type:uuid" json:"customer_id,omitempty"`
	CustomerName      string              `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerPhone     string              `gorm:"column:customer_phone" json:"customer_phone"`
	Subtotal          decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	DiscountPercent   decimal.Decimal     `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0" json:"discount_percent"`
	DiscountAmount    decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0" json:"discount_amount"`
	TaxableAmount     decimal.Decimal     `gorm:"column:taxable_amount;type:numeric(12,2);not null" json:"taxable_amount"`
	CGST              decimal.Decimal     `gorm:"column:cgst;type:numeric(12,2);not null;default:0" json:"cgst"`
	SGST              decimal.Decimal     `gorm:"column:sgst;type:numeric(12,2);not null;default:0" json:"sgst"`
	TotalTax          decimal.Decimal     `gorm:"column:total_tax;type:numeric(12,2);not null;default:0" json:"total_tax"`
	Total             int64               `gorm:"column:total;not null" json:"total"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;not null" json:"payment_method"`
	DiscountRequestID *string             `gorm:"column:discount_request_id" json:"discount_request_id,omitempty"`
	Status            enums.BillStatus    `gorm:"column:status;not null;default:'completed'" json:"status"`
	CreatedBy         uuid.UUID           `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	Items             []BillItem          `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Bill) TableName() string { return "bills" }

package models

import (
	"time"

	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountRequest gates discounts above the approval threshold. The id carries
// a DISC- prefix so it reads distinctly on approval screens.
type DiscountRequest struct {
	ID              string               `gorm:"column:id;primaryKey" json:"id"`
	TabID           uuid.UUID            `gorm:"column:tab_id;type:uuid;not null;index" json:"tab_id"`
	StoreID         uuid.UUID            `gorm:"column:store_id;type:uuid;not null" json:"store_id"`
	DiscountPercent decimal.Decimal      `gorm:"column:discount_percent;type:numeric(5,2);not null" json:"discount_percent"`
	DiscountAmount  decimal.Decimal      `gorm:"column:discount_amount;type:numeric(12,2);not null" json:"discount_amount"`
	Status          enums.ApprovalStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	RequestedBy     uuid.UUID            `gorm:"column:requested_by;type:uuid;not null" json:"requested_by"`
	DecidedBy       *uuid.UUID           `gorm:"column:decided_by;type:uuid" json:"decided_by,omitempty"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DiscountRequest) TableName() string { return "discount_requests" }

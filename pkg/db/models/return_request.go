package models

import (
	"time"

	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnItem is one returned line inside a ReturnRequest, stored as JSON.
type ReturnItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	BasePrice decimal.Decimal `json:"base_price"`
}

// ReturnRequest captures a customer return against a saved bill. It follows
// the same pending/approved/denied shape as discount requests.
type ReturnRequest struct {
	ID        string             `gorm:"column:id;primaryKey" json:"id"`
	BillID    string             `gorm:"column:bill_id;not null;index" json:"bill_id"`
	StoreID   uuid.UUID          `gorm:"column:store_id;type:uuid;not null" json:"store_id"`
	Reason    string             `gorm:"column:reason" json:"reason"`
	Items     []ReturnItem       `gorm:"column:items;type:jsonb;serializer:json" json:"items"`
	Status    enums.ReturnStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	CreatedBy uuid.UUID          `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	DecidedBy *uuid.UUID         `gorm:"column:decided_by;type:uuid" json:"decided_by,omitempty"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ReturnRequest) TableName() string { return "return_requests" }

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a catalog row. SellingPrice is tax-inclusive as displayed on the
// shelf tag; the tax-exclusive base price is derived at add-to-cart time.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StoreID        uuid.UUID       `gorm:"column:store_id;type:uuid;not null" json:"store_id"`
	Name           string          `gorm:"column:name;not null" json:"name"`
	Stock          int             `gorm:"column:stock;not null;default:0" json:"stock"`
	SellingPrice   decimal.Decimal `gorm:"column:selling_price;type:numeric(12,2);not null" json:"selling_price"`
	TaxRatePercent decimal.Decimal `gorm:"column:tax_rate_percent;type:numeric(5,2);not null;default:0" json:"tax_rate_percent"`
	Barcodes       pq.StringArray  `gorm:"column:barcodes;type:text[]" json:"barcodes,omitempty"`
	HSNCode        *string         `gorm:"column:hsn_code" json:"hsn_code,omitempty"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

package invoices

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
)

// Repository persists bills and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the bill and its items in one statement batch. The caller
// wraps this in the same transaction as the stock decrements.
func (r *Repository) Create(ctx context.Context, bill *models.Bill) (*models.Bill, error) {
	if err := r.db.WithContext(ctx).Create(bill).Error; err != nil {
		return nil, err
	}
	return bill, nil
}

// FindByID loads a bill with its items.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&bill, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// ListByStore returns the store's bills newest first, capped at limit.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]models.Bill, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.Bill
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// SearchFilters narrow a bill search for the returns screen.
type SearchFilters struct {
	BillID        string
	CustomerName  string
	CustomerPhone string
	From          *time.Time
	To            *time.Time
}

// Search finds bills by invoice number, customer name, or phone. At least
// one filter is expected; the service validates that.
func (r *Repository) Search(ctx context.Context, storeID uuid.UUID, filters SearchFilters, limit int) ([]models.Bill, error) {
	if limit <= 0 {
		limit = 50
	}
	qb := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ?", storeID)

	if id := strings.TrimSpace(filters.BillID); id != "" {
		qb = qb.Where("id = ?", id)
	}
	if name := strings.TrimSpace(filters.CustomerName); name != "" {
		qb = qb.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if phone := strings.TrimSpace(filters.CustomerPhone); phone != "" {
		qb = qb.Where("customer_phone LIKE ?", "%"+phone+"%")
	}
	if filters.From != nil {
		qb = qb.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		qb = qb.Where("created_at < ?", *filters.To)
	}

	var rows []models.Bill
	err := qb.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// UpdateStatus moves a bill between lifecycle states, for returns.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Bill{}).
		Where("id = ?", id).
		UpdateColumn("status", status).
		Error
}

package returns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
)

// Repository persists return requests.
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

// Create inserts a new return request.
func (r *Repository) Create(ctx context.Context, req *models.ReturnRequest) (*models.ReturnRequest, error) {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// FindByID loads a return request row.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.ReturnRequest, error) {
	var req models.ReturnRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByStore returns the store's return requests newest first, optionally
// filtered by status.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, status *enums.ReturnStatus, limit int) ([]models.ReturnRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	qb := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if status != nil {
		qb = qb.Where("status = ?", *status)
	}
	var rows []models.ReturnRequest
	err := qb.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// ListByBill returns every return raised against the bill.
func (r *Repository) ListByBill(ctx context.Context, billID string) ([]models.ReturnRequest, error) {
	var rows []models.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// Decide moves a pending return to the given terminal status inside the
// caller's transaction; the guard lets the first decision win.
func (r *Repository) Decide(ctx context.Context, id string, status enums.ReturnStatus, decidedBy uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ReturnRequest{}).
		Where("id = ? AND status = ?", id, enums.ReturnStatusPending).
		Updates(map[string]any{
			"status":     status,
			"decided_by": decidedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

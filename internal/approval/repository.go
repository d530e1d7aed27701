package approval

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
)

// Repository persists discount approval requests.
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

// Create inserts a new discount request.
func (r *Repository) Create(ctx context.Context, req *models.DiscountRequest) (*models.DiscountRequest, error) {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

// FindByID loads a discount request row.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.DiscountRequest, error) {
	var req models.DiscountRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPendingByStore returns the store's undecided requests, oldest first,
// for the manager approval screen.
func (r *Repository) ListPendingByStore(ctx context.Context, storeID uuid.UUID) ([]models.DiscountRequest, error) {
	var rows []models.DiscountRequest
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND status = ?", storeID, enums.ApprovalStatusPending).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// Decide moves a pending request to the given terminal status. The status
// guard makes a decision race resolve to the first writer; the returned flag
// reports whether this call won.
func (r *Repository) Decide(ctx context.Context, id string, status enums.ApprovalStatus, decidedBy uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DiscountRequest{}).
		Where("id = ? AND status = ?", id, enums.ApprovalStatusPending).
		Updates(map[string]any{
			"status":     status,
			"decided_by": decidedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

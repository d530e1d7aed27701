package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
)

// Repository wires together product catalog persistence.
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

// FindByID loads a product row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByBarcode loads the active product in the store carrying the barcode.
// A product may carry several barcodes; any of them matches.
func (r *Repository) FindByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_active = ? AND ? = ANY(barcodes)", storeID, true, barcode).
		First(&product).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByStore returns the store's active products ordered by name.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_active = ?", storeID, true).
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// Search returns active products in the store whose name or barcode matches
// the query, for the billing screen's incremental lookup.
func (r *Repository) Search(ctx context.Context, storeID uuid.UUID, query string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_active = ?", storeID, true).
		Where("(LOWER(name) LIKE ? OR EXISTS (SELECT 1 FROM unnest(barcodes) b WHERE LOWER(b) LIKE ?))", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// StockMap returns the live stock count for every active product in the
// store, keyed by product id.
func (r *Repository) StockMap(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error) {
	type row struct {
		ID    uuid.UUID
		Stock int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("id", "stock").
		Where("store_id = ? AND is_active = ?", storeID, true).
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Stock
	}
	return out, nil
}

// DecrementStock subtracts quantity from the product's stock, refusing to go
// below zero. Returns gorm.ErrRecordNotFound semantics via RowsAffected: a
// zero count means the product was missing or had too little stock.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementStockTx runs the guarded decrement inside the given transaction.
func (r *Repository) DecrementStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) (bool, error) {
	return r.WithTx(tx).DecrementStock(ctx, productID, quantity)
}

// IncrementStock adds quantity back to the product's stock, for approved
// returns.
func (r *Repository) IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).
		Error
}

// IncrementStockTx runs the stock restore inside the given transaction.
func (r *Repository) IncrementStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) error {
	return r.WithTx(tx).IncrementStock(ctx, productID, quantity)
}

// CreateProduct inserts a new catalog row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing catalog row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeactivateProduct soft-deletes a product so past bills keep their rows.
func (r *Repository) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false).
		Error
}

package product

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
)

// Service exposes catalog reads for billing and catalog management for the
// back office.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*models.Product, error)
	ListProducts(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)
	SearchProducts(ctx context.Context, storeID uuid.UUID, query string, limit int) ([]models.Product, error)
	StockMap(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error)
	CreateProduct(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, storeID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, storeID, productID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name           string
	Stock          int
	SellingPrice   decimal.Decimal
	TaxRatePercent decimal.Decimal
	Barcodes       []string
	HSNCode        *string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name           *string
	Stock          *int
	SellingPrice   *decimal.Decimal
	TaxRatePercent *decimal.Decimal
	Barcodes       *[]string
	HSNCode        *string
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load product")
	}
	return product, nil
}

func (s *service) GetByBarcode(ctx context.Context, storeID uuid.UUID, barcode string) (*models.Product, error) {
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode required")
	}
	product, err := s.repo.FindByBarcode(ctx, storeID, barcode)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no product with barcode %s", barcode))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "look up barcode")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list products")
	}
	return rows, nil
}

func (s *service) SearchProducts(ctx context.Context, storeID uuid.UUID, query string, limit int) ([]models.Product, error) {
	rows, err := s.repo.Search(ctx, storeID, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "search products")
	}
	return rows, nil
}

func (s *service) StockMap(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error) {
	stock, err := s.repo.StockMap(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load stock map")
	}
	return stock, nil
}

func (s *service) CreateProduct(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.SellingPrice.IsNegative() || input.TaxRatePercent.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price and tax rate must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	product := &models.Product{
		StoreID:        storeID,
		Name:           input.Name,
		Stock:          input.Stock,
		SellingPrice:   input.SellingPrice,
		TaxRatePercent: input.TaxRatePercent,
		Barcodes:       input.Barcodes,
		HSNCode:        input.HSNCode,
		IsActive:       true,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, storeID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another store")
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
		}
		product.Stock = *input.Stock
	}
	if input.SellingPrice != nil {
		product.SellingPrice = *input.SellingPrice
	}
	if input.TaxRatePercent != nil {
		product.TaxRatePercent = *input.TaxRatePercent
	}
	if input.Barcodes != nil {
		product.Barcodes = *input.Barcodes
	}
	if input.HSNCode != nil {
		product.HSNCode = input.HSNCode
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update product")
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, storeID, productID uuid.UUID) error {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.StoreID != storeID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another store")
	}
	if err := s.repo.DeactivateProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "deactivate product")
	}
	return nil
}

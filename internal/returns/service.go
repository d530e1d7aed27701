package returns

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/internal/invoices"
	"github.com/aurumworks/jewelpos-backend/internal/stock"
	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/ids"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type billReader interface {
	GetBill(ctx context.Context, id string) (*models.Bill, error)
}

type stockRestorer interface {
	IncrementStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) error
	StockMap(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event stock.Event) error
}

// SubmitInput describes the lines a customer wants to return from a bill.
type SubmitInput struct {
	BillID    string
	Reason    string
	CreatedBy uuid.UUID
	Items     []ItemInput
}

// ItemInput selects a product and quantity from the original bill.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// Service manages customer returns against saved bills.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.ReturnRequest, error)
	Get(ctx context.Context, id string) (*models.ReturnRequest, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, status *enums.ReturnStatus, limit int) ([]models.ReturnRequest, error)
	Decide(ctx context.Context, id string, approve bool, decidedBy uuid.UUID) (*models.ReturnRequest, error)
}

type service struct {
	repo      *Repository
	bills     billReader
	billsRepo *invoices.Repository
	db        txRunner
	stock     stockRestorer
	publisher eventPublisher
	log       *logger.Logger
}

// ServiceParams configure the returns service.
type ServiceParams struct {
	Repo      *Repository
	Bills     billReader
	BillsRepo *invoices.Repository
	DB        txRunner
	Stock     stockRestorer
	Publisher eventPublisher
	Logger    *logger.Logger
}

// NewService constructs the returns service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("return repository required")
	}
	if params.Bills == nil {
		return nil, fmt.Errorf("bill reader required")
	}
	if params.BillsRepo == nil {
		return nil, fmt.Errorf("bill repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock restorer required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      params.Repo,
		bills:     params.Bills,
		billsRepo: params.BillsRepo,
		db:        params.DB,
		stock:     params.Stock,
		publisher: params.Publisher,
		log:       params.Logger,
	}, nil
}

// Submit validates the requested lines against the original bill and records
// a pending return. Stock moves only when a manager approves.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.ReturnRequest, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one return item required")
	}

	bill, err := s.bills.GetBill(ctx, input.BillID)
	if err != nil {
		return nil, err
	}
	if bill.Status != enums.BillStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("bill %s is %s and cannot be returned against", bill.ID, bill.Status))
	}

	sold := make(map[uuid.UUID]models.BillItem, len(bill.Items))
	for _, item := range bill.Items {
		sold[item.ProductID] = item
	}

	items := make([]models.ReturnItem, 0, len(input.Items))
	for _, in := range input.Items {
		if in.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "return quantity must be positive")
		}
		billItem, ok := sold[in.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is not on bill %s", in.ProductID, bill.ID))
		}
		if in.Quantity > billItem.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("cannot return %d of %s, bill has %d", in.Quantity, billItem.Name, billItem.Quantity))
		}
		items = append(items, models.ReturnItem{
			ProductID: in.ProductID,
			Name:      billItem.Name,
			Quantity:  in.Quantity,
			BasePrice: billItem.BasePrice,
		})
	}

	req := &models.ReturnRequest{
		ID:        ids.NewReturnID(),
		BillID:    bill.ID,
		StoreID:   bill.StoreID,
		Reason:    input.Reason,
		Items:     items,
		Status:    enums.ReturnStatusPending,
		CreatedBy: input.CreatedBy,
	}
	created, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create return request")
	}
	s.log.Info(ctx, fmt.Sprintf("return %s requested against bill %s", created.ID, bill.ID))
	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.ReturnRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "return request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load return request")
	}
	return req, nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID, status *enums.ReturnStatus, limit int) ([]models.ReturnRequest, error) {
	rows, err := s.repo.ListByStore(ctx, storeID, status, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list return requests")
	}
	return rows, nil
}

// Decide resolves a pending return. Approval restores stock and marks the
// bill returned in one transaction, then publishes the stock changes.
func (s *service) Decide(ctx context.Context, id string, approve bool, decidedBy uuid.UUID) (*models.ReturnRequest, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != enums.ReturnStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("return request already %s", req.Status))
	}

	status := enums.ReturnStatusDenied
	if approve {
		status = enums.ReturnStatusApproved
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		won, err := s.repo.WithTx(tx).Decide(ctx, id, status, decidedBy)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decide return request")
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeConflict, "return request already decided")
		}
		if !approve {
			return nil
		}
		for _, item := range req.Items {
			if err := s.stock.IncrementStockTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "restore stock")
			}
		}
		if err := s.billsRepo.WithTx(tx).UpdateStatus(ctx, req.BillID, string(enums.BillStatusReturned)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "mark bill returned")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, fmt.Sprintf("return %s %s", id, status))
	if approve {
		s.publishStockChanges(ctx, req)
	}

	return s.Get(ctx, id)
}

func (s *service) publishStockChanges(ctx context.Context, req *models.ReturnRequest) {
	stockMap, err := s.stock.StockMap(ctx, req.StoreID)
	if err != nil {
		s.log.Warn(ctx, fmt.Sprintf("load stock map for publish: %v", err))
		stockMap = nil
	}
	for _, item := range req.Items {
		event := stock.NewStockChanged(req.StoreID, item.ProductID, stockMap[item.ProductID], req.ID)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warn(ctx, fmt.Sprintf("publish stock change for %s: %v", item.ProductID, err))
		}
	}
}

package invoices

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/internal/approval"
	"github.com/aurumworks/jewelpos-backend/internal/billing"
	"github.com/aurumworks/jewelpos-backend/internal/stock"
	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
	"github.com/aurumworks/jewelpos-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockWriter interface {
	DecrementStockTx(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int) (bool, error)
	StockMap(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event stock.Event) error
}

// Service finalizes billing tabs into persisted bills and serves bill reads.
type Service interface {
	Finalize(ctx context.Context, tabID, userID uuid.UUID) (*models.Bill, error)
	GetBill(ctx context.Context, id string) (*models.Bill, error)
	ListBills(ctx context.Context, storeID uuid.UUID, limit int) ([]models.Bill, error)
	SearchBills(ctx context.Context, storeID uuid.UUID, filters SearchFilters, limit int) ([]models.Bill, error)
}

type service struct {
	registry  *billing.Registry
	approvals approval.Service
	repo      *Repository
	db        txRunner
	stock     stockWriter
	publisher eventPublisher
	log       *logger.Logger
	metrics   *metrics.BillingMetrics

	pollInterval time.Duration

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// ServiceParams configure the invoice service.
type ServiceParams struct {
	Registry     *billing.Registry
	Approvals    approval.Service
	Repo         *Repository
	DB           txRunner
	Stock        stockWriter
	Publisher    eventPublisher
	Logger       *logger.Logger
	Metrics      *metrics.BillingMetrics
	PollInterval time.Duration
}

// NewService constructs the invoice service.
func NewService(params ServiceParams) (Service, error) {
	if params.Registry == nil {
		return nil, fmt.Errorf("tab registry required")
	}
	if params.Approvals == nil {
		return nil, fmt.Errorf("approval service required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock writer required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		registry:     params.Registry,
		approvals:    params.Approvals,
		repo:         params.Repo,
		db:           params.DB,
		stock:        params.Stock,
		publisher:    params.Publisher,
		log:          params.Logger,
		metrics:      params.Metrics,
		pollInterval: params.PollInterval,
		inFlight:     make(map[uuid.UUID]struct{}),
	}, nil
}

// Finalize saves the tab's cart as a bill. When the discount needs approval
// and none has been granted, it raises the request, starts watching for the
// decision, and fails with DISCOUNT_NOT_APPROVED so the cashier can retry
// once the manager decides. On success the tab is reset to a fresh cart.
func (s *service) Finalize(ctx context.Context, tabID, userID uuid.UUID) (*models.Bill, error) {
	if !s.acquire(tabID) {
		return nil, pkgerrors.New(pkgerrors.CodeSaveInFlight, "a save for this tab is already in progress")
	}
	defer s.release(tabID)

	started := time.Now()
	cart, err := s.registry.Snapshot(tabID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot save a bill with no items")
	}

	if cart.RequiresApproval() && cart.Approval != enums.ApprovalStatusApproved {
		return nil, s.ensureApproval(ctx, cart, userID)
	}

	bill, err := Assemble(cart, userID)
	if err != nil {
		return nil, err
	}
	ctx = s.log.WithInvoiceID(ctx, bill.ID)

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, bill); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "insert bill")
		}
		for _, item := range bill.Items {
			ok, err := s.stock.DecrementStockTx(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeOutOfStock,
					fmt.Sprintf("%s no longer has %d units in stock", item.Name, item.Quantity))
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveSaveDuration("error", time.Since(started))
		s.log.Error(ctx, "bill save failed", err)
		return nil, err
	}

	s.metrics.ObserveSaveDuration("ok", time.Since(started))
	s.metrics.IncInvoiceSaved(string(bill.PaymentMethod))
	s.log.Info(ctx, fmt.Sprintf("bill %s saved, total %d", bill.ID, bill.Total))

	if _, err := s.registry.Reset(tabID); err != nil {
		s.log.Warn(ctx, fmt.Sprintf("reset tab after save: %v", err))
	}

	s.publishStockChanges(ctx, bill)
	return bill, nil
}

// ensureApproval raises or reports the discount request. The returned error
// is always DISCOUNT_NOT_APPROVED (or APPROVAL_REQUEST_FAILED); carts never
// save past an undecided discount.
func (s *service) ensureApproval(ctx context.Context, cart billing.Cart, userID uuid.UUID) error {
	switch cart.Approval {
	case enums.ApprovalStatusPending:
		return pkgerrors.New(pkgerrors.CodeDiscountPending, "discount approval is still pending").
			WithDetails(map[string]any{"request_id": cart.ApprovalReqID, "approval_status": cart.Approval})
	case enums.ApprovalStatusDenied:
		return pkgerrors.New(pkgerrors.CodeDiscountPending, "discount was denied, change the discount to continue").
			WithDetails(map[string]any{"request_id": cart.ApprovalReqID, "approval_status": cart.Approval})
	}

	req, err := s.approvals.Submit(ctx, approval.SubmitInput{
		TabID:           cart.TabID,
		StoreID:         cart.StoreID,
		RequestedBy:     userID,
		DiscountPercent: cart.DiscountPercent,
		DiscountAmount:  cart.Totals.DiscountAmount,
	})
	if err != nil {
		return err
	}

	if _, err := s.registry.Update(cart.TabID, func(c billing.Cart) (billing.Cart, error) {
		return c.WithApproval(req.ID, enums.ApprovalStatusPending), nil
	}); err != nil {
		return err
	}

	s.watchApproval(ctx, cart.TabID, req.ID)

	return pkgerrors.New(pkgerrors.CodeDiscountPending, "discount approval requested, waiting for a manager").
		WithDetails(map[string]any{"request_id": req.ID, "approval_status": enums.ApprovalStatusPending})
}

// watchApproval polls the request on the tab's lifecycle context and mirrors
// each observed status into the cart. The write is guarded on the request id
// so a discount change that superseded this request cannot be overwritten.
func (s *service) watchApproval(ctx context.Context, tabID uuid.UUID, requestID string) {
	tabCtx, err := s.registry.Context(tabID)
	if err != nil {
		return
	}

	poller, err := approval.NewPoller(approval.PollerParams{
		Reader:    s.approvals,
		Logger:    s.log,
		RequestID: requestID,
		Interval:  s.pollInterval,
		Apply: func(status enums.ApprovalStatus) {
			_, _ = s.registry.Update(tabID, func(c billing.Cart) (billing.Cart, error) {
				if c.ApprovalReqID != requestID {
					return c, nil
				}
				return c.WithApproval(requestID, status), nil
			})
		},
	})
	if err != nil {
		s.log.Error(ctx, "start approval poller", err)
		return
	}
	go poller.Run(tabCtx)
}

func (s *service) publishStockChanges(ctx context.Context, bill *models.Bill) {
	stockMap, err := s.stock.StockMap(ctx, bill.StoreID)
	if err != nil {
		s.log.Warn(ctx, fmt.Sprintf("load stock map for publish: %v", err))
		stockMap = nil
	}

	for _, item := range bill.Items {
		event := stock.NewStockChanged(bill.StoreID, item.ProductID, stockMap[item.ProductID], bill.ID)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warn(ctx, fmt.Sprintf("publish stock change for %s: %v", item.ProductID, err))
		}
	}
}

func (s *service) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	bill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bill not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load bill")
	}
	return bill, nil
}

func (s *service) ListBills(ctx context.Context, storeID uuid.UUID, limit int) ([]models.Bill, error) {
	rows, err := s.repo.ListByStore(ctx, storeID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list bills")
	}
	return rows, nil
}

func (s *service) SearchBills(ctx context.Context, storeID uuid.UUID, filters SearchFilters, limit int) ([]models.Bill, error) {
	if filters.BillID == "" && filters.CustomerName == "" && filters.CustomerPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one search filter required")
	}
	rows, err := s.repo.Search(ctx, storeID, filters, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "search bills")
	}
	return rows, nil
}

func (s *service) acquire(tabID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[tabID]; busy {
		return false
	}
	s.inFlight[tabID] = struct{}{}
	return true
}

func (s *service) release(tabID uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, tabID)
	s.mu.Unlock()
}

package approval

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/ids"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
	"github.com/aurumworks/jewelpos-backend/pkg/metrics"
)

// SubmitInput describes the discount a cashier wants approved.
type SubmitInput struct {
	TabID           uuid.UUID
	StoreID         uuid.UUID
	RequestedBy     uuid.UUID
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
}

// Service manages the lifecycle of discount approval requests.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.DiscountRequest, error)
	Get(ctx context.Context, id string) (*models.DiscountRequest, error)
	Status(ctx context.Context, id string) (enums.ApprovalStatus, error)
	ListPending(ctx context.Context, storeID uuid.UUID) ([]models.DiscountRequest, error)
	Decide(ctx context.Context, id string, approve bool, decidedBy uuid.UUID) (*models.DiscountRequest, error)
}

type service struct {
	repo    *Repository
	log     *logger.Logger
	metrics *metrics.BillingMetrics
}

// NewService constructs a discount approval service.
func NewService(repo *Repository, log *logger.Logger, m *metrics.BillingMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("approval repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, log: log, metrics: m}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.DiscountRequest, error) {
	if input.TabID == uuid.Nil || input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tab and store ids required")
	}
	if !input.DiscountPercent.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be positive")
	}

	req := &models.DiscountRequest{
		ID:              ids.NewDiscountRequestID(),
		TabID:           input.TabID,
		StoreID:         input.StoreID,
		DiscountPercent: input.DiscountPercent,
		DiscountAmount:  input.DiscountAmount,
		Status:          enums.ApprovalStatusPending,
		RequestedBy:     input.RequestedBy,
	}
	created, err := s.repo.Create(ctx, req)
	if err != nil {
		// The save flow maps this to an APPROVAL_REQUEST_FAILED response;
		// the cart stays intact so the cashier can retry.
		return nil, pkgerrors.Wrap(pkgerrors.CodeApprovalRequest, err, "create discount request")
	}

	s.metrics.IncApprovalRequest(string(enums.ApprovalStatusPending))
	s.log.Info(s.log.WithTabID(ctx, input.TabID.String()),
		fmt.Sprintf("discount approval requested: %s for %s%%", created.ID, input.DiscountPercent.StringFixed(2)))
	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.DiscountRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load discount request")
	}
	return req, nil
}

func (s *service) Status(ctx context.Context, id string) (enums.ApprovalStatus, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return req.Status, nil
}

func (s *service) ListPending(ctx context.Context, storeID uuid.UUID) ([]models.DiscountRequest, error) {
	rows, err := s.repo.ListPendingByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list pending discount requests")
	}
	return rows, nil
}

func (s *service) Decide(ctx context.Context, id string, approve bool, decidedBy uuid.UUID) (*models.DiscountRequest, error) {
	status := enums.ApprovalStatusDenied
	if approve {
		status = enums.ApprovalStatusApproved
	}

	won, err := s.repo.Decide(ctx, id, status, decidedBy)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decide discount request")
	}
	if !won {
		req, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("discount request already %s", req.Status)).
			WithDetails(map[string]any{"status": req.Status})
	}

	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.IncApprovalRequest(string(status))
	s.log.Info(s.log.WithTabID(ctx, req.TabID.String()),
		fmt.Sprintf("discount request %s %s", id, status))
	return req, nil
}

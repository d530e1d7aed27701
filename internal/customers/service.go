package customers

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/pkg/db"
	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
)

// CustomerInput is the payload to create or update a customer.
type CustomerInput struct {
	Name    string
	Phone   string
	Email   *string
	Address *string
}

// Service exposes customer lookups for billing and simple CRM writes.
type Service interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	SearchCustomers(ctx context.Context, query string, limit int) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, input CustomerInput) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, input CustomerInput) (*models.Customer, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a customer service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load customer")
	}
	return customer, nil
}

func (s *service) SearchCustomers(ctx context.Context, query string, limit int) ([]models.Customer, error) {
	rows, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "search customers")
	}
	return rows, nil
}

func (s *service) CreateCustomer(ctx context.Context, input CustomerInput) (*models.Customer, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}

	customer := &models.Customer{
		ID:      uuid.New(),
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
	}
	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		if db.IsUniqueViolation(err, "ux_customers_phone") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a customer with this phone already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create customer")
	}
	return created, nil
}

func (s *service) UpdateCustomer(ctx context.Context, id uuid.UUID, input CustomerInput) (*models.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		customer.Name = input.Name
	}
	if input.Phone != "" {
		customer.Phone = input.Phone
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Address != nil {
		customer.Address = input.Address
	}

	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update customer")
	}
	return updated, nil
}

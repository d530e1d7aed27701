package stores

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
)

type storeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

// UpdateStoreInput captures the invoice-header fields a manager may edit.
type UpdateStoreInput struct {
	Name    *string
	Address *string
	Phone   *string
	GSTIN   *string
}

// Service exposes store operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateStoreInput) (*models.Store, error)
}

type service struct {
	repo storeRepository
}

// NewService builds a store service with the provided repository.
func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load store")
	}
	return store, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateStoreInput) (*models.Store, error) {
	store, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		store.Name = *input.Name
	}
	if input.Address != nil {
		store.Address = *input.Address
	}
	if input.Phone != nil {
		store.Phone = *input.Phone
	}
	if input.GSTIN != nil {
		store.GSTIN = *input.GSTIN
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update store")
	}
	return store, nil
}

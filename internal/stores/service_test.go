package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
)

type stubStoreRepo struct {
	stores map[uuid.UUID]*models.Store
}

func (s *stubStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	store, ok := s.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *store
	return &copied, nil
}

func (s *stubStoreRepo) Update(_ context.Context, store *models.Store) error {
	copied := *store
	s.stores[store.ID] = &copied
	return nil
}

func storeFixture(t *testing.T) (Service, *models.Store) {
	t.Helper()

	store := &models.Store{
		ID:      uuid.New(),
		Name:    "Aurum Jewellers",
		Address: "14 Bazaar Road",
		Phone:   "0400 123456",
		GSTIN:   "29ABCDE1234F1Z5",
	}
	svc, err := NewService(&stubStoreRepo{stores: map[uuid.UUID]*models.Store{store.ID: store}})
	require.NoError(t, err)
	return svc, store
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := storeFixture(t)

	_, err := svc.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	svc, store := storeFixture(t)
	ctx := context.Background()

	phone := "0400 999999"
	updated, err := svc.Update(ctx, store.ID, UpdateStoreInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Aurum Jewellers", updated.Name)
	assert.Equal(t, "29ABCDE1234F1Z5", updated.GSTIN)

	found, err := svc.GetByID(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, phone, found.Phone)
}

func TestUpdateUnknownStore(t *testing.T) {
	svc, _ := storeFixture(t)

	name := "Rename"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateStoreInput{Name: &name})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

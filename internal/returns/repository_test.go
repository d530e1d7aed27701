package returns

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	"github.com/aurumworks/jewelpos-backend/pkg/ids"
)

func seedReturn(t *testing.T, repo *Repository, storeID uuid.UUID, billID string, status enums.ReturnStatus) *models.ReturnRequest {
	t.Helper()
	req := &models.ReturnRequest{
		ID:      ids.NewReturnID(),
		BillID:  billID,
		StoreID: storeID,
		Items: []models.ReturnItem{{
			ProductID: uuid.New(),
			Name:      "Silver Chain",
			Quantity:  1,
			BasePrice: decimal.RequireFromString("50.00"),
		}},
		Status:    status,
		CreatedBy: uuid.New(),
	}
	created, err := repo.Create(context.Background(), req)
	require.NoError(t, err)
	return created
}

func TestListByStoreFiltersStatus(t *testing.T) {
	db := setupReturnsTestDB(t)
	repo := NewRepository(db)

	storeID := uuid.New()
	billID := ids.NewBillID()
	pending := seedReturn(t, repo, storeID, billID, enums.ReturnStatusPending)
	seedReturn(t, repo, storeID, billID, enums.ReturnStatusDenied)
	seedReturn(t, repo, uuid.New(), ids.NewBillID(), enums.ReturnStatusPending)

	status := enums.ReturnStatusPending
	rows, err := repo.ListByStore(context.Background(), storeID, &status, 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)

	rows, err = repo.ListByStore(context.Background(), storeID, nil, 50)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestListByBillRoundTripsItems(t *testing.T) {
	db := setupReturnsTestDB(t)
	repo := NewRepository(db)

	storeID := uuid.New()
	billID := ids.NewBillID()
	seedReturn(t, repo, storeID, billID, enums.ReturnStatusPending)

	rows, err := repo.ListByBill(context.Background(), billID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Items, 1)
	assert.Equal(t, "Silver Chain", rows[0].Items[0].Name)
}

func TestDecideOnlyFirstWriterWins(t *testing.T) {
	db := setupReturnsTestDB(t)
	repo := NewRepository(db)

	req := seedReturn(t, repo, uuid.New(), ids.NewBillID(), enums.ReturnStatusPending)
	decider := uuid.New()

	won, err := repo.Decide(context.Background(), req.ID, enums.ReturnStatusApproved, decider)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.Decide(context.Background(), req.ID, enums.ReturnStatusDenied, decider)
	require.NoError(t, err)
	assert.False(t, won)

	stored, err := repo.FindByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnStatusApproved, stored.Status)
}

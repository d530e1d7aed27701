package approval

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aurumworks/jewelpos-backend/pkg/db/models"
	"github.com/aurumworks/jewelpos-backend/pkg/enums"
	"github.com/aurumworks/jewelpos-backend/pkg/ids"
)

func setupApprovalTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS discount_requests (
  id TEXT PRIMARY KEY,
  tab_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  discount_percent NUMERIC NOT NULL,
  discount_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  requested_by TEXT NOT NULL,
  decided_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func newTestRequest(storeID uuid.UUID) *models.DiscountRequest {
	return &models.DiscountRequest{
		ID:              ids.NewDiscountRequestID(),
		TabID:           uuid.New(),
		StoreID:         storeID,
		DiscountPercent: decimal.RequireFromString("15"),
		DiscountAmount:  decimal.RequireFromString("30.00"),
		Status:          enums.ApprovalStatusPending,
		RequestedBy:     uuid.New(),
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupApprovalTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	req := newTestRequest(uuid.New())
	created, err := repo.Create(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, created.ID, "DISC-")

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusPending, found.Status)
	assert.True(t, found.DiscountPercent.Equal(decimal.RequireFromString("15")))
}

func TestRepositoryListPendingByStore(t *testing.T) {
	db := setupApprovalTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	first := newTestRequest(storeID)
	second := newTestRequest(storeID)
	decided := newTestRequest(storeID)
	decided.Status = enums.ApprovalStatusApproved
	other := newTestRequest(uuid.New())

	for _, req := range []*models.DiscountRequest{first, second, decided, other} {
		_, err := repo.Create(ctx, req)
		require.NoError(t, err)
	}

	rows, err := repo.ListPendingByStore(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, enums.ApprovalStatusPending, row.Status)
		assert.Equal(t, storeID, row.StoreID)
	}
}

func TestRepositoryDecideFirstWriterWins(t *testing.T) {
	db := setupApprovalTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	req := newTestRequest(uuid.New())
	_, err := repo.Create(ctx, req)
	require.NoError(t, err)

	manager := uuid.New()
	won, err := repo.Decide(ctx, req.ID, enums.ApprovalStatusApproved, manager)
	require.NoError(t, err)
	assert.True(t, won)

	// A second decision loses to the first.
	lost, err := repo.Decide(ctx, req.ID, enums.ApprovalStatusDenied, uuid.New())
	require.NoError(t, err)
	assert.False(t, lost)

	found, err := repo.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusApproved, found.Status)
	require.NotNil(t, found.DecidedBy)
	assert.Equal(t, manager, *found.DecidedBy)
}

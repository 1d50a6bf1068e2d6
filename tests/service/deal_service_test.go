package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"github.com/wm-metals/trade-api/internal/service"
	"github.com/wm-metals/trade-api/tests/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDealServiceTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createDealService(db *gorm.DB) *service.DealService {
	dealRepo := repository.NewDealRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	hub := realtime.NewHub(zap.NewNop())
	logger := zap.NewNop()

	return service.NewDealService(db, dealRepo, customerRepo, notificationRepo, userRepo, hub, logger)
}

func TestDealService_Create(t *testing.T) {
	db := setupDealServiceTestDB(t)
	svc := createDealService(db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Deal Customer")

	req := &domain.CreateDealRequest{
		Title:          "500t rebar",
		EstimatedValue: 250000,
		Material:       "steel",
		QuantityTons:   500,
		CustomerID:     customer.ID,
	}

	deal, err := svc.Create(ctx, req, nil)
	assert.NoError(t, err)
	assert.Equal(t, domain.DealStatusQualified, deal.Status)
	assert.Equal(t, customer.ID, deal.CustomerID)
	assert.Nil(t, deal.ActualValue)
}

func TestDealService_Create_UnknownCustomer(t *testing.T) {
	db := setupDealServiceTestDB(t)
	svc := createDealService(db)
	ctx := context.Background()

	req := &domain.CreateDealRequest{
		Title:      "Orphan deal",
		CustomerID: testutil.CreateTestCustomer(t, db, "Gone").ID,
	}
	require.NoError(t, db.Exec("DELETE FROM customers WHERE id = ?", req.CustomerID).Error)

	_, err := svc.Create(ctx, req, nil)
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)
}

func TestDealService_CloseWon(t *testing.T) {
	db := setupDealServiceTestDB(t)
	svc := createDealService(db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Won Customer")

	deal, err := svc.Create(ctx, &domain.CreateDealRequest{
		Title:          "100t copper wire",
		EstimatedValue: 90000,
		CustomerID:     customer.ID,
	}, nil)
	require.NoError(t, err)

	closed, err := svc.CloseWon(ctx, deal.ID, 95000)
	assert.NoError(t, err)
	assert.Equal(t, domain.DealStatusWon, closed.Status)
	require.NotNil(t, closed.ActualValue)
	assert.Equal(t, 95000.0, *closed.ActualValue)
	assert.NotNil(t, closed.ClosedAt)

	// Closing won books exactly one pending receita for the actual value
	var transactions []domain.Transaction
	err = db.Where("deal_id = ?", deal.ID).Find(&transactions).Error
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, domain.TransactionTypeReceita, transactions[0].Type)
	assert.Equal(t, domain.TransactionStatusPending, transactions[0].Status)
	assert.Equal(t, 95000.0, transactions[0].Amount)
	require.NotNil(t, transactions[0].CustomerID)
	assert.Equal(t, customer.ID, *transactions[0].CustomerID)
}

func TestDealService_CloseWon_AlreadyClosed(t *testing.T) {
	db := setupDealServiceTestDB(t)
	svc := createDealService(db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Double Close")

	deal, err := svc.Create(ctx, &domain.CreateDealRequest{
		Title:      "Single close only",
		CustomerID: customer.ID,
	}, nil)
	require.NoError(t, err)

	_, err = svc.CloseWon(ctx, deal.ID, 1000)
	require.NoError(t, err)

	_, err = svc.CloseWon(ctx, deal.ID, 2000)
	assert.ErrorIs(t, err, service.ErrDealAlreadyClosed)

	_, err = svc.CloseLost(ctx, deal.ID, "changed mind")
	assert.ErrorIs(t, err, service.ErrDealAlreadyClosed)

	// Still only the one ledger entry
	var count int64
	require.NoError(t, db.Model(&domain.Transaction{}).Where("deal_id = ?", deal.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDealService_CloseWon_NotifiesOwner(t *testing.T) {
	db := setupDealServiceTestDB(t)
	svc := createDealService(db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Notify Customer")
	owner := testutil.CreateTestUser(t, db, "deal-owner", "sales")

	deal, err := svc.Create(ctx, &domain.CreateDealRequest{
		Title:      "Owned deal",
		CustomerID: customer.ID,
	}, &owner.ID)
	require.NoError(t, err)

	_, err = svc.CloseWon(ctx, deal.ID, 5000)
	require.NoError(t, err)

	var notifications []domain.Notification
	require.NoError(t, db.Where("user_id = ?", owner.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationTypeSuccess, notifications[0].Type)
	assert.Contains(t, notifications[0].Title, "Owned deal")
	assert.Equal(t, "deal", notifications[0].EntityType)
}

func TestDealService_CloseLost(t *testing.T) {
	db := setupDealServiceTestDB(t)
	svc := createDealService(db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Lost Customer")

	deal, err := svc.Create(ctx, &domain.CreateDealRequest{
		Title:      "Missed the price",
		CustomerID: customer.ID,
	}, nil)
	require.NoError(t, err)

	closed, err := svc.CloseLost(ctx, deal.ID, "competitor undercut")
	assert.NoError(t, err)
	assert.Equal(t, domain.DealStatusLost, closed.Status)
	assert.Equal(t, "competitor undercut", closed.LostReason)
	assert.NotNil(t, closed.ClosedAt)

	// Losing a deal books nothing
	var count int64
	require.NoError(t, db.Model(&domain.Transaction{}).Where("deal_id = ?", deal.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDealService_Update_ClosedDealRejected(t *testing.T) {
	db := setupDealServiceTestDB(t)
	svc := createDealService(db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Frozen Deal")

	deal, err := svc.Create(ctx, &domain.CreateDealRequest{
		Title:      "Frozen after close",
		CustomerID: customer.ID,
	}, nil)
	require.NoError(t, err)

	_, err = svc.CloseLost(ctx, deal.ID, "no stock")
	require.NoError(t, err)

	title := "New title"
	_, err = svc.Update(ctx, deal.ID, &domain.UpdateDealRequest{Title: &title})
	assert.ErrorIs(t, err, service.ErrDealAlreadyClosed)
}

func TestDealService_Kanban(t *testing.T) {
	db := setupDealServiceTestDB(t)
	svc := createDealService(db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Kanban Customer")

	_, err := svc.Create(ctx, &domain.CreateDealRequest{
		Title:          "Open deal",
		EstimatedValue: 10000,
		CustomerID:     customer.ID,
	}, nil)
	require.NoError(t, err)

	won, err := svc.Create(ctx, &domain.CreateDealRequest{
		Title:          "Won deal",
		EstimatedValue: 20000,
		CustomerID:     customer.ID,
	}, nil)
	require.NoError(t, err)
	_, err = svc.CloseWon(ctx, won.ID, 22000)
	require.NoError(t, err)

	board, err := svc.Kanban(ctx)
	assert.NoError(t, err)
	require.Len(t, board.Columns, 3)

	byStatus := map[domain.DealStatus]domain.DealKanbanColumnDTO{}
	for _, column := range board.Columns {
		byStatus[column.Status] = column
	}

	assert.Equal(t, 1, byStatus[domain.DealStatusQualified].Count)
	assert.Equal(t, 10000.0, byStatus[domain.DealStatusQualified].TotalValue)
	assert.Equal(t, 1, byStatus[domain.DealStatusWon].Count)
	// Won columns sum actual values, not estimates
	assert.Equal(t, 22000.0, byStatus[domain.DealStatusWon].TotalValue)
	assert.Equal(t, 0, byStatus[domain.DealStatusLost].Count)
}

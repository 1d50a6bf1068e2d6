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

func setupNotificationServiceTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createNotificationService(db *gorm.DB) (*service.NotificationService, *repository.NotificationRepository) {
	notificationRepo := repository.NewNotificationRepository(db)
	hub := realtime.NewHub(zap.NewNop())
	logger := zap.NewNop()

	return service.NewNotificationService(notificationRepo, hub, logger), notificationRepo
}

func TestNotificationService_ListByUser(t *testing.T) {
	db := setupNotificationServiceTestDB(t)
	svc, repo := createNotificationService(db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, "list-user", "sales")
	other := testutil.CreateTestUser(t, db, "other-user", "sales")

	for _, title := range []string{"First", "Second", "Third"} {
		n := &domain.Notification{UserID: user.ID, Type: domain.NotificationTypeInfo, Title: title}
		require.NoError(t, repo.Create(ctx, n))
	}
	require.NoError(t, repo.Create(ctx, &domain.Notification{UserID: other.ID, Type: domain.NotificationTypeInfo, Title: "Not yours"}))

	notifications, total, err := svc.ListByUser(ctx, user.ID, 1, 20, false)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, notifications, 3)
	for _, n := range notifications {
		assert.Equal(t, user.ID, n.UserID)
	}
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	db := setupNotificationServiceTestDB(t)
	svc, repo := createNotificationService(db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, "read-user", "sales")

	n := &domain.Notification{UserID: user.ID, Type: domain.NotificationTypeInfo, Title: "Unread"}
	require.NoError(t, repo.Create(ctx, n))

	err := svc.MarkAsRead(ctx, user.ID, n.ID)
	assert.NoError(t, err)

	reloaded, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Read)
	assert.NotNil(t, reloaded.ReadAt)

	// Marking again is a no-op
	err = svc.MarkAsRead(ctx, user.ID, n.ID)
	assert.NoError(t, err)
}

func TestNotificationService_MarkAsRead_Ownership(t *testing.T) {
	db := setupNotificationServiceTestDB(t)
	svc, repo := createNotificationService(db)
	ctx := context.Background()
	owner := testutil.CreateTestUser(t, db, "owner-user", "sales")
	intruder := testutil.CreateTestUser(t, db, "intruder-user", "sales")

	n := &domain.Notification{UserID: owner.ID, Type: domain.NotificationTypeInfo, Title: "Private"}
	require.NoError(t, repo.Create(ctx, n))

	err := svc.MarkAsRead(ctx, intruder.ID, n.ID)
	assert.ErrorIs(t, err, service.ErrNotOwner)

	reloaded, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Read)
}

func TestNotificationService_MarkAllAsRead(t *testing.T) {
	db := setupNotificationServiceTestDB(t)
	svc, repo := createNotificationService(db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, "markall-user", "sales")

	for _, title := range []string{"One", "Two"} {
		require.NoError(t, repo.Create(ctx, &domain.Notification{UserID: user.ID, Type: domain.NotificationTypeInfo, Title: title}))
	}

	count, err := svc.CountUnread(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	err = svc.MarkAllAsRead(ctx, user.ID)
	assert.NoError(t, err)

	count, err = svc.CountUnread(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Second call finds nothing unread and still succeeds
	err = svc.MarkAllAsRead(ctx, user.ID)
	assert.NoError(t, err)
}

func TestNotificationService_Delete(t *testing.T) {
	db := setupNotificationServiceTestDB(t)
	svc, repo := createNotificationService(db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db, "delete-user", "sales")
	intruder := testutil.CreateTestUser(t, db, "delete-intruder", "sales")

	n := &domain.Notification{UserID: user.ID, Type: domain.NotificationTypeInfo, Title: "Ephemeral"}
	require.NoError(t, repo.Create(ctx, n))

	err := svc.Delete(ctx, intruder.ID, n.ID)
	assert.ErrorIs(t, err, service.ErrNotOwner)

	err = svc.Delete(ctx, user.ID, n.ID)
	assert.NoError(t, err)

	err = svc.Delete(ctx, user.ID, n.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

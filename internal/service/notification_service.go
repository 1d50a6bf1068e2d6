package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationService manages per-user notifications. All operations are
// scoped to the requesting user; touching another user's notification is
// an ownership error.
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	hub              *realtime.Hub
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *NotificationService) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int, unreadOnly bool) ([]domain.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	notifications, total, err := s.notificationRepo.ListByUser(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead marks one notification read. Idempotent: marking an
// already-read notification succeeds without touching the row.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.UserID != userID {
		return ErrNotOwner
	}

	if notification.Read {
		// Already read, nothing to do
		return nil
	}

	if err := s.notificationRepo.MarkAsRead(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "notifications", Op: realtime.OpUpdate, After: notification})

	return nil
}

// MarkAllAsRead empties the user's unread set. A second call finds
// nothing unread and succeeds as a no-op.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notificationRepo.MarkAllAsRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "notifications", Op: realtime.OpUpdate})

	return nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.UserID != userID {
		return ErrNotOwner
	}

	if err := s.notificationRepo.Delete(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "notifications", Op: realtime.OpDelete, Before: notification})

	return nil
}

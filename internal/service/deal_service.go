package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/mapper"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DealService manages the kanban pipeline. Closing a deal as won writes
// the ledger transaction in the same database transaction as the status
// change, so the board and the ledger cannot disagree.
type DealService struct {
	db               *gorm.DB
	dealRepo         *repository.DealRepository
	customerRepo     *repository.CustomerRepository
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository
	hub              *realtime.Hub
	logger           *zap.Logger
}

func NewDealService(
	db *gorm.DB,
	dealRepo *repository.DealRepository,
	customerRepo *repository.CustomerRepository,
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *DealService {
	return &DealService{
		db:               db,
		dealRepo:         dealRepo,
		customerRepo:     customerRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *DealService) List(ctx context.Context, page, pageSize int, customerID *uuid.UUID, status domain.DealStatus) ([]domain.Deal, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	deals, total, err := s.dealRepo.List(ctx, page, pageSize, customerID, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deals: %w", err)
	}
	return deals, total, nil
}

func (s *DealService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return deal, nil
}

// Kanban groups all deals into board columns by status
func (s *DealService) Kanban(ctx context.Context) (*domain.DealKanbanDTO, error) {
	board := &domain.DealKanbanDTO{}
	for _, status := range []domain.DealStatus{domain.DealStatusQualified, domain.DealStatusWon, domain.DealStatusLost} {
		deals, err := s.dealRepo.ListByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("failed to load kanban column %s: %w", status, err)
		}

		column := domain.DealKanbanColumnDTO{
			Status: status,
			Count:  len(deals),
			Deals:  mapper.ToDealDTOs(deals),
		}
		for _, deal := range deals {
			if deal.Status == domain.DealStatusWon && deal.ActualValue != nil {
				column.TotalValue += *deal.ActualValue
			} else {
				column.TotalValue += deal.EstimatedValue
			}
		}
		board.Columns = append(board.Columns, column)
	}
	return board, nil
}

func (s *DealService) Create(ctx context.Context, req *domain.CreateDealRequest, ownerID *uuid.UUID) (*domain.Deal, error) {
	if _, err := s.customerRepo.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	deal := &domain.Deal{
		Title:          req.Title,
		Description:    req.Description,
		Status:         domain.DealStatusQualified,
		EstimatedValue: req.EstimatedValue,
		Material:       req.Material,
		QuantityTons:   req.QuantityTons,
		CustomerID:     req.CustomerID,
		OpportunityID:  req.OpportunityID,
		OwnerID:        ownerID,
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "deals", Op: realtime.OpInsert, After: deal})

	return deal, nil
}

func (s *DealService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateDealRequest) (*domain.Deal, error) {
	deal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal.Status != domain.DealStatusQualified {
		return nil, ErrDealAlreadyClosed
	}
	before := *deal

	if req.Title != nil {
		deal.Title = *req.Title
	}
	if req.Description != nil {
		deal.Description = *req.Description
	}
	if req.EstimatedValue != nil {
		deal.EstimatedValue = *req.EstimatedValue
	}
	if req.Material != nil {
		deal.Material = *req.Material
	}
	if req.QuantityTons != nil {
		deal.QuantityTons = *req.QuantityTons
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "deals", Op: realtime.OpUpdate, Before: &before, After: deal})

	return deal, nil
}

// CloseWon marks the deal won and books the matching receita. The deal
// row is re-read under a lock inside the transaction; a deal that is no
// longer qualified cannot be closed again, so concurrent closes create
// at most one ledger entry.
func (s *DealService) CloseWon(ctx context.Context, id uuid.UUID, actualValue float64) (*domain.Deal, error) {
	var deal *domain.Deal
	var transaction *domain.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deal, err = s.dealRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get deal: %w", err)
		}

		if deal.Status != domain.DealStatusQualified {
			return ErrDealAlreadyClosed
		}

		now := time.Now()
		deal.Status = domain.DealStatusWon
		deal.ActualValue = &actualValue
		deal.ClosedAt = &now

		if err := tx.Save(deal).Error; err != nil {
			return fmt.Errorf("failed to update deal: %w", err)
		}

		transaction = &domain.Transaction{
			Description: fmt.Sprintf("Deal closed: %s", deal.Title),
			Type:        domain.TransactionTypeReceita,
			Status:      domain.TransactionStatusPending,
			Category:    "sales",
			Amount:      actualValue,
			Date:        now,
			DealID:      &deal.ID,
			CustomerID:  &deal.CustomerID,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return fmt.Errorf("failed to create deal transaction: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deal closed as won",
		zap.String("deal_id", deal.ID.String()),
		zap.Float64("actual_value", actualValue),
		zap.String("transaction_id", transaction.ID.String()),
	)

	s.hub.Publish(realtime.Event{Table: "deals", Op: realtime.OpUpdate, After: deal})
	s.hub.Publish(realtime.Event{Table: "transactions", Op: realtime.OpInsert, After: transaction})

	s.notifyDealClosed(ctx, deal, domain.NotificationTypeSuccess,
		fmt.Sprintf("Deal won: %s", deal.Title),
		fmt.Sprintf("Closed at %.2f", actualValue))

	return deal, nil
}

// CloseLost marks the deal lost with a reason. No ledger entry is made.
func (s *DealService) CloseLost(ctx context.Context, id uuid.UUID, reason string) (*domain.Deal, error) {
	var deal *domain.Deal

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deal, err = s.dealRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get deal: %w", err)
		}

		if deal.Status != domain.DealStatusQualified {
			return ErrDealAlreadyClosed
		}

		now := time.Now()
		deal.Status = domain.DealStatusLost
		deal.LostReason = reason
		deal.ClosedAt = &now

		if err := tx.Save(deal).Error; err != nil {
			return fmt.Errorf("failed to update deal: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(realtime.Event{Table: "deals", Op: realtime.OpUpdate, After: deal})

	s.notifyDealClosed(ctx, deal, domain.NotificationTypeWarning,
		fmt.Sprintf("Deal lost: %s", deal.Title), reason)

	return deal, nil
}

func (s *DealService) Delete(ctx context.Context, id uuid.UUID) error {
	deal, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.dealRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "deals", Op: realtime.OpDelete, Before: deal})

	return nil
}

// notifyDealClosed writes a notification for the deal owner. Failures
// are logged and swallowed; the close itself has already committed.
func (s *DealService) notifyDealClosed(ctx context.Context, deal *domain.Deal, ntype domain.NotificationType, title, message string) {
	if deal.OwnerID == nil {
		return
	}

	notification := &domain.Notification{
		UserID:     *deal.OwnerID,
		Type:       ntype,
		Title:      title,
		Message:    message,
		EntityID:   &deal.ID,
		EntityType: "deal",
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create deal notification",
			zap.String("deal_id", deal.ID.String()),
			zap.Error(err))
		return
	}

	s.hub.Publish(realtime.Event{Table: "notifications", Op: realtime.OpInsert, After: notification})
}

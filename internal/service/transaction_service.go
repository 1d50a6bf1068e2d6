package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	hub             *realtime.Hub
	logger          *zap.Logger
}

func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		hub:             hub,
		logger:          logger,
	}
}

func (s *TransactionService) List(ctx context.Context, page, pageSize int, filter repository.TransactionFilter) ([]domain.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	transactions, total, err := s.transactionRepo.List(ctx, page, pageSize, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, total, nil
}

func (s *TransactionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return transaction, nil
}

func (s *TransactionService) Create(ctx context.Context, req *domain.CreateTransactionRequest) (*domain.Transaction, error) {
	status := domain.TransactionStatus(req.Status)
	if status == "" {
		status = domain.TransactionStatusPending
	}

	transaction := &domain.Transaction{
		Description: req.Description,
		Type:        domain.TransactionType(req.Type),
		Status:      status,
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        req.Date,
		DealID:      req.DealID,
		CustomerID:  req.CustomerID,
	}
	if status == domain.TransactionStatusPaid {
		now := time.Now()
		transaction.PaidAt = &now
	}

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "transactions", Op: realtime.OpInsert, After: transaction})

	return transaction, nil
}

func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateTransactionRequest) (*domain.Transaction, error) {
	transaction, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *transaction

	if req.Description != nil {
		transaction.Description = *req.Description
	}
	if req.Status != nil {
		newStatus := domain.TransactionStatus(*req.Status)
		if newStatus == domain.TransactionStatusPaid && transaction.Status != domain.TransactionStatusPaid {
			now := time.Now()
			transaction.PaidAt = &now
		}
		if newStatus == domain.TransactionStatusPending {
			transaction.PaidAt = nil
		}
		transaction.Status = newStatus
	}
	if req.Category != nil {
		transaction.Category = *req.Category
	}
	if req.Amount != nil {
		transaction.Amount = *req.Amount
	}
	if req.Date != nil {
		transaction.Date = *req.Date
	}

	if err := s.transactionRepo.Update(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "transactions", Op: realtime.OpUpdate, Before: &before, After: transaction})

	return transaction, nil
}

func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	transaction, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "transactions", Op: realtime.OpDelete, Before: transaction})

	return nil
}

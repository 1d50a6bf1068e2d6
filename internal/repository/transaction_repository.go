package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// TransactionFilter narrows List results. Zero values mean no filtering.
type TransactionFilter struct {
	Type       domain.TransactionType
	Status     domain.TransactionStatus
	Category   string
	CustomerID *uuid.UUID
	DealID     *uuid.UUID
	From       time.Time
	To         time.Time
}

func (r *TransactionRepository) List(ctx context.Context, page, pageSize int, filter TransactionFilter) ([]domain.Transaction, int64, error) {
	var transactions []domain.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Transaction{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.DealID != nil {
		query = query.Where("deal_id = ?", *filter.DealID)
	}
	if !filter.From.IsZero() && !filter.To.IsZero() {
		query = query.Where("date BETWEEN ? AND ?", filter.From, filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Customer").
		Offset(offset).Limit(pageSize).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error

	return transactions, total, err
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := r.db.WithContext(ctx).Preload("Customer").First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) error {
	return r.db.WithContext(ctx).Save(transaction).Error
}

func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Transaction{}, "id = ?", id).Error
}

// RangeTotal holds one aggregation bucket from SummarizeRange
type RangeTotal struct {
	Type   domain.TransactionType
	Status domain.TransactionStatus
	Total  float64
}

// SummarizeRange totals the ledger per type and settlement status
func (r *TransactionRepository) SummarizeRange(ctx context.Context, from, to time.Time) ([]RangeTotal, error) {
	var rows []RangeTotal
	err := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Select("type, status, COALESCE(SUM(amount), 0) AS total").
		Where("date BETWEEN ? AND ?", from, to).
		Group("type, status").
		Scan(&rows).Error
	return rows, err
}

// CategoryTotals aggregates amounts per category within the range
func (r *TransactionRepository) CategoryTotals(ctx context.Context, from, to time.Time) ([]domain.CategoryTotalDTO, error) {
	var rows []struct {
		Category string
		Type     domain.TransactionType
		Total    float64
		Count    int
	}

	err := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Select("category, type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("date BETWEEN ? AND ?", from, to).
		Group("category, type").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make([]domain.CategoryTotalDTO, len(rows))
	for i, row := range rows {
		totals[i] = domain.CategoryTotalDTO{
			Category: row.Category,
			Type:     row.Type,
			Total:    row.Total,
			Count:    row.Count,
		}
	}
	return totals, nil
}

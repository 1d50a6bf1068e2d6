package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) List(ctx context.Context, page, pageSize int, customerID *uuid.UUID, status domain.QuoteStatus) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{})

	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Customer").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&quotes).Error

	return quotes, total, err
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateWithItems inserts the quote and its lines inside tx. The caller
// owns the transaction so number allocation commits atomically with it.
func (r *QuoteRepository) CreateWithItems(ctx context.Context, tx *gorm.DB, quote *domain.Quote) error {
	return tx.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Quote{}, "id = ?", id).Error
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) List(ctx context.Context, page, pageSize int, customerID *uuid.UUID, status domain.DealStatus) ([]domain.Deal, int64, error) {
	var deals []domain.Deal
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Deal{})

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
		Find(&deals).Error

	return deals, total, err
}

func (r *DealRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).Preload("Customer").First(&deal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

// GetByIDForUpdate reads a deal with a row lock inside tx. Used by the
// close flows so two concurrent closes cannot both pass the status check.
func (r *DealRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&deal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) Create(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *DealRepository) Update(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Save(deal).Error
}

func (r *DealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Deal{}, "id = ?", id).Error
}

// ListByStatus returns all deals in one kanban column, newest first
func (r *DealRepository) ListByStatus(ctx context.Context, status domain.DealStatus) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&deals).Error
	return deals, err
}

// StageStats aggregates deals per status created within the range
func (r *DealRepository) StageStats(ctx context.Context, from, to time.Time) ([]domain.StageBreakdownDTO, error) {
	var rows []struct {
		Status     domain.DealStatus
		Count      int
		TotalValue float64
	}

	err := r.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(estimated_value), 0) AS total_value").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]domain.StageBreakdownDTO, len(rows))
	for i, row := range rows {
		stats[i] = domain.StageBreakdownDTO{
			Status:     row.Status,
			Count:      row.Count,
			TotalValue: row.TotalValue,
		}
	}
	return stats, nil
}

// WonValue sums actual_value over deals closed within the range
func (r *DealRepository) WonValue(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Select("COALESCE(SUM(actual_value), 0)").
		Where("status = ? AND closed_at BETWEEN ? AND ?", domain.DealStatusWon, from, to).
		Scan(&total).Error
	return total, err
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"gorm.io/gorm"
)

type OpportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func (r *OpportunityRepository) List(ctx context.Context, page, pageSize int, customerID *uuid.UUID, stage domain.OpportunityStage) ([]domain.Opportunity, int64, error) {
	var opportunities []domain.Opportunity
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Opportunity{})

	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if stage != "" {
		query = query.Where("stage = ?", stage)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Customer").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&opportunities).Error

	return opportunities, total, err
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	var opportunity domain.Opportunity
	err := r.db.WithContext(ctx).Preload("Customer").First(&opportunity, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &opportunity, nil
}

func (r *OpportunityRepository) Create(ctx context.Context, opportunity *domain.Opportunity) error {
	return r.db.WithContext(ctx).Create(opportunity).Error
}

func (r *OpportunityRepository) Update(ctx context.Context, opportunity *domain.Opportunity) error {
	return r.db.WithContext(ctx).Save(opportunity).Error
}

func (r *OpportunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Opportunity{}, "id = ?", id).Error
}

// FunnelStats aggregates open opportunities per stage within the range
func (r *OpportunityRepository) FunnelStats(ctx context.Context, from, to time.Time) ([]domain.FunnelStageDTO, error) {
	var rows []struct {
		Stage      domain.OpportunityStage
		Count      int
		TotalValue float64
	}

	err := r.db.WithContext(ctx).
		Model(&domain.Opportunity{}).
		Select("stage, COUNT(*) AS count, COALESCE(SUM(estimated_value), 0) AS total_value").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make([]domain.FunnelStageDTO, len(rows))
	for i, row := range rows {
		stats[i] = domain.FunnelStageDTO{
			Stage:      row.Stage,
			Count:      row.Count,
			TotalValue: row.TotalValue,
		}
	}
	return stats, nil
}

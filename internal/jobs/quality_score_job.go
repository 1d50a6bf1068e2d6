package jobs

import (
	"context"
	"fmt"

	"github.com/wm-metals/trade-api/internal/repository"
	"github.com/wm-metals/trade-api/internal/service"
	"go.uber.org/zap"
)

// QualityScoreJob recomputes every customer's data quality score.
// Scores are also refreshed on write; this pass catches rows touched
// by imports or migrations.
type QualityScoreJob struct {
	customerRepo *repository.CustomerRepository
	logger       *zap.Logger
}

func NewQualityScoreJob(customerRepo *repository.CustomerRepository, logger *zap.Logger) *QualityScoreJob {
	return &QualityScoreJob{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func (j *QualityScoreJob) Run(ctx context.Context) error {
	customers, err := j.customerRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list customers: %w", err)
	}

	updated := 0
	for i := range customers {
		customer := &customers[i]
		score := service.QualityScore(customer)
		if score == customer.QualityScore {
			continue
		}
		if err := j.customerRepo.UpdateQualityScore(ctx, customer.ID, score); err != nil {
			j.logger.Warn("failed to update quality score",
				zap.String("customer_id", customer.ID.String()),
				zap.Error(err))
			continue
		}
		updated++
	}

	j.logger.Info("quality scores recomputed",
		zap.Int("customers", len(customers)),
		zap.Int("updated", updated))

	return nil
}

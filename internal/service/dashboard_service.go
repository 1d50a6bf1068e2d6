package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wm-metals/trade-api/internal/cache"
	"github.com/wm-metals/trade-api/internal/daterange"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService computes the two dashboard aggregates. Results are
// cached per resolved range under the dashboard tags, so entity writes
// invalidate them through the realtime bridge.
type DashboardService struct {
	transactionRepo *repository.TransactionRepository
	dealRepo        *repository.DealRepository
	opportunityRepo *repository.OpportunityRepository
	store           *cache.Store
	logger          *zap.Logger
}

func NewDashboardService(
	transactionRepo *repository.TransactionRepository,
	dealRepo *repository.DealRepository,
	opportunityRepo *repository.OpportunityRepository,
	store *cache.Store,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		transactionRepo: transactionRepo,
		dealRepo:        dealRepo,
		opportunityRepo: opportunityRepo,
		store:           store,
		logger:          logger,
	}
}

// FinancialSummary totals the ledger over the resolved range
func (s *DashboardService) FinancialSummary(ctx context.Context, filter daterange.Filter, custom *daterange.Custom) (*domain.FinancialSummaryDTO, error) {
	r := daterange.Resolve(filter, time.Now(), custom)

	key := fmt.Sprintf("financial-summary:%s:%s", r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	if cached, ok := s.store.Get(key); ok {
		if summary, ok := cached.(*domain.FinancialSummaryDTO); ok {
			return summary, nil
		}
	}

	totals, err := s.transactionRepo.SummarizeRange(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}

	summary := &domain.FinancialSummaryDTO{
		RangeFrom: r.From.Format(time.RFC3339),
		RangeTo:   r.To.Format(time.RFC3339),
	}
	for _, t := range totals {
		switch t.Type {
		case domain.TransactionTypeReceita:
			summary.TotalReceitas += t.Total
			if t.Status == domain.TransactionStatusPaid {
				summary.PaidReceitas += t.Total
			} else {
				summary.PendingReceitas += t.Total
			}
		case domain.TransactionTypeDespesa:
			summary.TotalDespesas += t.Total
			if t.Status == domain.TransactionStatusPaid {
				summary.PaidDespesas += t.Total
			} else {
				summary.PendingDespesas += t.Total
			}
		}
	}
	summary.NetResult = summary.TotalReceitas - summary.TotalDespesas

	byCategory, err := s.transactionRepo.CategoryTotals(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	summary.ByCategory = byCategory

	s.store.Set(key, summary, cache.TagFinancialSummary)

	return summary, nil
}

// SalesAnalytics aggregates the pipeline over the resolved range
func (s *DashboardService) SalesAnalytics(ctx context.Context, filter daterange.Filter, custom *daterange.Custom) (*domain.SalesAnalyticsDTO, error) {
	r := daterange.Resolve(filter, time.Now(), custom)

	key := fmt.Sprintf("sales-analytics:%s:%s", r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	if cached, ok := s.store.Get(key); ok {
		if analytics, ok := cached.(*domain.SalesAnalyticsDTO); ok {
			return analytics, nil
		}
	}

	byStage, err := s.dealRepo.StageStats(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate deal stages: %w", err)
	}

	wonValue, err := s.dealRepo.WonValue(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("failed to sum won value: %w", err)
	}

	funnel, err := s.opportunityRepo.FunnelStats(ctx, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate funnel: %w", err)
	}

	analytics := &domain.SalesAnalyticsDTO{
		RangeFrom:    r.From.Format(time.RFC3339),
		RangeTo:      r.To.Format(time.RFC3339),
		WonValue:     wonValue,
		ByStage:      byStage,
		FunnelStages: funnel,
	}
	for _, stage := range byStage {
		analytics.TotalDeals += stage.Count
		switch stage.Status {
		case domain.DealStatusWon:
			analytics.WonDeals += stage.Count
		case domain.DealStatusLost:
			analytics.LostDeals += stage.Count
		default:
			analytics.OpenDeals += stage.Count
			analytics.PipelineValue += stage.TotalValue
		}
	}
	if closed := analytics.WonDeals + analytics.LostDeals; closed > 0 {
		analytics.ConversionRate = float64(analytics.WonDeals) / float64(closed)
	}

	s.store.Set(key, analytics, cache.TagSalesAnalytics)

	return analytics, nil
}

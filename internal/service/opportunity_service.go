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

// Allowed forward moves through the sales funnel. Won and lost are
// terminal.
var validStageTransitions = map[domain.OpportunityStage][]domain.OpportunityStage{
	domain.OpportunityStageProspecting:   {domain.OpportunityStageQualification, domain.OpportunityStageLost},
	domain.OpportunityStageQualification: {domain.OpportunityStageProposal, domain.OpportunityStageLost},
	domain.OpportunityStageProposal:      {domain.OpportunityStageNegotiation, domain.OpportunityStageLost},
	domain.OpportunityStageNegotiation:   {domain.OpportunityStageWon, domain.OpportunityStageLost},
	domain.OpportunityStageWon:           {},
	domain.OpportunityStageLost:          {},
}

// Default win probability per stage, applied when the client does not
// set one explicitly
var stageProbabilities = map[domain.OpportunityStage]int{
	domain.OpportunityStageProspecting:   10,
	domain.OpportunityStageQualification: 25,
	domain.OpportunityStageProposal:      50,
	domain.OpportunityStageNegotiation:   75,
	domain.OpportunityStageWon:           100,
	domain.OpportunityStageLost:          0,
}

type OpportunityService struct {
	opportunityRepo *repository.OpportunityRepository
	customerRepo    *repository.CustomerRepository
	hub             *realtime.Hub
	logger          *zap.Logger
}

func NewOpportunityService(
	opportunityRepo *repository.OpportunityRepository,
	customerRepo *repository.CustomerRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *OpportunityService {
	return &OpportunityService{
		opportunityRepo: opportunityRepo,
		customerRepo:    customerRepo,
		hub:             hub,
		logger:          logger,
	}
}

func (s *OpportunityService) List(ctx context.Context, page, pageSize int, customerID *uuid.UUID, stage domain.OpportunityStage) ([]domain.Opportunity, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	opportunities, total, err := s.opportunityRepo.List(ctx, page, pageSize, customerID, stage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list opportunities: %w", err)
	}
	return opportunities, total, nil
}

func (s *OpportunityService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	opportunity, err := s.opportunityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	return opportunity, nil
}

// Create inserts an opportunity after verifying the customer exists
func (s *OpportunityService) Create(ctx context.Context, req *domain.CreateOpportunityRequest) (*domain.Opportunity, error) {
	if _, err := s.customerRepo.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	probability := req.Probability
	if probability == 0 {
		probability = stageProbabilities[domain.OpportunityStageProspecting]
	}

	opportunity := &domain.Opportunity{
		Title:             req.Title,
		Description:       req.Description,
		Stage:             domain.OpportunityStageProspecting,
		EstimatedValue:    req.EstimatedValue,
		Probability:       probability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		CustomerID:        req.CustomerID,
	}

	if err := s.opportunityRepo.Create(ctx, opportunity); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "opportunities", Op: realtime.OpInsert, After: opportunity})

	return opportunity, nil
}

func (s *OpportunityService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateOpportunityRequest) (*domain.Opportunity, error) {
	opportunity, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *opportunity

	if req.Stage != nil {
		newStage := domain.OpportunityStage(*req.Stage)
		if newStage != opportunity.Stage {
			if !isValidStageTransition(opportunity.Stage, newStage) {
				return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, opportunity.Stage, newStage)
			}
			opportunity.Stage = newStage
			opportunity.Probability = stageProbabilities[newStage]
		}
	}
	if req.Title != nil {
		opportunity.Title = *req.Title
	}
	if req.Description != nil {
		opportunity.Description = *req.Description
	}
	if req.EstimatedValue != nil {
		opportunity.EstimatedValue = *req.EstimatedValue
	}
	if req.Probability != nil {
		opportunity.Probability = *req.Probability
	}
	if req.ExpectedCloseDate != nil {
		opportunity.ExpectedCloseDate = req.ExpectedCloseDate
	}

	if err := s.opportunityRepo.Update(ctx, opportunity); err != nil {
		return nil, fmt.Errorf("failed to update opportunity: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "opportunities", Op: realtime.OpUpdate, Before: &before, After: opportunity})

	return opportunity, nil
}

func (s *OpportunityService) Delete(ctx context.Context, id uuid.UUID) error {
	opportunity, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.opportunityRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "opportunities", Op: realtime.OpDelete, Before: opportunity})

	return nil
}

func isValidStageTransition(from, to domain.OpportunityStage) bool {
	for _, allowed := range validStageTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

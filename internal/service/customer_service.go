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

// CustomerService manages the customer lifecycle. Creating a customer
// also opens a first-contact opportunity; both inserts commit in one
// transaction so a customer never exists without its opening
// opportunity.
type CustomerService struct {
	db              *gorm.DB
	customerRepo    *repository.CustomerRepository
	opportunityRepo *repository.OpportunityRepository
	hub             *realtime.Hub
	logger          *zap.Logger
}

func NewCustomerService(
	db *gorm.DB,
	customerRepo *repository.CustomerRepository,
	opportunityRepo *repository.OpportunityRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		db:              db,
		customerRepo:    customerRepo,
		opportunityRepo: opportunityRepo,
		hub:             hub,
		logger:          logger,
	}
}

func (s *CustomerService) List(ctx context.Context, page, pageSize int, search string, status domain.CustomerStatus, segment domain.CustomerSegment) ([]domain.Customer, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	customers, total, err := s.customerRepo.List(ctx, page, pageSize, search, status, segment)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// Create inserts the customer and its first-contact opportunity in one
// transaction and reports success only after both commit
func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.Customer, error) {
	customer := &domain.Customer{
		Name:          req.Name,
		Document:      req.Document,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		ContactPerson: req.ContactPerson,
		Status:        domain.CustomerStatusProspect,
		Segment:       domain.CustomerSegment(req.Segment),
		Notes:         req.Notes,
	}
	customer.QualityScore = QualityScore(customer)

	var opportunity *domain.Opportunity

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(customer).Error; err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}

		opportunity = &domain.Opportunity{
			Title:      fmt.Sprintf("First contact - %s", customer.Name),
			Stage:      domain.OpportunityStageProspecting,
			CustomerID: customer.ID,
		}
		if err := tx.Create(opportunity).Error; err != nil {
			return fmt.Errorf("failed to create opening opportunity: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer created with opening opportunity",
		zap.String("customer_id", customer.ID.String()),
		zap.String("opportunity_id", opportunity.ID.String()),
	)

	s.hub.Publish(realtime.Event{Table: "customers", Op: realtime.OpInsert, After: customer})
	s.hub.Publish(realtime.Event{Table: "opportunities", Op: realtime.OpInsert, After: opportunity})

	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.Customer, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *customer

	if req.Status != nil {
		newStatus := domain.CustomerStatus(*req.Status)
		if newStatus != customer.Status && !isValidCustomerTransition(customer.Status, newStatus) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, customer.Status, newStatus)
		}
		customer.Status = newStatus
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Document != nil {
		customer.Document = *req.Document
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.City != nil {
		customer.City = *req.City
	}
	if req.State != nil {
		customer.State = *req.State
	}
	if req.PostalCode != nil {
		customer.PostalCode = *req.PostalCode
	}
	if req.ContactPerson != nil {
		customer.ContactPerson = *req.ContactPerson
	}
	if req.Segment != nil {
		customer.Segment = domain.CustomerSegment(*req.Segment)
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	customer.QualityScore = QualityScore(customer)

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "customers", Op: realtime.OpUpdate, Before: &before, After: customer})

	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "customers", Op: realtime.OpDelete, Before: customer})

	return nil
}

func isValidCustomerTransition(from, to domain.CustomerStatus) bool {
	for _, allowed := range domain.ValidCustomerTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// QualityScore rates a customer record 0-100 by field completeness.
// Contact data weighs more than address data.
func QualityScore(c *domain.Customer) int {
	score := 0
	if c.Name != "" {
		score += 20
	}
	if c.Document != "" {
		score += 15
	}
	if c.Email != "" {
		score += 15
	}
	if c.Phone != "" {
		score += 15
	}
	if c.ContactPerson != "" {
		score += 10
	}
	if c.Address != "" {
		score += 10
	}
	if c.City != "" && c.State != "" {
		score += 10
	}
	if c.Segment != "" {
		score += 5
	}
	return score
}

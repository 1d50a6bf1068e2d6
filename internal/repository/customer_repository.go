package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) List(ctx context.Context, page, pageSize int, search string, status domain.CustomerStatus, segment domain.CustomerSegment) ([]domain.Customer, int64, error) {
	var customers []domain.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Customer{})

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR document ILIKE ? OR email ILIKE ?", pattern, pattern, pattern)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if segment != "" {
		query = query.Where("segment = ?", segment)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&customers).Error

	return customers, total, err
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Customer{}, "id = ?", id).Error
}

func (r *CustomerRepository) Search(ctx context.Context, query string, limit int) ([]domain.Customer, error) {
	var customers []domain.Customer
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR document ILIKE ?", pattern, pattern).
		Limit(limit).
		Order("name ASC").
		Find(&customers).Error
	return customers, err
}

// ListAll returns every customer; used by the nightly quality rescore job
func (r *CustomerRepository) ListAll(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&customers).Error
	return customers, err
}

// UpdateQualityScore writes only the score column
func (r *CustomerRepository) UpdateQualityScore(ctx context.Context, id uuid.UUID, score int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		Update("quality_score", score).Error
}

func (r *CustomerRepository) CountByStatus(ctx context.Context, status domain.CustomerStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context, page, pageSize int, status domain.TaskStatus, customerID, assigneeID *uuid.UUID) ([]domain.Task, int64, error) {
	var tasks []domain.Task
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Task{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if assigneeID != nil {
		query = query.Where("assignee_id = ?", *assigneeID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Customer").
		Offset(offset).Limit(pageSize).
		Order("due_date ASC NULLS LAST, created_at DESC").
		Find(&tasks).Error

	return tasks, total, err
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).Preload("Customer").First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id).Error
}

// ListDueBetween returns open tasks whose due date falls inside the
// window; used by the reminder job
func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date IS NOT NULL AND due_date BETWEEN ? AND ?", domain.TaskStatusOpen, from, to).
		Order("due_date ASC").
		Find(&tasks).Error
	return tasks, err
}

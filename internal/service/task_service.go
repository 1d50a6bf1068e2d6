package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TaskService struct {
	taskRepo *repository.TaskRepository
	hub      *realtime.Hub
	logger   *zap.Logger
}

func NewTaskService(taskRepo *repository.TaskRepository, hub *realtime.Hub, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		hub:      hub,
		logger:   logger,
	}
}

func (s *TaskService) List(ctx context.Context, page, pageSize int, status domain.TaskStatus, customerID, assigneeID *uuid.UUID) ([]domain.Task, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	tasks, total, err := s.taskRepo.List(ctx, page, pageSize, status, customerID, assigneeID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, req *domain.CreateTaskRequest, assigneeID *uuid.UUID) (*domain.Task, error) {
	priority := domain.TaskPriority(req.Priority)
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatusOpen,
		Priority:    priority,
		DueDate:     req.DueDate,
		CustomerID:  req.CustomerID,
		AssigneeID:  assigneeID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "tasks", Op: realtime.OpInsert, After: task})

	return task, nil
}

func (s *TaskService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *task

	if req.Status != nil {
		newStatus := domain.TaskStatus(*req.Status)
		if newStatus == domain.TaskStatusDone && task.Status != domain.TaskStatusDone {
			now := time.Now()
			task.CompletedAt = &now
		}
		if newStatus == domain.TaskStatusOpen {
			task.CompletedAt = nil
		}
		task.Status = newStatus
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = domain.TaskPriority(*req.Priority)
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "tasks", Op: realtime.OpUpdate, Before: &before, After: task})

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "tasks", Op: realtime.OpDelete, Before: task})

	return nil
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/auth"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/mapper"
	"github.com/wm-metals/trade-api/internal/service"
	"github.com/wm-metals/trade-api/internal/validation"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService *service.TaskService
	validator   *validation.Validator
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, validator *validation.Validator, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator,
		logger:      logger,
	}
}

// List godoc
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(open, done)
// @Param customerId query string false "Filter by customer"
// @Param assigneeId query string false "Filter by assignee"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.TaskDTO}
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	status := domain.TaskStatus(r.URL.Query().Get("status"))
	customerID := queryUUID(r, "customerId")
	assigneeID := queryUUID(r, "assigneeId")

	tasks, total, err := h.taskService.List(r.Context(), page, pageSize, status, customerID, assigneeID)
	if err != nil {
		h.logger.Error("failed to list tasks", zap.Error(err))
		respondServiceError(w, err, "Failed to list tasks")
		return
	}

	respondJSON(w, http.StatusOK, mapper.Paginate(mapper.ToTaskDTOs(tasks), page, pageSize, total))
}

// GetByID godoc
// @Summary Get task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} domain.TaskDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get task")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToTaskDTO(task))
}

// Create godoc
// @Summary Create task
// @Description The task is assigned to the requesting user
// @Tags Tasks
// @Accept json
// @Produce json
// @Param task body domain.CreateTaskRequest true "Task payload"
// @Success 201 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "task", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	var assigneeID *uuid.UUID
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		assigneeID = &userCtx.UserID
	}

	task, err := h.taskService.Create(r.Context(), &req, assigneeID)
	if err != nil {
		h.logger.Error("failed to create task", zap.Error(err))
		respondServiceError(w, err, "Failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToTaskDTO(task))
}

// Update godoc
// @Summary Update task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param task body domain.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} domain.TaskDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req domain.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "task", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	task, err := h.taskService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to update task")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToTaskDTO(task))
}

// Delete godoc
// @Summary Delete task
// @Tags Tasks
// @Param id path string true "Task ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.taskService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete task")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

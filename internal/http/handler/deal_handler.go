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

type DealHandler struct {
	dealService *service.DealService
	validator   *validation.Validator
	logger      *zap.Logger
}

func NewDealHandler(dealService *service.DealService, validator *validation.Validator, logger *zap.Logger) *DealHandler {
	return &DealHandler{
		dealService: dealService,
		validator:   validator,
		logger:      logger,
	}
}

// List godoc
// @Summary List deals
// @Tags Deals
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param customerId query string false "Filter by customer"
// @Param status query string false "Filter by status" Enums(qualified, won, lost)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.DealDTO}
// @Security BearerAuth
// @Router /deals [get]
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	customerID := queryUUID(r, "customerId")
	status := domain.DealStatus(r.URL.Query().Get("status"))

	deals, total, err := h.dealService.List(r.Context(), page, pageSize, customerID, status)
	if err != nil {
		h.logger.Error("failed to list deals", zap.Error(err))
		respondServiceError(w, err, "Failed to list deals")
		return
	}

	respondJSON(w, http.StatusOK, mapper.Paginate(mapper.ToDealDTOs(deals), page, pageSize, total))
}

// Kanban godoc
// @Summary Deal board
// @Description All deals grouped into columns by status
// @Tags Deals
// @Produce json
// @Success 200 {object} domain.DealKanbanDTO
// @Security BearerAuth
// @Router /deals/kanban [get]
func (h *DealHandler) Kanban(w http.ResponseWriter, r *http.Request) {
	board, err := h.dealService.Kanban(r.Context())
	if err != nil {
		h.logger.Error("failed to build deal board", zap.Error(err))
		respondServiceError(w, err, "Failed to load deal board")
		return
	}

	respondJSON(w, http.StatusOK, board)
}

// GetByID godoc
// @Summary Get deal
// @Tags Deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} domain.DealDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /deals/{id} [get]
func (h *DealHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	deal, err := h.dealService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get deal")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToDealDTO(deal))
}

// Create godoc
// @Summary Create deal
// @Tags Deals
// @Accept json
// @Produce json
// @Param deal body domain.CreateDealRequest true "Deal payload"
// @Success 201 {object} domain.DealDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /deals [post]
func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "deal", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	var ownerID *uuid.UUID
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		ownerID = &userCtx.UserID
	}

	deal, err := h.dealService.Create(r.Context(), &req, ownerID)
	if err != nil {
		h.logger.Error("failed to create deal", zap.Error(err))
		respondServiceError(w, err, "Failed to create deal")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToDealDTO(deal))
}

// Update godoc
// @Summary Update deal
// @Description Partial update; closed deals cannot be edited
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param deal body domain.UpdateDealRequest true "Fields to update"
// @Success 200 {object} domain.DealDTO
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /deals/{id} [put]
func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	var req domain.UpdateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "deal", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	deal, err := h.dealService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to update deal")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToDealDTO(deal))
}

// CloseWon godoc
// @Summary Close deal as won
// @Description Marks the deal won and books the revenue transaction atomically
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param close body domain.CloseDealWonRequest true "Actual value"
// @Success 200 {object} domain.DealDTO
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /deals/{id}/close-won [post]
func (h *DealHandler) CloseWon(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	var req domain.CloseDealWonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "deal", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	deal, err := h.dealService.CloseWon(r.Context(), id, req.ActualValue)
	if err != nil {
		respondServiceError(w, err, "Failed to close deal")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToDealDTO(deal))
}

// CloseLost godoc
// @Summary Close deal as lost
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param close body domain.CloseDealLostRequest true "Lost reason"
// @Success 200 {object} domain.DealDTO
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /deals/{id}/close-lost [post]
func (h *DealHandler) CloseLost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	var req domain.CloseDealLostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "deal", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	deal, err := h.dealService.CloseLost(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, err, "Failed to close deal")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToDealDTO(deal))
}

// Delete godoc
// @Summary Delete deal
// @Tags Deals
// @Param id path string true "Deal ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /deals/{id} [delete]
func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID")
		return
	}

	if err := h.dealService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete deal")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

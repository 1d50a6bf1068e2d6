package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/mapper"
	"github.com/wm-metals/trade-api/internal/service"
	"github.com/wm-metals/trade-api/internal/validation"
	"go.uber.org/zap"
)

type OpportunityHandler struct {
	opportunityService *service.OpportunityService
	validator          *validation.Validator
	logger             *zap.Logger
}

func NewOpportunityHandler(opportunityService *service.OpportunityService, validator *validation.Validator, logger *zap.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		opportunityService: opportunityService,
		validator:          validator,
		logger:             logger,
	}
}

// List godoc
// @Summary List opportunities
// @Tags Opportunities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param customerId query string false "Filter by customer"
// @Param stage query string false "Filter by stage" Enums(prospecting, qualification, proposal, negotiation, won, lost)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.OpportunityDTO}
// @Security BearerAuth
// @Router /opportunities [get]
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	customerID := queryUUID(r, "customerId")
	stage := domain.OpportunityStage(r.URL.Query().Get("stage"))

	opportunities, total, err := h.opportunityService.List(r.Context(), page, pageSize, customerID, stage)
	if err != nil {
		h.logger.Error("failed to list opportunities", zap.Error(err))
		respondServiceError(w, err, "Failed to list opportunities")
		return
	}

	respondJSON(w, http.StatusOK, mapper.Paginate(mapper.ToOpportunityDTOs(opportunities), page, pageSize, total))
}

// GetByID godoc
// @Summary Get opportunity
// @Tags Opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} domain.OpportunityDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /opportunities/{id} [get]
func (h *OpportunityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity ID")
		return
	}

	opportunity, err := h.opportunityService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get opportunity")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToOpportunityDTO(opportunity))
}

// Create godoc
// @Summary Create opportunity
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param opportunity body domain.CreateOpportunityRequest true "Opportunity payload"
// @Success 201 {object} domain.OpportunityDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /opportunities [post]
func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOpportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "opportunity", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	opportunity, err := h.opportunityService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create opportunity", zap.Error(err))
		respondServiceError(w, err, "Failed to create opportunity")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToOpportunityDTO(opportunity))
}

// Update godoc
// @Summary Update opportunity
// @Description Partial update; stage changes must move forward or to lost
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID"
// @Param opportunity body domain.UpdateOpportunityRequest true "Fields to update"
// @Success 200 {object} domain.OpportunityDTO
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /opportunities/{id} [put]
func (h *OpportunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity ID")
		return
	}

	var req domain.UpdateOpportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "opportunity", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	opportunity, err := h.opportunityService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to update opportunity")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToOpportunityDTO(opportunity))
}

// Delete godoc
// @Summary Delete opportunity
// @Tags Opportunities
// @Param id path string true "Opportunity ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /opportunities/{id} [delete]
func (h *OpportunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity ID")
		return
	}

	if err := h.opportunityService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete opportunity")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

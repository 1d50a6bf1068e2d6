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

type CustomerHandler struct {
	customerService *service.CustomerService
	validator       *validation.Validator
	logger          *zap.Logger
}

func NewCustomerHandler(customerService *service.CustomerService, validator *validation.Validator, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		validator:       validator,
		logger:          logger,
	}
}

// List godoc
// @Summary List customers
// @Description Get paginated list of customers with optional filters
// @Tags Customers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name, document or email"
// @Param status query string false "Filter by status" Enums(prospect, qualified, negotiating, customer, inactive)
// @Param segment query string false "Filter by segment" Enums(steel, aluminum, copper, scrap, alloys, wholesale, other)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.CustomerDTO}
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	search := r.URL.Query().Get("search")
	status := domain.CustomerStatus(r.URL.Query().Get("status"))
	segment := domain.CustomerSegment(r.URL.Query().Get("segment"))

	customers, total, err := h.customerService.List(r.Context(), page, pageSize, search, status, segment)
	if err != nil {
		h.logger.Error("failed to list customers", zap.Error(err))
		respondServiceError(w, err, "Failed to list customers")
		return
	}

	respondJSON(w, http.StatusOK, mapper.Paginate(mapper.ToCustomerDTOs(customers), page, pageSize, total))
}

// GetByID godoc
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} domain.CustomerDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	customer, err := h.customerService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get customer")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCustomerDTO(customer))
}

// Create godoc
// @Summary Create customer
// @Description Creates the customer and an initial prospecting opportunity
// @Tags Customers
// @Accept json
// @Produce json
// @Param customer body domain.CreateCustomerRequest true "Customer payload"
// @Success 201 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "customer", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	customer, err := h.customerService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create customer", zap.Error(err))
		respondServiceError(w, err, "Failed to create customer")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToCustomerDTO(customer))
}

// Update godoc
// @Summary Update customer
// @Description Partial update; status changes must follow the lifecycle
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param customer body domain.UpdateCustomerRequest true "Fields to update"
// @Success 200 {object} domain.CustomerDTO
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /customers/{id} [put]
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	var req domain.UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "customer", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	customer, err := h.customerService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to update customer")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCustomerDTO(customer))
}

// Delete godoc
// @Summary Delete customer
// @Tags Customers
// @Param id path string true "Customer ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /customers/{id} [delete]
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	if err := h.customerService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete customer")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

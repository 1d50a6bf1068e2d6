package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/mapper"
	"github.com/wm-metals/trade-api/internal/service"
	"github.com/wm-metals/trade-api/internal/validation"
	"go.uber.org/zap"
)

type QuoteHandler struct {
	quoteService *service.QuoteService
	validator    *validation.Validator
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, validator *validation.Validator, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		validator:    validator,
		logger:       logger,
	}
}

// List godoc
// @Summary List quotes
// @Tags Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param customerId query string false "Filter by customer"
// @Param status query string false "Filter by status" Enums(draft, sent, accepted, rejected, expired)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuoteDTO}
// @Security BearerAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	customerID := queryUUID(r, "customerId")
	status := domain.QuoteStatus(r.URL.Query().Get("status"))

	quotes, total, err := h.quoteService.List(r.Context(), page, pageSize, customerID, status)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		respondServiceError(w, err, "Failed to list quotes")
		return
	}

	respondJSON(w, http.StatusOK, mapper.Paginate(mapper.ToQuoteDTOs(quotes), page, pageSize, total))
}

// GetByID godoc
// @Summary Get quote
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get quote")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote))
}

// Create godoc
// @Summary Create quote
// @Description Totals are computed server-side; a mismatching client total is rejected
// @Tags Quotes
// @Accept json
// @Produce json
// @Param quote body domain.CreateQuoteRequest true "Quote payload"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "quote", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create quote", zap.Error(err))
		respondServiceError(w, err, "Failed to create quote")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToQuoteDTO(quote))
}

type updateQuoteStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent accepted rejected expired"`
}

// UpdateStatus godoc
// @Summary Update quote status
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param status body handler.updateQuoteStatusRequest true "New status"
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id}/status [put]
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var req updateQuoteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "quote", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	quote, err := h.quoteService.UpdateStatus(r.Context(), id, domain.QuoteStatus(req.Status))
	if err != nil {
		respondServiceError(w, err, "Failed to update quote status")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote))
}

// PDF godoc
// @Summary Render quote PDF
// @Description Renders the quote document and archives a copy
// @Tags Quotes
// @Produce application/pdf
// @Param id path string true "Quote ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id}/pdf [get]
func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	data, quote, err := h.quoteService.RenderPDF(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to render quote")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, quote.Number))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Delete godoc
// @Summary Delete quote
// @Tags Quotes
// @Param id path string true "Quote ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete quote")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/auth"
	"github.com/wm-metals/trade-api/internal/config"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/mapper"
	"github.com/wm-metals/trade-api/internal/repository"
	"github.com/wm-metals/trade-api/internal/service"
	"github.com/wm-metals/trade-api/internal/validation"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
	importService      *service.ImportService
	validator          *validation.Validator
	maxUploadBytes     int64
	logger             *zap.Logger
}

func NewTransactionHandler(
	transactionService *service.TransactionService,
	importService *service.ImportService,
	validator *validation.Validator,
	storageCfg *config.StorageConfig,
	logger *zap.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		importService:      importService,
		validator:          validator,
		maxUploadBytes:     storageCfg.MaxUploadSizeMB * 1024 * 1024,
		logger:             logger,
	}
}

// List godoc
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param type query string false "Filter by type" Enums(receita, despesa)
// @Param status query string false "Filter by status" Enums(paid, pending)
// @Param category query string false "Filter by category"
// @Param customerId query string false "Filter by customer"
// @Param dealId query string false "Filter by deal"
// @Param from query string false "Start date (RFC3339)"
// @Param to query string false "End date (RFC3339)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.TransactionDTO}
// @Security BearerAuth
// @Router /transactions [get]
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	filter := repository.TransactionFilter{
		Type:       domain.TransactionType(r.URL.Query().Get("type")),
		Status:     domain.TransactionStatus(r.URL.Query().Get("status")),
		Category:   r.URL.Query().Get("category"),
		CustomerID: queryUUID(r, "customerId"),
		DealID:     queryUUID(r, "dealId"),
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = t
		}
	}

	transactions, total, err := h.transactionService.List(r.Context(), page, pageSize, filter)
	if err != nil {
		h.logger.Error("failed to list transactions", zap.Error(err))
		respondServiceError(w, err, "Failed to list transactions")
		return
	}

	respondJSON(w, http.StatusOK, mapper.Paginate(mapper.ToTransactionDTOs(transactions), page, pageSize, total))
}

// GetByID godoc
// @Summary Get transaction
// @Tags Transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} domain.TransactionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	transaction, err := h.transactionService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, "Failed to get transaction")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToTransactionDTO(transaction))
}

// Create godoc
// @Summary Create transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Param transaction body domain.CreateTransactionRequest true "Transaction payload"
// @Success 201 {object} domain.TransactionDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /transactions [post]
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "transaction", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	transaction, err := h.transactionService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create transaction", zap.Error(err))
		respondServiceError(w, err, "Failed to create transaction")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToTransactionDTO(transaction))
}

// Update godoc
// @Summary Update transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param transaction body domain.UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} domain.TransactionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /transactions/{id} [put]
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	var req domain.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if result := h.validator.Validate(r.Context(), "transaction", &req); !result.Valid {
		respondValidationResult(w, result)
		return
	}

	transaction, err := h.transactionService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to update transaction")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToTransactionDTO(transaction))
}

// Delete godoc
// @Summary Delete transaction
// @Tags Transactions
// @Param id path string true "Transaction ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	if err := h.transactionService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err, "Failed to delete transaction")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Import godoc
// @Summary Import transactions from CSV
// @Description Multipart upload; parses rows into transactions and reports totals
// @Tags Transactions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} domain.ImportResultDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /transactions/import [post]
func (h *TransactionHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid or oversized multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	var uploadedBy *uuid.UUID
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		uploadedBy = &userCtx.UserID
	}

	contentType := header.Header.Get("Content-Type")
	result, err := h.importService.ImportTransactions(r.Context(), header.Filename, contentType, file, uploadedBy)
	if err != nil {
		h.logger.Error("transaction import failed", zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

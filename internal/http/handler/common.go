package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/service"
	"github.com/wm-metals/trade-api/internal/validation"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// respondValidationResult sends the field error map from a failed
// validation pass
func respondValidationResult(w http.ResponseWriter, result validation.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: result.Errors,
	})
}

// respondServiceError maps service sentinel errors to HTTP statuses.
// Unknown errors become a 500 with a generic message.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, service.ErrCustomerNotFound):
		respondWithError(w, http.StatusBadRequest, "Customer does not exist")
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrDealAlreadyClosed):
		respondWithError(w, http.StatusConflict, "Deal is already closed")
	case errors.Is(err, service.ErrTotalMismatch):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		respondWithError(w, http.StatusForbidden, "Resource belongs to another user")
	case errors.Is(err, service.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return domain.ErrorTypeForbidden
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	default:
		return domain.ErrorTypeInternal
	}
}

// idParam parses the {id} URL parameter as a UUID
func idParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

func pageParams(r *http.Request) (int, int) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 20)
	return page, pageSize
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func queryUUID(r *http.Request, name string) *uuid.UUID {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

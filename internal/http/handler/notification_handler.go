package handler

import (
	"net/http"

	"github.com/wm-metals/trade-api/internal/auth"
	"github.com/wm-metals/trade-api/internal/mapper"
	"github.com/wm-metals/trade-api/internal/service"
	"go.uber.org/zap"
)

// NotificationHandler serves the requesting user's notifications only;
// the user comes from the auth context, never from the URL.
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List godoc
// @Summary List my notifications
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.NotificationDTO}
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())
	page, pageSize := pageParams(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, total, err := h.notificationService.ListByUser(r.Context(), userCtx.UserID, page, pageSize, unreadOnly)
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		respondServiceError(w, err, "Failed to list notifications")
		return
	}

	respondJSON(w, http.StatusOK, mapper.Paginate(mapper.ToNotificationDTOs(notifications), page, pageSize, total))
}

// UnreadCount godoc
// @Summary Count my unread notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]int
// @Security BearerAuth
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	count, err := h.notificationService.CountUnread(r.Context(), userCtx.UserID)
	if err != nil {
		respondServiceError(w, err, "Failed to count notifications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarkAsRead godoc
// @Summary Mark notification read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkAsRead(r.Context(), userCtx.UserID, id); err != nil {
		respondServiceError(w, err, "Failed to mark notification as read")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// MarkAllAsRead godoc
// @Summary Mark all my notifications read
// @Tags Notifications
// @Success 204
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	if err := h.notificationService.MarkAllAsRead(r.Context(), userCtx.UserID); err != nil {
		respondServiceError(w, err, "Failed to mark notifications as read")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Delete godoc
// @Summary Delete notification
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.notificationService.Delete(r.Context(), userCtx.UserID, id); err != nil {
		respondServiceError(w, err, "Failed to delete notification")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

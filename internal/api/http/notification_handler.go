package http

import (
	"fmt"
	"net/http"

	"github.com/junusg25/kamer-modul-sub006/internal/domain"
	"github.com/junusg25/kamer-modul-sub006/internal/service"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := queryInt32(q.Get("user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if userID == 0 {
		writeError(w, fmt.Errorf("user_id is required: %w", domain.ErrInvalidInput))
		return
	}
	rawPage, rawPageSize, err := queryPage(q)
	if err != nil {
		writeError(w, err)
		return
	}
	page, pageSize := defaultPage(rawPage, rawPageSize)
	notifications, total, err := h.svc.List(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, listResponse{Data: notifications, Total: total, Page: page, PageSize: pageSize})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := queryInt32(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if userID == 0 {
		writeError(w, fmt.Errorf("user_id is required: %w", domain.ErrInvalidInput))
		return
	}
	if err := h.svc.MarkAsRead(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

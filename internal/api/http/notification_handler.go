package http

import (
	"net/http"

	"blooddrive-backend/internal/domain"
)

type notificationPage struct {
	Notifications []domain.Notification `json:"notifications"`
	TotalCount    int32                 `json:"total_count"`
}

func (h *handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt32(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt32(r, "page_size", 20)
	if err != nil {
		writeError(w, r, err)
		return
	}

	notes, count, err := h.svc.Notifications.GetNotifications(r.Context(), actor(r).UserID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notificationPage{Notifications: notes, TotalCount: count})
}

func (h *handler) markNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Notifications.MarkAsRead(r.Context(), actor(r).UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

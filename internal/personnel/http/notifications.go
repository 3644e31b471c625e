package http

import (
	"net/http"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/service"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
)

type NotificationsHandler struct {
	NotificationService *service.NotificationService
}

// HandleList handles GET /v1/notifications
//
//	@Summary	My notifications
//	@Tags		Notifications
//	@Produce	json
//	@Param		page	query		int	false	"Page number"
//	@Success	200		{object}	pnpsdk.Inbox
//	@Router		/v1/notifications [get].
func (h *NotificationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	inbox, err := h.NotificationService.List(r.Context(), identity(r).UserID, pageParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, inbox)
}

// HandleMarkRead handles POST /v1/notifications/{id}/read
//
//	@Summary	Mark a notification read
//	@Tags		Notifications
//	@Param		id	path	int	true	"Notification ID"
//	@Success	204	"Marked"
//	@Failure	404	{object}	pnpsdk.ErrorResponse
//	@Router		/v1/notifications/{id}/read [post].
func (h *NotificationsHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.NotificationService.MarkRead(r.Context(), identity(r).UserID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMarkAllRead handles POST /v1/notifications/read-all
//
//	@Summary	Mark every notification read
//	@Tags		Notifications
//	@Success	204	"Marked"
//	@Router		/v1/notifications/read-all [post].
func (h *NotificationsHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if _, err := h.NotificationService.MarkAllRead(r.Context(), identity(r).UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

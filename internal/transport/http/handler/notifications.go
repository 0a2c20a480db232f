package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/contoso-notify/internal/application/notification"
	"github.com/contoso-notify/internal/domain"
	"github.com/contoso-notify/internal/pkg/validate"
	"github.com/contoso-notify/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// maxEventBody caps producer payloads; an EntityChange is a few hundred bytes.
const maxEventBody = 16 << 10

// NotificationHandler handles the notification feed and producer endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List drains up to notification.MaxBatch pending notifications. Failures
// are reported in the body with a 200 status.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.svc.Drain(r.Context(), notification.MaxBatch)
	if err != nil {
		slog.Error("error retrieving notifications", "err", err)
		writeFailure(w, http.StatusOK, "Error retrieving notifications")
		return
	}
	writeJSON(w, http.StatusOK, FeedEnvelope{
		Success:       true,
		Notifications: notifications,
		Count:         len(notifications),
	})
}

// MarkAsRead accepts the id as a URL param ({id}) or, for the legacy form
// route, as an "id" query/form value.
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.FormValue("id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	h.svc.MarkAsRead(r.Context(), id)
	writeJSON(w, http.StatusOK, ResultEnvelope{Success: true})
}

// Publish lets a mutation handler in another process report a committed
// change. The response says whether it was queued; it is never an error
// for a well-formed change.
func (h *NotificationHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var change domain.EntityChange
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&change); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(change); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		slog.Debug("entity change received", "producer", claims.Producer,
			"entity_type", change.EntityType, "operation", change.Operation)
	}
	queued := h.svc.Send(r.Context(), change)
	writeJSON(w, http.StatusAccepted, ResultEnvelope{Success: true, Queued: &queued})
}

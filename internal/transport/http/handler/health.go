package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// QueueDepth reports how many notifications are waiting in the transport.
type QueueDepth func(ctx context.Context) (int64, error)

// TransportEnvelope is the /health-check/transport body. Pending is only
// present for transports that can count their backlog.
type TransportEnvelope struct {
	Message string `json:"message"`
	Pending *int64 `json:"pending,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthHandler handles health-check endpoints.
type HealthHandler struct {
	transport string
	depth     QueueDepth
}

// NewHealthHandler takes an optional depth func; nil omits the backlog.
func NewHealthHandler(transport string, depth QueueDepth) *HealthHandler {
	return &HealthHandler{transport: transport, depth: depth}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "transport":
		h.transportStatus(w, r)
	default:
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: "unknown action"})
	}
}

func (h *HealthHandler) transportStatus(w http.ResponseWriter, r *http.Request) {
	env := TransportEnvelope{Message: h.transport}
	if h.depth == nil {
		writeJSON(w, http.StatusOK, env)
		return
	}
	n, err := h.depth(r.Context())
	if err != nil {
		slog.Warn("queue depth unavailable", "transport", h.transport, "err", err)
		env.Error = "queue depth unavailable"
		writeJSON(w, http.StatusServiceUnavailable, env)
		return
	}
	env.Pending = &n
	writeJSON(w, http.StatusOK, env)
}

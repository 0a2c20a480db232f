package handler

import (
	"encoding/json"
	"net/http"

	"github.com/contoso-notify/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FeedEnvelope is the delivery endpoint's success body. Notifications is
// never null so pollers can iterate without a nil check.
type FeedEnvelope struct {
	Success       bool                  `json:"success"`
	Notifications []domain.Notification `json:"notifications"`
	Count         int                   `json:"count"`
}

// ResultEnvelope reports success or failure in the body; the status line
// is not the signal clients should branch on.
type ResultEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Queued  *bool  `json:"queued,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ResultEnvelope{Success: false, Message: msg})
}

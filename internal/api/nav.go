package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"smartnav/pkg/model"
)

// NavResponse is the API response structure.
type NavResponse struct {
	model.NavUpdate
	TripID string `json:"trip_id,omitempty"`
}

// NavHandler serves the latest navigation update.
type NavHandler struct {
	mu     sync.RWMutex
	update model.NavUpdate
	tripID string
	has    bool
}

func NewNavHandler() *NavHandler {
	return &NavHandler{update: model.NavUpdate{State: model.StateIdle}}
}

// Update implements the session sink.
func (h *NavHandler) Update(tripID string, u *model.NavUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.update = *u
	h.tripID = tripID
	h.has = true
}

// SetState records a lifecycle state outside of fix processing,
// e.g. when the session stops or settles back to idle.
func (h *NavHandler) SetState(s model.NavState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.update.State = s
	h.update.OffRouteEvent = false
	h.update.ArrivedEvent = false
}

func (h *NavHandler) handleNav(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := NavResponse{
		NavUpdate: h.update,
		TripID:    h.tripID,
	}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode nav response", "error", err)
	}
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"smartnav/pkg/model"
	"smartnav/pkg/store"
)

// TripHandler handles trip-related API endpoints.
type TripHandler struct {
	store store.Store
}

// NewTripHandler creates a new TripHandler. Returns nil if the store is missing.
func NewTripHandler(st store.Store) *TripHandler {
	if st == nil {
		return nil
	}
	return &TripHandler{store: st}
}

// HandleList returns recent trips as JSON.
// GET /api/trips?limit=N
func (h *TripHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	trips, err := h.store.ListTrips(r.Context(), limit)
	if err != nil {
		slog.Error("TripHandler: list trips failed", "error", err)
		http.Error(w, "failed to list trips", http.StatusInternalServerError)
		return
	}
	if trips == nil {
		trips = []*model.TripSummary{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(trips); err != nil {
		slog.Error("Failed to encode trips response", "error", err)
	}
}

// HandleGet returns one trip with its events.
// GET /api/trip/{id}
func (h *TripHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	trip, err := h.store.GetTrip(r.Context(), id)
	if err != nil {
		slog.Error("TripHandler: get trip failed", "error", err, "id", id)
		http.Error(w, "failed to load trip", http.StatusInternalServerError)
		return
	}
	if trip == nil {
		http.Error(w, "trip not found", http.StatusNotFound)
		return
	}

	events, err := h.store.ListEvents(r.Context(), id)
	if err != nil {
		slog.Error("TripHandler: list events failed", "error", err, "id", id)
		http.Error(w, "failed to load trip events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []*model.NavEvent{}
	}

	resp := struct {
		Trip   *model.TripSummary `json:"trip"`
		Events []*model.NavEvent  `json:"events"`
	}{trip, events}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode trip response", "error", err)
	}
}

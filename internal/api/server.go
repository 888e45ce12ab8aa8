package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"smartnav/pkg/version"
)

// NewServer builds the HTTP server with all routes wired.
func NewServer(addr string, nav *NavHandler, trips *TripHandler, hub *Hub, stats *StatsHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Check
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Navigation state
	mux.HandleFunc("GET /api/nav", nav.handleNav)

	// 3. Trip history
	if trips != nil {
		mux.HandleFunc("GET /api/trips", trips.HandleList)
		mux.HandleFunc("GET /api/trip/{id}", trips.HandleGet)
	}

	// 4. Live updates
	if hub != nil {
		mux.HandleFunc("GET /api/ws", hub.HandleWS)
	}

	// 5. Diagnostics
	if stats != nil {
		mux.Handle("GET /api/stats", stats)
	}

	// 6. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// No WriteTimeout: /api/ws connections are long-lived.
	return &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"smartnav/pkg/tracker"
	"smartnav/pkg/version"
)

// StatsHandler reports pipeline counters and process diagnostics.
type StatsHandler struct {
	tracker *tracker.Tracker
	started time.Time
}

func NewStatsHandler(t *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: t, started: time.Now()}
}

type StatsResponse struct {
	Version       string                         `json:"version"`
	UptimeSec     int64                          `json:"uptime_sec"`
	MemoryMB      uint64                         `json:"memory_mb"`
	NumGoroutines int                            `json:"num_goroutines"`
	Sources       map[string]tracker.SourceStats `json:"sources"`
}

// ServeHTTP implements http.Handler.
// GET /api/stats
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := StatsResponse{
		Version:       version.Version,
		UptimeSec:     int64(time.Since(h.started).Seconds()),
		MemoryMB:      mem.Alloc / 1024 / 1024,
		NumGoroutines: runtime.NumGoroutine(),
		Sources:       h.tracker.Snapshot(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode stats response", "error", err)
	}
}

// Package tracker counts pipeline activity for the stats endpoint.
package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks processing statistics per fix source.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*SourceStats
}

// SourceStats holds counters for a single fix source.
// Fields are accessed atomically.
type SourceStats struct {
	FixesProcessed  int64
	OffRouteEvents  int64
	UpdatesSaved    int64
	PersistFailures int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*SourceStats),
	}
}

// getStats returns the stats object for a source, creating it if needed.
func (t *Tracker) getStats(source string) *SourceStats {
	t.mu.RLock()
	s, ok := t.stats[source]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[source]; ok {
		return s
	}
	s = &SourceStats{}
	t.stats[source] = s
	return s
}

// TrackFix increments the processed-fix counter.
func (t *Tracker) TrackFix(source string) {
	atomic.AddInt64(&t.getStats(source).FixesProcessed, 1)
}

// TrackOffRoute increments the off-route event counter.
func (t *Tracker) TrackOffRoute(source string) {
	atomic.AddInt64(&t.getStats(source).OffRouteEvents, 1)
}

// TrackUpdateSaved increments the persisted-update counter.
func (t *Tracker) TrackUpdateSaved(source string) {
	atomic.AddInt64(&t.getStats(source).UpdatesSaved, 1)
}

// TrackPersistFailure increments the persistence failure counter.
func (t *Tracker) TrackPersistFailure(source string) {
	atomic.AddInt64(&t.getStats(source).PersistFailures, 1)
}

// Snapshot returns a copy of all counters keyed by source.
func (t *Tracker) Snapshot() map[string]SourceStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]SourceStats, len(t.stats))
	for source, s := range t.stats {
		out[source] = SourceStats{
			FixesProcessed:  atomic.LoadInt64(&s.FixesProcessed),
			OffRouteEvents:  atomic.LoadInt64(&s.OffRouteEvents),
			UpdatesSaved:    atomic.LoadInt64(&s.UpdatesSaved),
			PersistFailures: atomic.LoadInt64(&s.PersistFailures),
		}
	}
	return out
}

// Package model holds the shared data types exchanged between the
// positioning engine, providers, persistence and the API layer.
package model

import "time"

// GeoFix is one timestamped raw location sample from a positioning sensor.
// AccuracyM, SpeedMps and HeadingDeg are nil when the sensor did not report
// them. A fix is transient: the engine keeps at most the previous raw fix
// for displacement-based fallbacks.
type GeoFix struct {
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	AccuracyM   *float64 `json:"accuracy_m,omitempty"`
	SpeedMps    *float64 `json:"speed_mps,omitempty"`
	HeadingDeg  *float64 `json:"heading_deg,omitempty"` // [0,360)
	TimestampMs uint64   `json:"timestamp_ms"`
}

// NavState represents the lifecycle state of a navigation session.
type NavState string

const (
	// StateIdle indicates no active session.
	StateIdle NavState = "idle"
	// StateActive indicates the session is tracking fixes against a route.
	StateActive NavState = "active"
	// StateArrived is terminal for the session; reachable only from Active.
	StateArrived NavState = "arrived"
)

// NavUpdate is the structured output produced for every processed fix.
// Rendering layers subscribe to these; the engine itself draws nothing.
type NavUpdate struct {
	FilteredLat        float64  `json:"filtered_lat"`
	FilteredLon        float64  `json:"filtered_lon"`
	SmoothedHeadingDeg *float64 `json:"smoothed_heading_deg,omitempty"`
	SpeedKmh           float64  `json:"speed_kmh"`
	RemainingDistanceM float64  `json:"remaining_distance_m"`
	ETAMinutes         uint32   `json:"eta_minutes"`
	State              NavState `json:"state"`
	OffRouteEvent      bool     `json:"off_route_event"`
	ArrivedEvent       bool     `json:"arrived_event"`
}

// NavEventType classifies discrete navigation events.
type NavEventType string

const (
	EventSessionStart NavEventType = "session_start"
	EventSessionStop  NavEventType = "session_stop"
	EventOffRoute     NavEventType = "off_route"
	EventArrived      NavEventType = "arrived"
)

// NavEvent is a discrete, loggable occurrence within a trip.
type NavEvent struct {
	Type      NavEventType `json:"type"`
	TripID    string       `json:"trip_id"`
	Lat       float64      `json:"lat"`
	Lon       float64      `json:"lon"`
	Summary   string       `json:"summary,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// TripSummary describes a persisted trip for the status API.
type TripSummary struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at,omitempty"`
	RouteLengthM float64   `json:"route_length_m"`
	Outcome      string    `json:"outcome,omitempty"` // "arrived", "stopped"
	UpdateCount  int       `json:"update_count"`
}

// Float64Ptr returns a pointer to v. Convenience for optional fix fields.
func Float64Ptr(v float64) *float64 {
	return &v
}

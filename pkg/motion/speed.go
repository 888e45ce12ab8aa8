// Package motion derives smoothed speed and heading from raw location
// fixes. Both estimators keep small bounded state and are reset when a
// navigation session starts or stops.
package motion

import (
	"math"

	"smartnav/pkg/geo"
	"smartnav/pkg/model"
)

const (
	speedWindow   = 5
	maxSpeedKmh   = 200
	maxFallbackDt = 60 // seconds; older fixes are implausible for displacement speed
)

// SpeedEstimator derives a smoothed speed in km/h from device-reported
// speed, falling back to displacement between consecutive raw fixes.
// The public output is the rolling mean of the last 5 samples, which
// dampens GPS speed jitter while staying responsive.
type SpeedEstimator struct {
	history []float64 // km/h
}

// NewSpeedEstimator creates an estimator with an empty history.
func NewSpeedEstimator() *SpeedEstimator {
	return &SpeedEstimator{}
}

// Update folds the current fix into the speed history and returns the
// rolling mean. prev is the previous raw (unfiltered) fix, or nil when
// none exists. When no speed can be derived this cycle the history is
// left untouched and the previous mean carries forward.
func (e *SpeedEstimator) Update(cur model.GeoFix, prev *model.GeoFix) float64 {
	kmh, ok := deriveSpeed(cur, prev)
	if !ok {
		return e.Mean()
	}

	if kmh < 0 {
		kmh = 0
	}
	if kmh > maxSpeedKmh {
		kmh = maxSpeedKmh
	}

	e.history = append(e.history, kmh)
	if len(e.history) > speedWindow {
		e.history = e.history[1:]
	}

	return e.Mean()
}

func deriveSpeed(cur model.GeoFix, prev *model.GeoFix) (float64, bool) {
	// Primary source: device-reported speed.
	if cur.SpeedMps != nil && !math.IsNaN(*cur.SpeedMps) && !math.IsInf(*cur.SpeedMps, 0) && *cur.SpeedMps >= 0 {
		return *cur.SpeedMps * 3.6, true
	}

	// Fallback: displacement between consecutive raw fixes.
	if prev == nil || cur.TimestampMs <= prev.TimestampMs {
		return 0, false
	}
	dt := float64(cur.TimestampMs-prev.TimestampMs) / 1000.0
	if dt > maxFallbackDt {
		return 0, false
	}

	dist := geo.Distance(
		geo.Point{Lat: prev.Latitude, Lon: prev.Longitude},
		geo.Point{Lat: cur.Latitude, Lon: cur.Longitude},
	)
	return (dist / dt) * 3.6, true
}

// Mean returns the arithmetic mean of the current history, 0 when empty.
func (e *SpeedEstimator) Mean() float64 {
	if len(e.history) == 0 {
		return 0
	}
	var sum float64
	for _, v := range e.history {
		sum += v
	}
	return sum / float64(len(e.history))
}

// Reset clears the speed history.
func (e *SpeedEstimator) Reset() {
	e.history = nil
}

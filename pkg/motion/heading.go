package motion

import (
	"math"

	"smartnav/pkg/geo"
	"smartnav/pkg/model"
)

const (
	// Device headings are unreliable near-stationary.
	minHeadingSpeedKmh = 0.5

	// Minimum per-axis displacement before a bearing is trusted; GPS
	// jitter while parked produces spurious bearings below this.
	bearingEpsilonDeg = 1e-6

	minAlpha = 0.15
	maxAlpha = 0.55
)

// HeadingSmoother maintains a circularly-smoothed compass heading. The
// smoothing rate adapts to speed: sticky at walking pace, fast-tracking
// at road speed so the displayed direction stays timely.
type HeadingSmoother struct {
	smoothed    float64
	hasSmoothed bool
}

// NewHeadingSmoother creates a smoother with no heading yet.
func NewHeadingSmoother() *HeadingSmoother {
	return &HeadingSmoother{}
}

// Update derives a raw heading for the current fix and folds it into the
// smoothed value. prev is the previous raw fix or nil. Returns the
// smoothed heading and whether one exists; when no raw heading is
// derivable this cycle the previous value carries forward.
func (h *HeadingSmoother) Update(cur model.GeoFix, prev *model.GeoFix, speedKmh float64) (float64, bool) {
	raw, ok := deriveHeading(cur, prev, speedKmh)
	if !ok {
		return h.smoothed, h.hasSmoothed
	}

	if !h.hasSmoothed {
		h.smoothed = geo.NormalizeHeading(raw)
		h.hasSmoothed = true
		return h.smoothed, true
	}

	alpha := speedKmh / 80
	if alpha < minAlpha {
		alpha = minAlpha
	}
	if alpha > maxAlpha {
		alpha = maxAlpha
	}

	// Shortest signed angular difference handles the 0/360 seam.
	d := geo.NormalizeAngle(raw - h.smoothed)
	h.smoothed = geo.NormalizeHeading(h.smoothed + alpha*d)

	return h.smoothed, true
}

func deriveHeading(cur model.GeoFix, prev *model.GeoFix, speedKmh float64) (float64, bool) {
	// Device heading wins while actually moving.
	if cur.HeadingDeg != nil && !math.IsNaN(*cur.HeadingDeg) && !math.IsInf(*cur.HeadingDeg, 0) && speedKmh > minHeadingSpeedKmh {
		return *cur.HeadingDeg, true
	}

	if prev == nil {
		return 0, false
	}
	dLat := cur.Latitude - prev.Latitude
	dLon := cur.Longitude - prev.Longitude
	if math.Abs(dLat) <= bearingEpsilonDeg && math.Abs(dLon) <= bearingEpsilonDeg {
		return 0, false
	}

	return geo.Bearing(
		geo.Point{Lat: prev.Latitude, Lon: prev.Longitude},
		geo.Point{Lat: cur.Latitude, Lon: cur.Longitude},
	), true
}

// Heading returns the current smoothed heading and whether one exists.
func (h *HeadingSmoother) Heading() (float64, bool) {
	return h.smoothed, h.hasSmoothed
}

// Reset clears the smoothed heading.
func (h *HeadingSmoother) Reset() {
	h.smoothed = 0
	h.hasSmoothed = false
}

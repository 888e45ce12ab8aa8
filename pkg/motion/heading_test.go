package motion

import (
	"math"
	"testing"

	"smartnav/pkg/model"
)

func fixWithHeading(deg float64, ts uint64) model.GeoFix {
	return model.GeoFix{
		Latitude:    28.6,
		Longitude:   77.2,
		HeadingDeg:  model.Float64Ptr(deg),
		TimestampMs: ts,
	}
}

func TestHeadingFirstValueUnsmoothed(t *testing.T) {
	h := NewHeadingSmoother()

	got, ok := h.Update(fixWithHeading(123, 1000), nil, 20)
	if !ok || got != 123 {
		t.Errorf("first heading = %v, %v; want 123 unchanged", got, ok)
	}
}

func TestHeadingWrapAround(t *testing.T) {
	// Smoothing from 350 toward 10 at alpha 0.5 must pass through the
	// 0/360 seam, never through 180.
	h := NewHeadingSmoother()

	// 40 km/h -> alpha = 40/80 = 0.5
	h.Update(fixWithHeading(350, 1000), nil, 40)
	got, ok := h.Update(fixWithHeading(10, 2000), nil, 40)

	if !ok {
		t.Fatal("expected a smoothed heading")
	}
	// 350 + 0.5 * normalize(10-350) = 350 + 10 = 360 -> 0
	distToSeam := math.Min(got, 360-got)
	if distToSeam > 5 {
		t.Errorf("wrapped heading = %v, want near 0/360", got)
	}
	if math.Abs(got-180) < 90 {
		t.Errorf("heading %v crossed the long way through 180", got)
	}
}

func TestHeadingAlphaClamp(t *testing.T) {
	tests := []struct {
		name     string
		speedKmh float64
		want     float64 // expected smoothed value from 0 toward 100
	}{
		{name: "Low speed sticky", speedKmh: 1, want: 15},    // alpha floor 0.15
		{name: "High speed fast", speedKmh: 160, want: 55},   // alpha ceiling 0.55
		{name: "Proportional mid", speedKmh: 40, want: 50},   // alpha 0.5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeadingSmoother()
			h.Update(fixWithHeading(0, 1000), nil, tt.speedKmh)
			got, _ := h.Update(fixWithHeading(100, 2000), nil, tt.speedKmh)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("smoothed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeadingIgnoresDeviceHeadingWhenStationary(t *testing.T) {
	h := NewHeadingSmoother()

	// Speed at/below 0.5 km/h: device heading is unreliable and there is
	// no displacement, so no heading should be produced.
	_, ok := h.Update(fixWithHeading(90, 1000), nil, 0.4)
	if ok {
		t.Error("near-stationary device heading should be ignored")
	}
}

func TestHeadingBearingFallback(t *testing.T) {
	h := NewHeadingSmoother()

	prev := &model.GeoFix{Latitude: 0, Longitude: 0, TimestampMs: 0}
	cur := model.GeoFix{Latitude: 0, Longitude: 0.001, TimestampMs: 1000} // due east

	got, ok := h.Update(cur, prev, 0) // no device heading, speed 0
	if !ok {
		t.Fatal("expected bearing-derived heading")
	}
	if math.Abs(got-90) > 0.5 {
		t.Errorf("bearing fallback = %v, want ~90", got)
	}
}

func TestHeadingBearingRequiresDisplacement(t *testing.T) {
	h := NewHeadingSmoother()

	prev := &model.GeoFix{Latitude: 10, Longitude: 10, TimestampMs: 0}
	// Sub-epsilon jitter in both axes: no bearing.
	cur := model.GeoFix{Latitude: 10 + 5e-7, Longitude: 10 - 5e-7, TimestampMs: 1000}

	if _, ok := h.Update(cur, prev, 0); ok {
		t.Error("sub-epsilon displacement must not produce a bearing")
	}
}

func TestHeadingCarryForward(t *testing.T) {
	h := NewHeadingSmoother()
	h.Update(fixWithHeading(45, 1000), nil, 30)

	// Nothing derivable: previous smoothed value carries forward.
	got, ok := h.Update(model.GeoFix{Latitude: 28.6, Longitude: 77.2, TimestampMs: 2000}, nil, 30)
	if !ok || got != 45 {
		t.Errorf("carry-forward = %v, %v; want 45, true", got, ok)
	}
}

func TestHeadingReset(t *testing.T) {
	h := NewHeadingSmoother()
	h.Update(fixWithHeading(45, 1000), nil, 30)

	h.Reset()
	if _, ok := h.Heading(); ok {
		t.Error("Reset() should clear the smoothed heading")
	}
}

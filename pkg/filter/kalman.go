// Package filter implements the scalar recursive estimator used to smooth
// noisy GPS coordinates. One filter instance runs per geographic axis;
// latitude and longitude are filtered independently with no cross-axis
// covariance, which is acceptable because horizontal GPS error is roughly
// isotropic at typical accuracies.
package filter

import (
	"smartnav/pkg/geo"
)

const (
	// DefaultProcessNoise is the fixed per-update state drift in degrees²,
	// tuned for pedestrian/vehicle motion at 1 Hz fix rates.
	DefaultProcessNoise = 1e-9

	// Measurement noise clamp bounds in degrees².
	minMeasurementNoise = 1e-10
	maxMeasurementNoise = 1e-5

	initialCovariance = 1.0
)

// Axis is a 1-D Kalman filter over a single coordinate axis.
// The zero value is not usable; construct with NewAxis.
type Axis struct {
	estimate    float64
	hasEstimate bool
	covariance  float64 // P
	processQ    float64 // Q
	measureR    float64 // R
}

// NewAxis creates a filter with the given process noise. Pass 0 to use
// DefaultProcessNoise.
func NewAxis(processNoise float64) *Axis {
	if processNoise <= 0 {
		processNoise = DefaultProcessNoise
	}
	return &Axis{
		covariance: initialCovariance,
		processQ:   processNoise,
		measureR:   maxMeasurementNoise,
	}
}

// Reset clears the estimate and restores the initial error covariance.
func (a *Axis) Reset() {
	a.estimate = 0
	a.hasEstimate = false
	a.covariance = initialCovariance
}

// SetAccuracy converts a metric accuracy radius into degree-space
// measurement variance: R = clamp((accM/111320)², 1e-10, 1e-5).
func (a *Axis) SetAccuracy(accM float64) {
	deg := accM / geo.MetersPerDegree
	r := deg * deg
	if r < minMeasurementNoise {
		r = minMeasurementNoise
	}
	if r > maxMeasurementNoise {
		r = maxMeasurementNoise
	}
	a.measureR = r
}

// Update folds one measurement into the estimate and returns the new
// estimate. The first measurement bootstraps the filter.
func (a *Axis) Update(measurement float64) float64 {
	if !a.hasEstimate {
		a.estimate = measurement
		a.hasEstimate = true
		return a.estimate
	}

	// Predict
	a.covariance += a.processQ

	// Correct
	gain := a.covariance / (a.covariance + a.measureR)
	a.estimate += gain * (measurement - a.estimate)
	a.covariance *= 1 - gain

	return a.estimate
}

// Estimate returns the current estimate and whether one exists.
func (a *Axis) Estimate() (float64, bool) {
	return a.estimate, a.hasEstimate
}

// Covariance returns the current error covariance P.
func (a *Axis) Covariance() float64 {
	return a.covariance
}

package nav

// OffRouteMonitor flags sustained departure from the route. A single noisy
// outlier cannot trigger a reroute prompt: the distance threshold must be
// exceeded on consecutive reliable fixes before an event fires.
type OffRouteMonitor struct {
	distanceM    float64 // departure threshold
	accuracyGate float64 // fixes at/above this accuracy are skipped
	trigger      int     // consecutive confirmations required
	counter      int
}

// NewOffRouteMonitor creates a monitor with the given thresholds.
func NewOffRouteMonitor(distanceM, accuracyGateM float64, trigger int) *OffRouteMonitor {
	return &OffRouteMonitor{
		distanceM:    distanceM,
		accuracyGate: accuracyGateM,
		trigger:      trigger,
	}
}

// Observe evaluates one fix and reports whether an off-route event fires.
// Unreliable fixes (accuracy at/above the gate) are skipped entirely:
// they neither increment nor reset the counter. On the fix that reaches
// the trigger count the counter resets, so exactly one event fires per
// sustained departure.
func (m *OffRouteMonitor) Observe(accuracyM, distanceToRouteM float64) bool {
	if accuracyM >= m.accuracyGate {
		return false
	}

	if distanceToRouteM <= m.distanceM {
		m.counter = 0
		return false
	}

	m.counter++
	if m.counter >= m.trigger {
		m.counter = 0
		return true
	}
	return false
}

// Reset clears the confirmation counter.
func (m *OffRouteMonitor) Reset() {
	m.counter = 0
}

// Counter returns the current confirmation count.
func (m *OffRouteMonitor) Counter() int {
	return m.counter
}

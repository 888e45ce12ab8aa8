package provider

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"smartnav/pkg/geo"
	"smartnav/pkg/logging"
	"smartnav/pkg/model"
	"smartnav/pkg/route"
)

// MockConfig holds settings for the synthetic fix source.
type MockConfig struct {
	SpeedKmh  float64
	Interval  time.Duration
	NoiseM    float64
	AccuracyM float64
}

// Mock walks the given route at a constant speed and emits noisy fixes,
// one per interval. The channel closes when the end of the route is reached.
type Mock struct {
	fixes     chan model.GeoFix
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMock creates a synthetic fix source that traverses r.
func NewMock(r *route.Route, cfg MockConfig) *Mock {
	if cfg.SpeedKmh <= 0 {
		cfg.SpeedKmh = 50
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.AccuracyM <= 0 {
		cfg.AccuracyM = 10
	}

	m := &Mock{
		fixes:  make(chan model.GeoFix, 16),
		stopCh: make(chan struct{}),
	}
	m.wg.Add(1)
	go m.run(r.Vertices(), cfg)
	return m
}

// Fixes returns the fix channel.
func (m *Mock) Fixes() <-chan model.GeoFix {
	return m.fixes
}

// Close stops the walker and waits for it to exit.
func (m *Mock) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopCh)
	})
	m.wg.Wait()
	return nil
}

func (m *Mock) run(verts []geo.Point, cfg MockConfig) {
	defer m.wg.Done()
	defer close(m.fixes)

	pos := verts[0]
	idx := 1
	speedMps := cfg.SpeedKmh / 3.6

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	// Emit the starting position first so consumers bootstrap immediately.
	if !m.emit(pos, verts, idx, speedMps, cfg) {
		return
	}

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
		}

		step := speedMps * cfg.Interval.Seconds()
		for step > 0 && idx < len(verts) {
			d := geo.Distance(pos, verts[idx])
			if d <= step {
				step -= d
				pos = verts[idx]
				idx++
			} else {
				pos = geo.DestinationPoint(pos, geo.Bearing(pos, verts[idx]), step)
				step = 0
			}
		}

		if !m.emit(pos, verts, idx, speedMps, cfg) {
			return
		}
		if idx >= len(verts) {
			// Route exhausted
			return
		}
	}
}

func (m *Mock) emit(pos geo.Point, verts []geo.Point, idx int, speedMps float64, cfg MockConfig) bool {
	noisy := pos
	if cfg.NoiseM > 0 {
		noisy = geo.DestinationPoint(pos, rand.Float64()*360, math.Abs(rand.NormFloat64())*cfg.NoiseM)
	}

	fix := model.GeoFix{
		Latitude:    noisy.Lat,
		Longitude:   noisy.Lon,
		AccuracyM:   model.Float64Ptr(cfg.AccuracyM),
		SpeedMps:    model.Float64Ptr(speedMps),
		TimestampMs: uint64(time.Now().UnixMilli()),
	}
	if idx < len(verts) {
		fix.HeadingDeg = model.Float64Ptr(geo.Bearing(pos, verts[idx]))
	}

	logging.TraceDefault("mock fix", "lat", fix.Latitude, "lon", fix.Longitude)

	select {
	case m.fixes <- fix:
		return true
	case <-m.stopCh:
		return false
	}
}

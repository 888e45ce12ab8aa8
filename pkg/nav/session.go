// Package nav orchestrates the per-fix positioning pipeline: position
// filtering, speed and heading smoothing, route projection, off-route
// detection and arrival. A Session owns all per-trip state; there is no
// process-wide tracking state.
package nav

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartnav/pkg/filter"
	"smartnav/pkg/geo"
	"smartnav/pkg/model"
	"smartnav/pkg/motion"
	"smartnav/pkg/route"
)

var (
	// ErrSessionActive is returned by Start when a session is already running.
	ErrSessionActive = errors.New("navigation session already active")
	// ErrNotActive is returned by OnFix outside the Active state.
	ErrNotActive = errors.New("navigation session not active")
)

// Config holds the tunables of the tracking pipeline.
type Config struct {
	ProcessNoise float64 // Kalman Q, degrees² per update

	OffRouteDistanceM     float64 // departure threshold
	OffRouteAccuracyGateM float64 // skip off-route evaluation above this
	OffRouteTrigger       int     // consecutive confirmations

	ArrivalRadiusM float64       // distance to final vertex that ends the trip
	SettleDelay    time.Duration // Arrived -> Idle automatic delay

	MaxAccuracyM     float64 // fixes worse than this are discarded outright
	UnknownAccuracyM float64 // sentinel for missing/invalid accuracy
	MinETASpeedKmh   float64 // below this the ETA uses the default speed
	DefaultSpeedKmh  float64 // city-average fallback for ETA
}

// DefaultConfig returns the tuning used in production.
func DefaultConfig() Config {
	return Config{
		ProcessNoise:          filter.DefaultProcessNoise,
		OffRouteDistanceM:     80,
		OffRouteAccuracyGateM: 80,
		OffRouteTrigger:       4,
		ArrivalRadiusM:        40,
		SettleDelay:           10 * time.Second,
		MaxAccuracyM:          2000,
		UnknownAccuracyM:      9999,
		MinETASpeedKmh:        5,
		DefaultSpeedKmh:       30,
	}
}

// EventSink receives discrete navigation events (off-route, arrived,
// session start/stop). Sinks must not call back into the session.
type EventSink func(model.NavEvent)

// Session is the navigation orchestrator. The caller must serialize OnFix
// calls; the internal mutex guards against concurrent lifecycle calls but
// the estimators are not designed for interleaved fix processing.
type Session struct {
	mu  sync.Mutex
	cfg Config

	id    string
	state model.NavState
	route *route.Route

	latFilter *filter.Axis
	lonFilter *filter.Axis
	speed     *motion.SpeedEstimator
	heading   *motion.HeadingSmoother
	offRoute  *OffRouteMonitor

	prevRaw    *model.GeoFix
	lastUpdate *model.NavUpdate

	sink        EventSink
	settleTimer *time.Timer
}

// NewSession creates an idle session. sink may be nil.
func NewSession(cfg Config, sink EventSink) *Session {
	return &Session{
		cfg:       cfg,
		state:     model.StateIdle,
		latFilter: filter.NewAxis(cfg.ProcessNoise),
		lonFilter: filter.NewAxis(cfg.ProcessNoise),
		speed:     motion.NewSpeedEstimator(),
		heading:   motion.NewHeadingSmoother(),
		offRoute:  NewOffRouteMonitor(cfg.OffRouteDistanceM, cfg.OffRouteAccuracyGateM, cfg.OffRouteTrigger),
		sink:      sink,
	}
}

// Start begins tracking against r, transitioning Idle -> Active and
// resetting all per-trip state. It fails with route.ErrInvalidRoute when
// the polyline has fewer than 2 vertices and with ErrSessionActive when a
// trip is already running.
func (s *Session) Start(r *route.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == model.StateActive {
		return ErrSessionActive
	}
	if r == nil || r.NumVertices() < 2 {
		return route.ErrInvalidRoute
	}

	s.resetLocked()
	s.id = uuid.NewString()
	s.route = r
	s.state = model.StateActive

	s.emitLocked(model.NavEvent{
		Type:      model.EventSessionStart,
		TripID:    s.id,
		Timestamp: time.Now(),
	})
	return nil
}

// Stop returns the session to Idle and discards all trip state. It is
// idempotent and safe to call from any state.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == model.StateIdle {
		return
	}

	id := s.id
	s.resetLocked()

	s.emitLocked(model.NavEvent{
		Type:      model.EventSessionStop,
		TripID:    id,
		Timestamp: time.Now(),
	})
}

// OnFix processes one raw fix through the pipeline and returns the
// resulting NavUpdate. Valid only while Active; afterwards it returns
// ErrNotActive until Start is called again. Malformed sensor values never
// error: accuracy is sanitized and extreme outliers are dropped silently.
func (s *Session) OnFix(fix model.GeoFix) (model.NavUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != model.StateActive {
		return model.NavUpdate{State: s.state}, ErrNotActive
	}

	acc := s.sanitizeAccuracy(fix.AccuracyM)

	// An extreme-accuracy outlier would destabilize the filter once a
	// position exists; drop it without touching any state.
	if _, bootstrapped := s.latFilter.Estimate(); bootstrapped && acc > s.cfg.MaxAccuracyM {
		if s.lastUpdate != nil {
			u := *s.lastUpdate
			u.OffRouteEvent = false
			u.ArrivedEvent = false
			return u, nil
		}
		return model.NavUpdate{State: s.state}, nil
	}

	// 1. Position filtering, both axes independently.
	s.latFilter.SetAccuracy(acc)
	s.lonFilter.SetAccuracy(acc)
	fLat := s.latFilter.Update(fix.Latitude)
	fLon := s.lonFilter.Update(fix.Longitude)
	filtered := geo.Point{Lat: fLat, Lon: fLon}

	// 2. Speed, then heading (heading gates on speed).
	speedKmh := s.speed.Update(fix, s.prevRaw)
	headingDeg, hasHeading := s.heading.Update(fix, s.prevRaw, speedKmh)

	// 3. Route projection and off-route detection.
	proj, remaining := s.route.RemainingDistance(filtered)
	offRouteEvent := s.offRoute.Observe(acc, proj.DistanceM)

	// 4. Arrival check against the final vertex.
	arrived := geo.Distance(filtered, s.route.End()) < s.cfg.ArrivalRadiusM

	raw := fix
	s.prevRaw = &raw

	update := model.NavUpdate{
		FilteredLat:        fLat,
		FilteredLon:        fLon,
		SpeedKmh:           speedKmh,
		RemainingDistanceM: remaining,
		ETAMinutes:         s.etaMinutes(remaining, speedKmh),
		State:              model.StateActive,
		OffRouteEvent:      offRouteEvent,
	}
	if hasHeading {
		h := headingDeg
		update.SmoothedHeadingDeg = &h
	}

	if offRouteEvent {
		s.emitLocked(model.NavEvent{
			Type:      model.EventOffRoute,
			TripID:    s.id,
			Lat:       fLat,
			Lon:       fLon,
			Timestamp: time.Now(),
		})
	}

	if arrived {
		s.state = model.StateArrived
		update.State = model.StateArrived
		update.ArrivedEvent = true

		s.emitLocked(model.NavEvent{
			Type:      model.EventArrived,
			TripID:    s.id,
			Lat:       fLat,
			Lon:       fLon,
			Timestamp: time.Now(),
		})

		// The session settles back to Idle on its own unless stopped
		// explicitly first.
		if s.cfg.SettleDelay > 0 {
			s.settleTimer = time.AfterFunc(s.cfg.SettleDelay, s.settle)
		}
	}

	u := update
	s.lastUpdate = &u
	return update, nil
}

// settle moves Arrived -> Idle after the configured delay.
func (s *Session) settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != model.StateArrived {
		return
	}
	id := s.id
	s.resetLocked()
	s.emitLocked(model.NavEvent{
		Type:      model.EventSessionStop,
		TripID:    id,
		Summary:   "settled after arrival",
		Timestamp: time.Now(),
	})
}

// State returns the current lifecycle state.
func (s *Session) State() model.NavState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the trip ID, empty when idle.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// LastUpdate returns the most recent NavUpdate, if any.
func (s *Session) LastUpdate() (model.NavUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUpdate == nil {
		return model.NavUpdate{}, false
	}
	return *s.lastUpdate, true
}

// sanitizeAccuracy replaces missing or implausible accuracy values with
// the unknown sentinel.
func (s *Session) sanitizeAccuracy(accM *float64) float64 {
	if accM == nil {
		return s.cfg.UnknownAccuracyM
	}
	a := *accM
	if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 || a > 50000 {
		return s.cfg.UnknownAccuracyM
	}
	return a
}

func (s *Session) etaMinutes(remainingM, speedKmh float64) uint32 {
	speed := speedKmh
	if speed <= s.cfg.MinETASpeedKmh {
		speed = s.cfg.DefaultSpeedKmh
	}
	minutes := math.Round((remainingM / 1000.0) / speed * 60.0)
	if minutes < 1 {
		minutes = 1
	}
	return uint32(minutes)
}

// resetLocked discards all trip-scoped state. Caller holds the mutex.
func (s *Session) resetLocked() {
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	s.state = model.StateIdle
	s.id = ""
	s.route = nil
	s.latFilter.Reset()
	s.lonFilter.Reset()
	s.speed.Reset()
	s.heading.Reset()
	s.offRoute.Reset()
	s.prevRaw = nil
	s.lastUpdate = nil
}

func (s *Session) emitLocked(ev model.NavEvent) {
	if s.sink != nil {
		s.sink(ev)
	}
}

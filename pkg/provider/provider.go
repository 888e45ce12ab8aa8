// Package provider supplies position fixes to the navigation pipeline.
package provider

import (
	"fmt"
	"time"

	"smartnav/pkg/config"
	"smartnav/pkg/model"
	"smartnav/pkg/route"
)

// Provider is a source of position fixes. Fixes are delivered in order on
// the returned channel; the channel is closed when the source is exhausted
// or the provider is closed.
type Provider interface {
	Fixes() <-chan model.GeoFix
	Close() error
}

// New creates a provider from configuration.
func New(cfg *config.ProviderConfig, r *route.Route) (Provider, error) {
	switch cfg.Type {
	case "mock":
		return NewMock(r, MockConfig{
			SpeedKmh:  cfg.Mock.SpeedKmh,
			Interval:  time.Duration(cfg.Mock.Interval),
			NoiseM:    float64(cfg.Mock.Noise),
			AccuracyM: float64(cfg.Mock.Accuracy),
		}), nil
	case "replay":
		return NewReplay(cfg.Replay.Path, cfg.Replay.Speed)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

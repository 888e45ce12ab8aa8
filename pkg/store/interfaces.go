package store

import (
	"context"
	"time"

	"smartnav/pkg/model"
)

// TripStore handles trip lifecycle persistence.
type TripStore interface {
	CreateTrip(ctx context.Context, id string, startedAt time.Time, routeLengthM float64) error
	EndTrip(ctx context.Context, id string, endedAt time.Time, outcome string) error
	GetTrip(ctx context.Context, id string) (*model.TripSummary, error)
	ListTrips(ctx context.Context, limit int) ([]*model.TripSummary, error)
}

// UpdateStore persists per-fix navigation output.
type UpdateStore interface {
	SaveUpdate(ctx context.Context, tripID string, u *model.NavUpdate) error
	CountUpdates(ctx context.Context, tripID string) (int, error)
}

// EventStore persists discrete navigation events.
type EventStore interface {
	SaveEvent(ctx context.Context, e *model.NavEvent) error
	ListEvents(ctx context.Context, tripID string) ([]*model.NavEvent, error)
}

// Store composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	TripStore
	UpdateStore
	EventStore

	// Close closes the store connection.
	Close() error
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"smartnav/pkg/db"
	"smartnav/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	d, err := db.Init(dbPath)
	if err != nil {
		t.Fatalf("Failed to init DB: %v", err)
	}
	s := NewSQLiteStore(d)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	testTrips(t, ctx, store)
	testUpdates(t, ctx, store)
	testEvents(t, ctx, store)
}

func testTrips(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("Trips", func(t *testing.T) {
		started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		if err := store.CreateTrip(ctx, "trip-1", started, 5500); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}

		trip, err := store.GetTrip(ctx, "trip-1")
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		if trip == nil {
			t.Fatal("GetTrip returned nil")
		}
		if trip.RouteLengthM != 5500 {
			t.Errorf("expected route length 5500, got %v", trip.RouteLengthM)
		}
		if trip.Outcome != "" {
			t.Errorf("expected empty outcome for open trip, got %q", trip.Outcome)
		}

		ended := started.Add(20 * time.Minute)
		if err := store.EndTrip(ctx, "trip-1", ended, "arrived"); err != nil {
			t.Fatalf("EndTrip failed: %v", err)
		}
		trip, err = store.GetTrip(ctx, "trip-1")
		if err != nil {
			t.Fatalf("GetTrip after end failed: %v", err)
		}
		if trip.Outcome != "arrived" {
			t.Errorf("expected outcome 'arrived', got %q", trip.Outcome)
		}
		if !trip.EndedAt.Equal(ended) {
			t.Errorf("expected ended_at %v, got %v", ended, trip.EndedAt)
		}

		// First outcome wins
		if err := store.EndTrip(ctx, "trip-1", ended.Add(time.Minute), "stopped"); err != nil {
			t.Fatalf("second EndTrip failed: %v", err)
		}
		trip, err = store.GetTrip(ctx, "trip-1")
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		if trip.Outcome != "arrived" {
			t.Errorf("outcome overwritten: got %q, want arrived", trip.Outcome)
		}

		// Missing trip returns nil, nil
		missing, err := store.GetTrip(ctx, "nope")
		if err != nil {
			t.Fatalf("GetTrip(missing) failed: %v", err)
		}
		if missing != nil {
			t.Error("expected nil for missing trip")
		}

		// ListTrips newest first
		if err := store.CreateTrip(ctx, "trip-2", started.Add(time.Hour), 900); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		trips, err := store.ListTrips(ctx, 10)
		if err != nil {
			t.Fatalf("ListTrips failed: %v", err)
		}
		if len(trips) != 2 {
			t.Fatalf("expected 2 trips, got %d", len(trips))
		}
		if trips[0].ID != "trip-2" {
			t.Errorf("expected newest trip first, got %s", trips[0].ID)
		}
	})
}

func testUpdates(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("Updates", func(t *testing.T) {
		u := &model.NavUpdate{
			FilteredLat:        52.52,
			FilteredLon:        13.405,
			SmoothedHeadingDeg: model.Float64Ptr(88.5),
			SpeedKmh:           42,
			RemainingDistanceM: 1234,
			ETAMinutes:         2,
			State:              model.StateActive,
		}
		if err := store.SaveUpdate(ctx, "trip-1", u); err != nil {
			t.Fatalf("SaveUpdate failed: %v", err)
		}

		// Heading may be absent
		u2 := &model.NavUpdate{FilteredLat: 52.53, FilteredLon: 13.41, State: model.StateActive}
		if err := store.SaveUpdate(ctx, "trip-1", u2); err != nil {
			t.Fatalf("SaveUpdate without heading failed: %v", err)
		}

		count, err := store.CountUpdates(ctx, "trip-1")
		if err != nil {
			t.Fatalf("CountUpdates failed: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 updates, got %d", count)
		}

		// Update count reflected in summary
		trip, err := store.GetTrip(ctx, "trip-1")
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		if trip.UpdateCount != 2 {
			t.Errorf("expected summary update count 2, got %d", trip.UpdateCount)
		}
	})
}

func testEvents(t *testing.T, ctx context.Context, store *SQLiteStore) {
	t.Run("Events", func(t *testing.T) {
		events := []*model.NavEvent{
			{Type: model.EventSessionStart, TripID: "trip-1", Lat: 52.52, Lon: 13.405, Timestamp: time.Now()},
			{Type: model.EventOffRoute, TripID: "trip-1", Lat: 52.53, Lon: 13.41, Summary: "left the corridor", Timestamp: time.Now()},
		}
		for _, e := range events {
			if err := store.SaveEvent(ctx, e); err != nil {
				t.Fatalf("SaveEvent failed: %v", err)
			}
		}

		loaded, err := store.ListEvents(ctx, "trip-1")
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(loaded) != 2 {
			t.Fatalf("expected 2 events, got %d", len(loaded))
		}
		if loaded[0].Type != model.EventSessionStart {
			t.Errorf("expected session_start first, got %s", loaded[0].Type)
		}
		if loaded[1].Summary != "left the corridor" {
			t.Errorf("unexpected summary: %q", loaded[1].Summary)
		}
	})
}

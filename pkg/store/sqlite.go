package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"smartnav/pkg/db"
	"smartnav/pkg/model"
)

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Trips ---

func (s *SQLiteStore) CreateTrip(ctx context.Context, id string, startedAt time.Time, routeLengthM float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (id, started_at, route_length_m) VALUES (?, ?, ?)`,
		id, startedAt.UTC(), routeLengthM)
	return err
}

// EndTrip records the trip outcome. The first outcome wins: a settle-stop
// after arrival must not overwrite "arrived".
func (s *SQLiteStore) EndTrip(ctx context.Context, id string, endedAt time.Time, outcome string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE trips SET ended_at = ?, outcome = ? WHERE id = ? AND outcome IS NULL`,
		endedAt.UTC(), outcome, id)
	return err
}

func (s *SQLiteStore) GetTrip(ctx context.Context, id string) (*model.TripSummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT t.id, t.started_at, t.ended_at, t.route_length_m, t.outcome,
		        (SELECT COUNT(*) FROM updates u WHERE u.trip_id = t.id)
		 FROM trips t WHERE t.id = ?`, id)

	trip, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return trip, nil
}

func (s *SQLiteStore) ListTrips(ctx context.Context, limit int) ([]*model.TripSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.started_at, t.ended_at, t.route_length_m, t.outcome,
		        (SELECT COUNT(*) FROM updates u WHERE u.trip_id = t.id)
		 FROM trips t ORDER BY t.started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*model.TripSummary
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*model.TripSummary, error) {
	var t model.TripSummary
	var endedAt sql.NullTime
	var outcome sql.NullString

	err := row.Scan(&t.ID, &t.StartedAt, &endedAt, &t.RouteLengthM, &outcome, &t.UpdateCount)
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t.EndedAt = endedAt.Time
	}
	if outcome.Valid {
		t.Outcome = outcome.String
	}
	return &t, nil
}

// --- Updates ---

func (s *SQLiteStore) SaveUpdate(ctx context.Context, tripID string, u *model.NavUpdate) error {
	var heading sql.NullFloat64
	if u.SmoothedHeadingDeg != nil {
		heading = sql.NullFloat64{Float64: *u.SmoothedHeadingDeg, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO updates (trip_id, lat, lon, heading, speed_kmh, remaining_m, eta_min, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tripID, u.FilteredLat, u.FilteredLon, heading, u.SpeedKmh,
		u.RemainingDistanceM, u.ETAMinutes, string(u.State))
	return err
}

func (s *SQLiteStore) CountUpdates(ctx context.Context, tripID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM updates WHERE trip_id = ?`, tripID).Scan(&count)
	return count, err
}

// --- Events ---

func (s *SQLiteStore) SaveEvent(ctx context.Context, e *model.NavEvent) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (trip_id, type, lat, lon, summary, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.TripID, string(e.Type), e.Lat, e.Lon, e.Summary, ts.UTC())
	return err
}

func (s *SQLiteStore) ListEvents(ctx context.Context, tripID string) ([]*model.NavEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT trip_id, type, lat, lon, summary, created_at
		 FROM events WHERE trip_id = ? ORDER BY id`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*model.NavEvent
	for rows.Next() {
		var e model.NavEvent
		var typ string
		var summary sql.NullString
		if err := rows.Scan(&e.TripID, &typ, &e.Lat, &e.Lon, &summary, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Type = model.NavEventType(typ)
		if summary.Valid {
			e.Summary = summary.String
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

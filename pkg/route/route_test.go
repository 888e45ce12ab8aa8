package route

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"smartnav/pkg/geo"
)

func TestNewRejectsShortRoutes(t *testing.T) {
	if _, err := New(nil); err != ErrInvalidRoute {
		t.Errorf("New(nil) error = %v, want ErrInvalidRoute", err)
	}
	if _, err := New([]geo.Point{{Lat: 0, Lon: 0}}); err != ErrInvalidRoute {
		t.Errorf("New(1 vertex) error = %v, want ErrInvalidRoute", err)
	}
	if _, err := FromLineString(orb.LineString{{0, 0}}); err != ErrInvalidRoute {
		t.Errorf("FromLineString(1 vertex) error = %v, want ErrInvalidRoute", err)
	}
}

func TestProjectOntoEquatorSegment(t *testing.T) {
	r, err := New([]geo.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	proj := r.Project(geo.Point{Lat: 0.0005, Lon: 0.5})

	if math.Abs(proj.Nearest.Lon-0.5) > 1e-6 {
		t.Errorf("nearest lon = %v, want ~0.5", proj.Nearest.Lon)
	}
	if math.Abs(proj.Nearest.Lat) > 1e-6 {
		t.Errorf("nearest lat = %v, want ~0", proj.Nearest.Lat)
	}
	if proj.SegmentIndex != 0 {
		t.Errorf("segment index = %d, want 0", proj.SegmentIndex)
	}
	// ~55.7m perpendicular offset
	if proj.DistanceM <= 0 || proj.DistanceM > 60 {
		t.Errorf("distance = %v, want small positive (~55.7m)", proj.DistanceM)
	}
}

func TestProjectClampsToEndpoints(t *testing.T) {
	r, _ := New([]geo.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}})

	// Query beyond the end: projection must clamp to the final vertex.
	proj := r.Project(geo.Point{Lat: 0, Lon: 1.5})
	if math.Abs(proj.Nearest.Lon-1.0) > 1e-9 {
		t.Errorf("nearest lon = %v, want clamp at 1.0", proj.Nearest.Lon)
	}

	// Query before the start clamps to the first vertex.
	proj = r.Project(geo.Point{Lat: 0, Lon: -0.5})
	if math.Abs(proj.Nearest.Lon) > 1e-9 {
		t.Errorf("nearest lon = %v, want clamp at 0", proj.Nearest.Lon)
	}
}

func TestProjectFirstMinimumWins(t *testing.T) {
	// A route doubling back on itself: the query is equidistant from
	// segment 0 and segment 2; the scan must settle on segment 0.
	r, _ := New([]geo.Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 0.001, Lon: 1},
		{Lat: 0.001, Lon: 0},
	})

	proj := r.Project(geo.Point{Lat: 0.0005, Lon: 0.5})
	if proj.SegmentIndex != 0 {
		t.Errorf("segment index = %d, want first minimum (0)", proj.SegmentIndex)
	}
}

func TestProjectDegenerateSegment(t *testing.T) {
	// Repeated vertex makes a zero-length segment; it must not produce NaN.
	r, _ := New([]geo.Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
	})

	proj := r.Project(geo.Point{Lat: 0, Lon: 0.25})
	if math.IsNaN(proj.DistanceM) {
		t.Fatal("degenerate segment produced NaN distance")
	}
	if math.Abs(proj.Nearest.Lon-0.25) > 1e-6 {
		t.Errorf("nearest lon = %v, want 0.25", proj.Nearest.Lon)
	}
}

func TestRemainingDistance(t *testing.T) {
	// ~222m route east along the equator.
	r, _ := New([]geo.Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.001},
		{Lat: 0, Lon: 0.002},
	})

	segM := 111.32 // ~one 0.001-degree segment at the equator

	tests := []struct {
		name  string
		query geo.Point
		want  float64
	}{
		{name: "At start", query: geo.Point{Lat: 0, Lon: 0}, want: segM},
		{name: "Mid first segment", query: geo.Point{Lat: 0, Lon: 0.0005}, want: segM},
		{name: "At second vertex", query: geo.Point{Lat: 0, Lon: 0.001}, want: segM},
		{name: "Mid last segment", query: geo.Point{Lat: 0, Lon: 0.0015}, want: 0},
		{name: "At end", query: geo.Point{Lat: 0, Lon: 0.002}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rem := r.RemainingDistance(tt.query)
			if math.Abs(rem-tt.want) > 1 {
				t.Errorf("remaining = %v, want ~%v", rem, tt.want)
			}
		})
	}
}

func TestLengthAndEnd(t *testing.T) {
	r, _ := New([]geo.Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 0.001},
		{Lat: 0, Lon: 0.002},
	})

	if math.Abs(r.LengthM()-222.64) > 2 {
		t.Errorf("LengthM() = %v, want ~222.6", r.LengthM())
	}
	end := r.End()
	if end.Lat != 0 || end.Lon != 0.002 {
		t.Errorf("End() = %+v, want (0, 0.002)", end)
	}
	if r.NumVertices() != 3 {
		t.Errorf("NumVertices() = %d, want 3", r.NumVertices())
	}
}

func TestRouteImmutability(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 0}}
	r, _ := FromLineString(line)

	// Mutating the caller's slice must not affect the route.
	line[1] = orb.Point{5, 5}

	end := r.End()
	if end.Lon != 1 || end.Lat != 0 {
		t.Errorf("route shared caller's backing array: end = %+v", end)
	}
}

// Package route models the precomputed route polyline and projection of
// query points onto it. The in-segment projection is a local-planar
// approximation; candidate points are scored with true haversine distance.
// Ellipsoidal correctness is a documented non-goal at street scale.
package route

import (
	"errors"

	"github.com/paulmach/orb"

	"smartnav/pkg/geo"
)

// ErrInvalidRoute is returned when a route has fewer than 2 vertices.
var ErrInvalidRoute = errors.New("route requires at least 2 vertices")

// Route is an immutable ordered polyline of ≥2 vertices. Segment lengths
// and their suffix sums are precomputed so each projection query costs one
// scan over the segments.
type Route struct {
	line       orb.LineString
	segLengths []float64 // haversine length of segment i, meters
	suffix     []float64 // total length of all segments strictly after i
	totalM     float64
}

// New builds a route from ordered vertices.
func New(vertices []geo.Point) (*Route, error) {
	if len(vertices) < 2 {
		return nil, ErrInvalidRoute
	}
	line := make(orb.LineString, len(vertices))
	for i, v := range vertices {
		line[i] = orb.Point{v.Lon, v.Lat}
	}
	return FromLineString(line)
}

// FromLineString builds a route from an orb.LineString in lon/lat order,
// the shape routing backends deliver GeoJSON geometry in.
func FromLineString(line orb.LineString) (*Route, error) {
	if len(line) < 2 {
		return nil, ErrInvalidRoute
	}

	r := &Route{
		line:       line.Clone(),
		segLengths: make([]float64, len(line)-1),
		suffix:     make([]float64, len(line)-1),
	}

	for i := 0; i < len(line)-1; i++ {
		r.segLengths[i] = geo.Distance(pointOf(line[i]), pointOf(line[i+1]))
		r.totalM += r.segLengths[i]
	}
	// suffix[i] = sum of segment lengths strictly after i
	for i := len(r.segLengths) - 2; i >= 0; i-- {
		r.suffix[i] = r.suffix[i+1] + r.segLengths[i+1]
	}

	return r, nil
}

// LengthM returns the total polyline length in meters.
func (r *Route) LengthM() float64 {
	return r.totalM
}

// NumVertices returns the vertex count.
func (r *Route) NumVertices() int {
	return len(r.line)
}

// End returns the final vertex, the arrival target.
func (r *Route) End() geo.Point {
	return pointOf(r.line[len(r.line)-1])
}

// Vertices returns a copy of the polyline as geo points.
func (r *Route) Vertices() []geo.Point {
	out := make([]geo.Point, len(r.line))
	for i, p := range r.line {
		out[i] = pointOf(p)
	}
	return out
}

// Projection is the result of projecting a query point onto the route.
type Projection struct {
	Nearest      geo.Point
	SegmentIndex int
	// DistanceM is the haversine distance from the query to the nearest
	// point on the route.
	DistanceM float64
}

// Project finds the nearest point on the polyline to q. Each segment is
// parametrized as A + t(B−A) with t solved in the planar sense and clamped
// to [0,1]; candidates are compared by haversine distance. The first
// segment achieving the minimum wins, so results are deterministic from
// route start.
func (r *Route) Project(q geo.Point) Projection {
	qp := orb.Point{q.Lon, q.Lat}

	best := Projection{SegmentIndex: 0}
	bestDist := -1.0

	for i := 0; i < len(r.line)-1; i++ {
		cand := projectOntoSegment(qp, r.line[i], r.line[i+1])
		d := geo.Distance(q, pointOf(cand))
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = Projection{
				Nearest:      pointOf(cand),
				SegmentIndex: i,
				DistanceM:    d,
			}
		}
	}

	return best
}

// RemainingDistance projects q onto the route and returns the projection
// together with the distance to the route end: haversine(q, nearest) plus
// the lengths of every whole segment strictly after the owning one.
func (r *Route) RemainingDistance(q geo.Point) (Projection, float64) {
	proj := r.Project(q)
	return proj, proj.DistanceM + r.suffix[proj.SegmentIndex]
}

// projectOntoSegment returns the point on segment a–b nearest to p under a
// planar parametrization, with the parameter clamped to the segment.
func projectOntoSegment(p, a, b orb.Point) orb.Point {
	dx := b[0] - a[0]
	dy := b[1] - a[1]

	if dx == 0 && dy == 0 {
		// Degenerate segment: both endpoints coincide.
		return a
	}

	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return orb.Point{a[0] + t*dx, a[1] + t*dy}
}

func pointOf(p orb.Point) geo.Point {
	return geo.Point{Lat: p.Lat(), Lon: p.Lon()}
}

package route

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSON reads a route from a GeoJSON file. The file may contain a bare
// LineString geometry or a FeatureCollection; in the latter case the first
// LineString feature wins.
func LoadGeoJSON(path string) (*Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file %s: %w", path, err)
	}

	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		for _, f := range fc.Features {
			if ls, ok := f.Geometry.(orb.LineString); ok {
				return FromLineString(ls)
			}
		}
		return nil, fmt.Errorf("no LineString feature in %s", path)
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse route file %s: %w", path, err)
	}
	ls, ok := g.Geometry().(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("route file %s is not a LineString", path)
	}
	return FromLineString(ls)
}

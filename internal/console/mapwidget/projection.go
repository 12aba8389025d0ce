package mapwidget

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

// FromLonLat reprojects an EPSG:4326 geometry to EPSG:3857 without touching g.
func FromLonLat(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), project.WGS84.ToMercator)
}

// ToLonLat reprojects an EPSG:3857 geometry back to EPSG:4326 without touching g.
func ToLonLat(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), project.Mercator.ToWGS84)
}

// ReadFeature decodes a GeoJSON geometry object in EPSG:4326 into a map feature.
func ReadFeature(raw json.RawMessage, id string) (*Feature, error) {
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal geometry error: %w", err)
	}

	if g.Geometry() == nil {
		return nil, fmt.Errorf("empty geometry %q", id) //nolint:goerr113
	}

	return &Feature{ID: id, Geometry: FromLonLat(g.Geometry())}, nil
}

// Coordinates renders g as the nested coordinate arrays GeoJSON uses.
func Coordinates(g orb.Geometry) (any, error) {
	switch v := g.(type) {
	case orb.Point:
		return point(v), nil
	case orb.LineString:
		return line(v), nil
	case orb.Polygon:
		rings := make([][][]float64, 0, len(v))
		for _, r := range v {
			rings = append(rings, line(orb.LineString(r)))
		}

		return rings, nil
	default:
		return nil, fmt.Errorf("unsupported geometry %T", g) //nolint:goerr113
	}
}

// FeatureCollection renders features as GeoJSON in map projection.
func FeatureCollection(features []*Feature) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		if f.ID != "" {
			gf.ID = f.ID
		}

		fc.Append(gf)
	}

	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal features error: %w", err)
	}

	return b, nil
}

func point(p orb.Point) []float64 {
	return []float64{p[0], p[1]}
}

func line(ls orb.LineString) [][]float64 {
	out := make([][]float64, 0, len(ls))
	for _, p := range ls {
		out = append(out, point(p))
	}

	return out
}

package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

type GeometryType string

const (
	GeometryPoint      GeometryType = "Point"
	GeometryLineString GeometryType = "LineString"
	GeometryPolygon    GeometryType = "Polygon"
)

var ErrUnknownGeometryType = errors.New("unknown geometry type")

func ParseGeometryType(s string) (GeometryType, error) {
	switch t := GeometryType(s); t {
	case GeometryPoint, GeometryLineString, GeometryPolygon:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGeometryType, s)
	}
}

// Geometry is a persisted record. Geometry holds a GeoJSON geometry object in EPSG:4326.
type Geometry struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	GeometryType GeometryType    `json:"geometry_type"` //nolint:tagliatelle
	Geometry     json.RawMessage `json:"geometry"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}

type GeometryStats struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"by_type"` //nolint:tagliatelle
}

package mapwidget

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/paulmach/orb"
)

var ErrGeometryMismatch = errors.New("drawn geometry does not match draw type")

type Interaction interface {
	Kind() string
}

type DrawEvent struct {
	Type    models.GeometryType
	Feature *Feature
}

// Draw sketches one geometry kind into its source until Finish is called.
type Draw struct {
	Type   models.GeometryType
	Source *VectorSource

	mu        sync.Mutex
	listeners []func(DrawEvent)
}

func NewDraw(t models.GeometryType, source *VectorSource) *Draw {
	return &Draw{ //nolint:exhaustruct
		Type:   t,
		Source: source,
	}
}

func (d *Draw) Kind() string { return "draw:" + string(d.Type) }

func (d *Draw) OnDrawEnd(fn func(DrawEvent)) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

// Finish completes the gesture with g in map projection. The feature lands in
// the source before any drawend listener runs.
func (d *Draw) Finish(g orb.Geometry) (*Feature, error) {
	g, err := conform(d.Type, g)
	if err != nil {
		return nil, err
	}

	f := &Feature{Geometry: g} //nolint:exhaustruct
	d.Source.AddFeature(f)

	d.mu.Lock()
	listeners := append([]func(DrawEvent){}, d.listeners...)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(DrawEvent{Type: d.Type, Feature: f})
	}

	return f, nil
}

func conform(t models.GeometryType, g orb.Geometry) (orb.Geometry, error) {
	switch v := g.(type) {
	case orb.Point:
		if t == models.GeometryPoint {
			return v, nil
		}
	case orb.LineString:
		if t == models.GeometryLineString && len(v) >= 2 {
			return v, nil
		}
	case orb.Polygon:
		if t == models.GeometryPolygon && len(v) > 0 && len(v[0]) >= 3 {
			return closeRings(v), nil
		}
	}

	return nil, fmt.Errorf("%w: want %s got %T", ErrGeometryMismatch, t, g)
}

func closeRings(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(p))

	for _, r := range p {
		if len(r) > 0 && !r.Closed() {
			r = append(r.Clone(), r[0])
		}

		out = append(out, r)
	}

	return out
}

package mapservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/Leopold1975/gis_console/internal/console/gisapi"
	"github.com/Leopold1975/gis_console/internal/console/mapwidget"
	"github.com/Leopold1975/gis_console/internal/console/services/geomform"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/pkg/logger"
	"github.com/paulmach/orb"
)

type DrawMode string

const (
	DrawNone       DrawMode = "None"
	DrawPoint      DrawMode = DrawMode(models.GeometryPoint)
	DrawLineString DrawMode = DrawMode(models.GeometryLineString)
	DrawPolygon    DrawMode = DrawMode(models.GeometryPolygon)

	PersistedLayer = "geometries"
	ScratchLayer   = "scratch"
)

var (
	ErrInvalidDrawType = errors.New("invalid draw type")
	ErrNotOpen         = errors.New("map is not open")
	ErrClosed          = errors.New("map is closed")
	ErrNotDrawing      = errors.New("no draw interaction attached")
	ErrNoPendingDraw   = errors.New("no drawn geometry awaiting details")
)

type Client interface {
	ListGeometries(context.Context, ...gisapi.RequestEditorFn) ([]models.Geometry, error)
	CreateGeometry(context.Context, gisapi.CreateGeometryRequest, ...gisapi.RequestEditorFn) (models.Geometry, error)
	DeleteGeometry(context.Context, int64, ...gisapi.RequestEditorFn) error
	GeometryStats(context.Context, ...gisapi.RequestEditorFn) (models.GeometryStats, error)
}

// Widget is the map rendering capability the dashboard drives.
type Widget interface {
	Ready() <-chan struct{}
	SetTarget(target string)
	AddLayer(mapwidget.Layer)
	AddInteraction(mapwidget.Interaction)
	RemoveInteraction(mapwidget.Interaction) bool
	SetView(mapwidget.View)
	UpdateSize()
}

type Notifier interface {
	Alert(string)
}

// pending is a drawn shape that sits in the scratch layer until the server
// acknowledges it.
type pending struct {
	geometryType models.GeometryType
	feature      *mapwidget.Feature
}

// Dashboard owns the widget for its mounted lifetime.
type Dashboard struct {
	client Client
	widget Widget
	notify Notifier
	lg     logger.Logger
	cfg    config.Map
	target string

	mu         sync.Mutex
	opened     bool
	closed     bool
	persisted  *mapwidget.VectorSource
	scratch    *mapwidget.VectorSource
	draw       *mapwidget.Draw
	mode       DrawMode
	geometries []models.Geometry
	pending    *pending
	form       *geomform.Form
}

func New(client Client, widget Widget, notify Notifier, cfg config.Map, target string, lg logger.Logger) *Dashboard {
	return &Dashboard{ //nolint:exhaustruct
		client:    client,
		widget:    widget,
		notify:    notify,
		lg:        lg,
		cfg:       cfg,
		target:    target,
		persisted: mapwidget.NewVectorSource(),
		scratch:   mapwidget.NewVectorSource(),
		mode:      DrawNone,
	}
}

// Open binds the widget, waits for its ready signal, attaches layers and view,
// then loads the saved geometries. Calling Open again is a no-op.
func (d *Dashboard) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	if d.opened {
		return nil
	}

	d.widget.SetTarget(d.target)

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait for map error: %w", ctx.Err())
	case <-d.widget.Ready():
	}

	d.widget.AddLayer(mapwidget.TileLayer{URL: d.cfg.TileURL})
	d.widget.AddLayer(mapwidget.VectorLayer{LayerName: PersistedLayer, Source: d.persisted})
	d.widget.AddLayer(mapwidget.VectorLayer{LayerName: ScratchLayer, Source: d.scratch})

	center := mapwidget.FromLonLat(orb.Point{d.cfg.CenterLon, d.cfg.CenterLat}).(orb.Point) //nolint:forcetypeassert
	d.widget.SetView(mapwidget.View{Center: center, Zoom: d.cfg.Zoom})
	d.widget.UpdateSize()

	d.opened = true
	d.lg.Debugf("map initialized and sized")

	if err := d.loadLocked(ctx); err != nil {
		d.lg.Errorf("initial geometries load error: %s", err.Error())
	}

	return nil
}

// SetDrawMode swaps the draw interaction. The previous one is always removed
// first; None and rejected modes leave nothing attached.
func (d *Dashboard) SetDrawMode(mode DrawMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usableLocked(); err != nil {
		return err
	}

	if d.draw != nil {
		d.widget.RemoveInteraction(d.draw)
		d.draw = nil
	}

	if mode == DrawNone {
		d.mode = DrawNone
		d.lg.Debugf("draw none selected")

		return nil
	}

	t, err := models.ParseGeometryType(string(mode))
	if err != nil {
		d.mode = DrawNone
		d.lg.Warnf("invalid draw type %q", mode)

		return fmt.Errorf("%w: %q", ErrInvalidDrawType, mode)
	}

	draw := mapwidget.NewDraw(t, d.scratch)
	draw.OnDrawEnd(d.onDrawEnd)

	d.widget.AddInteraction(draw)
	d.draw = draw
	d.mode = mode
	d.lg.Debugf("draw added %s", t)

	return nil
}

// CompleteDraw finishes the active gesture with g in map projection.
func (d *Dashboard) CompleteDraw(g orb.Geometry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usableLocked(); err != nil {
		return err
	}

	if d.draw == nil {
		return ErrNotDrawing
	}

	if _, err := d.draw.Finish(g); err != nil {
		return fmt.Errorf("finish draw error: %w", err)
	}

	return nil
}

// onDrawEnd runs inside Draw.Finish, which is only called from CompleteDraw
// with d.mu held.
func (d *Dashboard) onDrawEnd(ev mapwidget.DrawEvent) {
	if d.pending != nil {
		d.scratch.RemoveFeature(d.pending.feature)
	}

	d.pending = &pending{geometryType: ev.Type, feature: ev.Feature}
	d.form = geomform.New(ev.Type)
	d.lg.Debugf("drawend %s", ev.Type)
}

// EditForm applies fn to the open form.
func (d *Dashboard) EditForm(fn func(*geomform.Form) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.form == nil {
		return ErrNoPendingDraw
	}

	return fn(d.form)
}

// SaveForm persists the pending shape. On failure the shape is dropped from
// the map as if it had never been drawn.
func (d *Dashboard) SaveForm(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usableLocked(); err != nil {
		return err
	}

	if d.pending == nil || d.form == nil {
		return ErrNoPendingDraw
	}

	sub, err := d.form.Submit()
	if err != nil {
		return fmt.Errorf("submit form error: %w", err)
	}

	coords, err := mapwidget.Coordinates(mapwidget.ToLonLat(d.pending.feature.Geometry))
	if err != nil {
		d.rollbackLocked()

		return fmt.Errorf("coordinates error: %w", err)
	}

	created, err := d.client.CreateGeometry(ctx, gisapi.CreateGeometryRequest{
		Name:         sub.Name,
		Description:  sub.Description,
		GeometryType: d.pending.geometryType,
		Coordinates:  coords,
		Metadata:     sub.Metadata,
	})
	if err != nil {
		d.lg.Errorf("save geometry error: %s", err.Error())
		d.notify.Alert(gisapi.MessageOf(err, "Error saving geometry"))
		d.rollbackLocked()

		return fmt.Errorf("save geometry error: %w", err)
	}

	f := d.pending.feature
	d.scratch.RemoveFeature(f)

	if created.ID != 0 {
		f.ID = strconv.FormatInt(created.ID, 10)
	}

	d.persisted.AddFeature(f)

	d.pending = nil
	d.form = nil

	if err := d.loadLocked(ctx); err != nil {
		d.lg.Errorf("reload geometries error: %s", err.Error())
	}

	d.notify.Alert("Geometry saved successfully!")

	return nil
}

// CancelForm drops the pending shape without any request.
func (d *Dashboard) CancelForm() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usableLocked(); err != nil {
		return err
	}

	if d.pending == nil {
		return ErrNoPendingDraw
	}

	d.rollbackLocked()

	return nil
}

func (d *Dashboard) rollbackLocked() {
	if d.pending != nil {
		d.scratch.RemoveFeature(d.pending.feature)
	}

	d.pending = nil
	d.form = nil
}

// LoadGeometries replaces the persisted layer with what the server has.
func (d *Dashboard) LoadGeometries(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usableLocked(); err != nil {
		return err
	}

	return d.loadLocked(ctx)
}

func (d *Dashboard) loadLocked(ctx context.Context) error {
	geoms, err := d.client.ListGeometries(ctx)
	if err != nil {
		return fmt.Errorf("list geometries error: %w", err)
	}

	features := make([]*mapwidget.Feature, 0, len(geoms))

	for _, g := range geoms {
		f, err := mapwidget.ReadFeature(g.Geometry, strconv.FormatInt(g.ID, 10))
		if err != nil {
			d.lg.Warnf("skip geometry %d: %s", g.ID, err.Error())

			continue
		}

		features = append(features, f)
	}

	d.geometries = geoms
	d.persisted.Replace(features)
	d.lg.Debugf("features added %d", len(features))

	return nil
}

func (d *Dashboard) DeleteGeometry(ctx context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usableLocked(); err != nil {
		return err
	}

	if err := d.client.DeleteGeometry(ctx, id); err != nil {
		d.lg.Errorf("delete geometry %d error: %s", id, err.Error())
		d.notify.Alert("Error deleting geometry")

		return fmt.Errorf("delete geometry error: %w", err)
	}

	if err := d.loadLocked(ctx); err != nil {
		d.lg.Errorf("reload geometries error: %s", err.Error())
	}

	d.notify.Alert("Geometry deleted successfully!")

	return nil
}

func (d *Dashboard) Stats(ctx context.Context) (models.GeometryStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.usableLocked(); err != nil {
		return models.GeometryStats{}, err
	}

	stats, err := d.client.GeometryStats(ctx)
	if err != nil {
		return models.GeometryStats{}, fmt.Errorf("geometry stats error: %w", err)
	}

	return stats, nil
}

// Close detaches drawing and releases the widget target.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if d.draw != nil {
		d.widget.RemoveInteraction(d.draw)
		d.draw = nil
	}

	d.widget.SetTarget("")
	d.closed = true
}

func (d *Dashboard) usableLocked() error {
	if d.closed {
		return ErrClosed
	}

	if !d.opened {
		return ErrNotOpen
	}

	return nil
}

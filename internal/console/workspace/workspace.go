// Package workspace holds the screens of every browser profile served by the console.
package workspace

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/Leopold1975/gis_console/internal/console/gisapi"
	"github.com/Leopold1975/gis_console/internal/console/mapwidget"
	"github.com/Leopold1975/gis_console/internal/console/services/adminservice"
	"github.com/Leopold1975/gis_console/internal/console/services/alerts"
	"github.com/Leopold1975/gis_console/internal/console/services/authservice"
	"github.com/Leopold1975/gis_console/internal/console/services/mapservice"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/internal/pkg/metrics"
	"github.com/Leopold1975/gis_console/pkg/logger"
)

// Workspace is one profile's auth state plus its two screens.
type Workspace struct {
	Auth        *authservice.Provider
	Admin       *adminservice.Panel
	Map         *mapservice.Dashboard
	Widget      *mapwidget.Map
	AdminAlerts *alerts.Queue
	MapAlerts   *alerts.Queue

	adminOnce sync.Once
}

// MountAdmin performs the initial admin load once per workspace.
func (w *Workspace) MountAdmin(ctx context.Context) error {
	var err error

	w.adminOnce.Do(func() {
		err = w.Admin.Load(ctx)
	})

	return err
}

type Registry struct {
	store authservice.Store
	cfg   config.Config
	doer  gisapi.HttpRequestDoer
	lg    logger.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func New(store authservice.Store, cfg config.Config, lg logger.Logger) *Registry {
	return &Registry{
		store:      store,
		cfg:        cfg,
		doer:       metrics.InstrumentDoer(&http.Client{Timeout: cfg.GIS.Timeout}), //nolint:exhaustruct
		lg:         lg,
		workspaces: make(map[string]*Workspace),
	}
}

// Get returns the workspace of profile, building and hydrating it on first use.
func (r *Registry) Get(ctx context.Context, profile string) (*Workspace, error) {
	r.mu.Lock()
	w, ok := r.workspaces[profile]
	r.mu.Unlock()

	if ok {
		return w, nil
	}

	// hydration may hit the session backend, so it runs unlocked
	built, err := r.build(ctx, profile)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.workspaces[profile]; ok {
		built.Map.Close()

		return w, nil
	}

	r.workspaces[profile] = built
	metrics.Workspaces.Inc()

	return built, nil
}

func (r *Registry) build(ctx context.Context, profile string) (*Workspace, error) {
	auth := authservice.New(r.store, profile, r.lg)

	client, err := gisapi.NewClient(r.cfg.GIS.BaseURL,
		gisapi.WithHTTPClient(r.doer),
		gisapi.WithTokenSource(auth),
	)
	if err != nil {
		return nil, fmt.Errorf("new gis client error: %w", err)
	}

	auth.SetClient(client)

	if err := auth.Load(ctx); err != nil {
		return nil, fmt.Errorf("load session error: %w", err)
	}

	w := &Workspace{ //nolint:exhaustruct
		Auth:        auth,
		Widget:      mapwidget.New(),
		AdminAlerts: &alerts.Queue{},
		MapAlerts:   &alerts.Queue{},
	}
	w.Admin = adminservice.New(client, auth, w.AdminAlerts, r.cfg.Admin, r.lg)
	w.Map = mapservice.New(client, w.Widget, w.MapAlerts, r.cfg.Map, "map-"+profile, r.lg)

	return w, nil
}

// Drop unmounts and forgets the workspace of profile.
func (r *Registry) Drop(profile string) {
	r.mu.Lock()
	w, ok := r.workspaces[profile]
	delete(r.workspaces, profile)
	r.mu.Unlock()

	if ok {
		w.Map.Close()
		metrics.Workspaces.Dec()
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for p, w := range r.workspaces {
		w.Map.Close()
		delete(r.workspaces, p)
		metrics.Workspaces.Dec()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.workspaces)
}

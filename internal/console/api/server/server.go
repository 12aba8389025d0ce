package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Leopold1975/gis_console/internal/console/workspace"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/internal/pkg/metrics"
	"github.com/Leopold1975/gis_console/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	serv       *http.Server
	workspaces Workspaces
	lg         logger.Logger
}

type Workspaces interface {
	Get(ctx context.Context, profile string) (*workspace.Workspace, error)
	Drop(profile string)
}

func New(cfg config.Server, ws Workspaces, lg logger.Logger) *Server {
	s := &Server{ //nolint:exhaustruct
		workspaces: ws,
		lg:         lg,
	}

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(metricsMiddleware, loggingMiddleware(s.lg))

	r.Get("/health", s.health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(profileMiddleware)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Post("/signin", s.signin)
			r.Post("/signout", s.signout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/", s.getAdmin)
			r.Put("/tab", s.setTab)
			r.Post("/reload", s.reloadAdmin)
			r.Get("/permissions", s.getPermissions)

			r.Post("/users", s.createUser)
			r.Put("/users/{id}", s.updateUser)
			r.Delete("/users/{id}", s.deleteUser)

			r.Post("/roles", s.createRole)
			r.Put("/roles/{id}", s.updateRole)
			r.Delete("/roles/{id}", s.deleteRole)

			r.Post("/departments", s.createDepartment)
			r.Put("/departments/{id}", s.updateDepartment)
			r.Delete("/departments/{id}", s.deleteDepartment)
		})

		r.Route("/map", func(r chi.Router) {
			r.Get("/", s.getMap)
			r.Put("/mode", s.setMode)
			r.Post("/draw", s.draw)
			r.Put("/form", s.editForm)
			r.Post("/form", s.saveForm)
			r.Delete("/form", s.cancelForm)
			r.Delete("/geometries/{id}", s.deleteGeometry)
			r.Get("/features", s.getFeatures)
			r.Get("/stats", s.getStats)
		})
	})

	return r
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// workspace resolves the caller's workspace or answers 500 itself.
func (s *Server) workspace(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	ws, err := s.workspaces.Get(r.Context(), profileFrom(r.Context()))
	if err != nil {
		handleError(w, fmt.Errorf("workspace error: %w", err), http.StatusInternalServerError)

		return nil, false
	}

	return ws, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return false
	}

	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handleError(w, fmt.Errorf("parse id error: %w", err), http.StatusBadRequest)

		return 0, false
	}

	return id, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b) //nolint:errcheck
}

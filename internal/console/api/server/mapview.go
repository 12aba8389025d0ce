package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Leopold1975/gis_console/internal/console/mapwidget"
	"github.com/Leopold1975/gis_console/internal/console/services/geomform"
	"github.com/Leopold1975/gis_console/internal/console/services/mapservice"
	"github.com/Leopold1975/gis_console/internal/console/workspace"
	"github.com/paulmach/orb/geojson"
)

type MapResponse struct {
	mapservice.View
	Viewport mapwidget.View `json:"viewport"`
	Alerts   []string       `json:"alerts"`
}

type ModeRequest struct {
	Mode mapservice.DrawMode `json:"mode"`
}

// DrawRequest carries the finished sketch as a GeoJSON geometry in EPSG:3857.
type DrawRequest struct {
	Geometry json.RawMessage `json:"geometry"`
}

type FormRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Fields      []geomform.Field `json:"fields"`
}

func mapSnapshot(ws *workspace.Workspace) MapResponse {
	return MapResponse{View: ws.Map.View(), Viewport: ws.Widget.View(), Alerts: ws.MapAlerts.Drain()}
}

func (s *Server) mapAction(w http.ResponseWriter, r *http.Request, fn func(*workspace.Workspace) error) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	if err := fn(ws); err != nil {
		handleErrorAlerts(w, err, statusFor(err), ws.MapAlerts.Drain())

		return
	}

	writeJSON(w, http.StatusOK, mapSnapshot(ws))
}

// getMap mounts the dashboard on first use.
func (s *Server) getMap(w http.ResponseWriter, r *http.Request) {
	s.mapAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Map.Open(r.Context())
	})
}

func (s *Server) setMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if !decode(w, r, &req) {
		return
	}

	s.mapAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Map.SetDrawMode(req.Mode)
	})
}

func (s *Server) draw(w http.ResponseWriter, r *http.Request) {
	var req DrawRequest
	if !decode(w, r, &req) {
		return
	}

	g, err := geojson.UnmarshalGeometry(req.Geometry)
	if err != nil || g.Geometry() == nil {
		handleError(w, fmt.Errorf("geometry error: %w", mapwidget.ErrGeometryMismatch), http.StatusBadRequest)

		return
	}

	s.mapAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Map.CompleteDraw(g.Geometry())
	})
}

func (s *Server) editForm(w http.ResponseWriter, r *http.Request) {
	var req FormRequest
	if !decode(w, r, &req) {
		return
	}

	s.mapAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Map.EditForm(func(f *geomform.Form) error {
			f.Name = req.Name
			f.Description = req.Description

			if req.Fields != nil {
				f.Fields = req.Fields
			}

			return nil
		})
	})
}

func (s *Server) saveForm(w http.ResponseWriter, r *http.Request) {
	s.mapAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Map.SaveForm(r.Context())
	})
}

func (s *Server) cancelForm(w http.ResponseWriter, r *http.Request) {
	s.mapAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Map.CancelForm()
	})
}

func (s *Server) deleteGeometry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mapAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Map.DeleteGeometry(r.Context(), id)
	})
}

func (s *Server) getFeatures(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	b, err := mapwidget.FeatureCollection(ws.Map.Features())
	if err != nil {
		handleError(w, err, http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(b) //nolint:errcheck
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	stats, err := ws.Map.Stats(r.Context())
	if err != nil {
		handleError(w, err, statusFor(err))

		return
	}

	writeJSON(w, http.StatusOK, stats)
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Leopold1975/gis_console/internal/console/gisapi"
	"github.com/Leopold1975/gis_console/internal/console/mapwidget"
	"github.com/Leopold1975/gis_console/internal/console/services/adminservice"
	"github.com/Leopold1975/gis_console/internal/console/services/geomform"
	"github.com/Leopold1975/gis_console/internal/console/services/mapservice"
)

type Error struct {
	Err    string   `json:"error"`
	Alerts []string `json:"alerts,omitempty"`
}

func (se Error) ToJSON() []byte {
	b, err := json.Marshal(se)
	if err != nil {
		return []byte(`{"error": "marshal error"}`)
	}

	return b
}

func handleError(w http.ResponseWriter, err error, code int) {
	handleErrorAlerts(w, err, code, nil)
}

// handleErrorAlerts also carries the alerts the failed action raised.
func handleErrorAlerts(w http.ResponseWriter, err error, code int, alerts []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	e := Error{Err: err.Error(), Alerts: alerts}

	w.Write(e.ToJSON()) //nolint:errcheck
}

// statusFor maps service errors to HTTP codes. Upstream failures keep the
// status the GIS service answered with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, adminservice.ErrUnknownTab),
		errors.Is(err, mapservice.ErrInvalidDrawType),
		errors.Is(err, mapwidget.ErrGeometryMismatch),
		errors.Is(err, geomform.ErrNameRequired),
		errors.Is(err, geomform.ErrNoSuchField):
		return http.StatusBadRequest
	case errors.Is(err, adminservice.ErrNotPermitted),
		errors.Is(err, adminservice.ErrProtectedRole):
		return http.StatusForbidden
	case errors.Is(err, errUserNotLoaded):
		return http.StatusNotFound
	case errors.Is(err, adminservice.ErrNotConfirmed):
		return http.StatusPreconditionRequired
	case errors.Is(err, mapservice.ErrNotOpen),
		errors.Is(err, mapservice.ErrNotDrawing),
		errors.Is(err, mapservice.ErrNoPendingDraw):
		return http.StatusConflict
	case errors.Is(err, mapservice.ErrClosed):
		return http.StatusGone
	}

	if code := gisapi.StatusOf(err); code != 0 {
		return code
	}

	return http.StatusBadGateway
}

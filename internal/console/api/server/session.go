package server

import (
	"net/http"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/Leopold1975/gis_console/internal/console/gisapi"
)

type SessionResponse struct {
	Authenticated bool                `json:"authenticated"`
	User          *models.SessionUser `json:"user,omitempty"`
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{Authenticated: ws.Auth.Authenticated(), User: ws.Auth.User()})
}

// signin drops the profile's screens on success so they are rebuilt for the
// new user on the next request.
func (s *Server) signin(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	var creds gisapi.SigninRequest
	if !decode(w, r, &creds) {
		return
	}

	res := ws.Auth.Signin(r.Context(), creds)
	if !res.Success {
		writeJSON(w, http.StatusUnauthorized, res)

		return
	}

	s.workspaces.Drop(ws.Auth.Profile())
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) signout(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	ws.Auth.Signout(r.Context())
	s.workspaces.Drop(ws.Auth.Profile())

	w.WriteHeader(http.StatusNoContent)
}

package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Leopold1975/gis_console/internal/console/services/adminservice"
	"github.com/Leopold1975/gis_console/internal/console/workspace"
)

// AdminResponse is the admin screen plus the alerts raised since the last one.
type AdminResponse struct {
	adminservice.View
	Alerts []string `json:"alerts"`
}

type TabRequest struct {
	Tab adminservice.Tab `json:"tab"`
}

var errUserNotLoaded = errors.New("user is not in the loaded list")

func adminSnapshot(ws *workspace.Workspace) AdminResponse {
	return AdminResponse{View: ws.Admin.View(), Alerts: ws.AdminAlerts.Drain()}
}

// confirmation reads the operator's answer from ?confirm=true.
func confirmation(r *http.Request) adminservice.Confirmer {
	ok := r.URL.Query().Get("confirm") == "true"

	return adminservice.ConfirmFunc(func(string) bool { return ok })
}

// adminAction runs fn against the caller's panel and answers with a fresh snapshot.
func (s *Server) adminAction(w http.ResponseWriter, r *http.Request, fn func(*workspace.Workspace) error) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	if err := fn(ws); err != nil {
		handleErrorAlerts(w, err, statusFor(err), ws.AdminAlerts.Drain())

		return
	}

	writeJSON(w, http.StatusOK, adminSnapshot(ws))
}

func (s *Server) getAdmin(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	if err := ws.MountAdmin(r.Context()); err != nil {
		s.lg.Warnf("profile %s: admin load error: %s", ws.Auth.Profile(), err.Error())
	}

	writeJSON(w, http.StatusOK, adminSnapshot(ws))
}

func (s *Server) reloadAdmin(w http.ResponseWriter, r *http.Request) {
	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Admin.Load(r.Context())
	})
}

func (s *Server) setTab(w http.ResponseWriter, r *http.Request) {
	var req TabRequest
	if !decode(w, r, &req) {
		return
	}

	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Admin.SetTab(req.Tab)
	})
}

func (s *Server) getPermissions(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ws.Admin.Matrix())
}

// Users

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var form adminservice.UserForm
	if !decode(w, r, &form) {
		return
	}

	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		ws.Admin.CloseUserForm()
		ws.Admin.OpenUserForm()

		return ws.Admin.SaveUser(r.Context(), form)
	})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var form adminservice.UserForm
	if !decode(w, r, &form) {
		return
	}

	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		u, found := ws.Admin.User(id)
		if !found {
			return fmt.Errorf("%w: %d", errUserNotLoaded, id)
		}

		if err := ws.Admin.EditUser(u); err != nil {
			return err //nolint:wrapcheck
		}

		return ws.Admin.SaveUser(r.Context(), form)
	})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Admin.DeleteUser(r.Context(), id, confirmation(r))
	})
}

// Roles

func (s *Server) createRole(w http.ResponseWriter, r *http.Request) {
	var form adminservice.RoleForm
	if !decode(w, r, &form) {
		return
	}

	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Admin.CreateRole(r.Context(), form)
	})
}

func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var form adminservice.RoleForm
	if !decode(w, r, &form) {
		return
	}

	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Admin.UpdateRole(r.Context(), id, form)
	})
}

func (s *Server) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Admin.DeleteRole(r.Context(), id, confirmation(r))
	})
}

// Departments

func (s *Server) createDepartment(w http.ResponseWriter, r *http.Request) {
	var form adminservice.DepartmentForm
	if !decode(w, r, &form) {
		return
	}

	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Admin.CreateDepartment(r.Context(), form)
	})
}

func (s *Server) updateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var form adminservice.DepartmentForm
	if !decode(w, r, &form) {
		return
	}

	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Admin.UpdateDepartment(r.Context(), id, form)
	})
}

func (s *Server) deleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.adminAction(w, r, func(ws *workspace.Workspace) error {
		return ws.Admin.DeleteDepartment(r.Context(), id, confirmation(r))
	})
}

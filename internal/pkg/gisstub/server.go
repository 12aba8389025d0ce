// Package gisstub is an in-memory stand-in for the remote GIS REST service.
package gisstub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/Leopold1975/gis_console/internal/console/gisapi"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/internal/pkg/jwtauth"
	"github.com/Leopold1975/gis_console/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/paulmach/orb/geojson"
)

type Server struct {
	serv  *http.Server
	store *Store
	cfg   config.Stub
	lg    logger.Logger
}

func New(cfg config.Stub, store *Store, lg logger.Logger) *Server {
	s := &Server{ //nolint:exhaustruct
		store: store,
		cfg:   cfg,
		lg:    lg,
	}

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second, //nolint:gomnd
	}

	return s
}

// Handler mounts the REST contract under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signin", s.signin)
		r.Post("/auth/signup", s.signup)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)

			r.Get("/users", s.listUsers)
			r.Get("/users/{id}", s.getUser)
			r.Put("/users/{id}", s.updateUser)
			r.Delete("/users/{id}", s.deleteUser)

			r.Get("/roles", s.listRoles)
			r.Post("/roles", s.createRole)
			r.Put("/roles/{id}", s.updateRole)
			r.Delete("/roles/{id}", s.deleteRole)

			r.Get("/departments", s.listDepartments)
			r.Post("/departments", s.createDepartment)
			r.Put("/departments/{id}", s.updateDepartment)
			r.Delete("/departments/{id}", s.deleteDepartment)

			r.Get("/geometries", s.listGeometries)
			r.Get("/geometries/stats", s.geometryStats)
			r.Post("/geometries", s.createGeometry)
			r.Get("/geometries/{id}", s.getGeometry)
			r.Put("/geometries/{id}", s.updateGeometry)
			r.Delete("/geometries/{id}", s.deleteGeometry)
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
			return fmt.Errorf("shutdown error: %w", err)
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.serv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(gisapi.TokenHeader)
		if token == "" {
			writeMessage(w, http.StatusForbidden, "No token provided!")

			return
		}

		if _, err := jwtauth.ValidateToken(token, s.cfg.Secret); err != nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized!")

			return
		}

		next.ServeHTTP(w, r)
	})
}

// Auth

type signinResponse struct {
	AccessToken string `json:"accessToken"` //nolint:tagliatelle
	models.SessionUser
}

func (s *Server) signin(w http.ResponseWriter, r *http.Request) {
	var req gisapi.SigninRequest
	if !decode(w, r, &req) {
		return
	}

	u, perms, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User Not found.")

			return
		}

		writeMessage(w, http.StatusUnauthorized, "Invalid Password!")

		return
	}

	token, err := jwtauth.GetToken(u.ID, u.Username, u.Role, s.cfg.TTL, s.cfg.Secret)
	if err != nil {
		s.lg.Errorf("get token error: %s", err.Error())
		writeMessage(w, http.StatusInternalServerError, "Token error")

		return
	}

	writeJSON(w, http.StatusOK, signinResponse{
		AccessToken: token,
		SessionUser: models.SessionUser{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			Role:        u.Role,
			Department:  u.Department,
			Permissions: perms,
		},
	})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req gisapi.SignupRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")

		return
	}

	_, err := s.store.CreateUser(models.User{ //nolint:exhaustruct
		Username:     req.Username,
		Email:        req.Email,
		RoleID:       req.RoleID,
		DepartmentID: req.DepartmentID,
	}, req.Password)
	if err != nil {
		s.writeStoreError(w, err, "Username is already in use!")

		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully!")
}

// Users

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Users())
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := s.store.User(id)
	if err != nil {
		s.writeStoreError(w, err, "")

		return
	}

	writeJSON(w, http.StatusOK, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req gisapi.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}

	err := s.store.UpdateUser(models.User{ //nolint:exhaustruct
		ID:           id,
		Username:     req.Username,
		Email:        req.Email,
		RoleID:       req.RoleID,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		s.writeStoreError(w, err, "")

		return
	}

	writeMessage(w, http.StatusOK, "User updated")
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteUser(id); err != nil {
		s.writeStoreError(w, err, "")

		return
	}

	writeMessage(w, http.StatusOK, "User deleted")
}

// Roles

func (s *Server) listRoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Roles())
}

func (s *Server) createRole(w http.ResponseWriter, r *http.Request) {
	var req gisapi.RoleRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "Role name is required")

		return
	}

	role, err := s.store.CreateRole(models.Role{Name: req.Name, Description: req.Description, Permissions: req.Permissions}) //nolint:exhaustruct,lll
	if err != nil {
		s.writeStoreError(w, err, "Role already exists")

		return
	}

	writeJSON(w, http.StatusCreated, role)
}

func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req gisapi.RoleRequest
	if !decode(w, r, &req) {
		return
	}

	err := s.store.UpdateRole(models.Role{ID: id, Name: req.Name, Description: req.Description, Permissions: req.Permissions})
	if err != nil {
		s.writeStoreError(w, err, "")

		return
	}

	writeMessage(w, http.StatusOK, "Role updated")
}

func (s *Server) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteRole(id); err != nil {
		s.writeStoreError(w, err, "")

		return
	}

	writeMessage(w, http.StatusOK, "Role deleted")
}

// Departments

func (s *Server) listDepartments(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Departments())
}

func (s *Server) createDepartment(w http.ResponseWriter, r *http.Request) {
	var req gisapi.DepartmentRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "Department name is required")

		return
	}

	d, err := s.store.CreateDepartment(models.Department{Name: req.Name, Description: req.Description}) //nolint:exhaustruct
	if err != nil {
		s.writeStoreError(w, err, "Department already exists")

		return
	}

	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) updateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req gisapi.DepartmentRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.store.UpdateDepartment(models.Department{ID: id, Name: req.Name, Description: req.Description}); err != nil {
		s.writeStoreError(w, err, "")

		return
	}

	writeMessage(w, http.StatusOK, "Department updated")
}

func (s *Server) deleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteDepartment(id); err != nil {
		s.writeStoreError(w, err, "")

		return
	}

	writeMessage(w, http.StatusOK, "Department deleted")
}

// Geometries

func (s *Server) listGeometries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Geometries())
}

func (s *Server) getGeometry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	g, err := s.store.Geometry(id)
	if err != nil {
		s.writeStoreError(w, err, "")

		return
	}

	writeJSON(w, http.StatusOK, g)
}

func (s *Server) geometryStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

func (s *Server) createGeometry(w http.ResponseWriter, r *http.Request) {
	var req gisapi.CreateGeometryRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "Name is required")

		return
	}

	raw, err := geometryObject(req.GeometryType, req.Coordinates)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid geometry")

		return
	}

	g := s.store.CreateGeometry(models.Geometry{ //nolint:exhaustruct
		Name:         req.Name,
		Description:  req.Description,
		GeometryType: req.GeometryType,
		Geometry:     raw,
		Metadata:     toAny(req.Metadata),
	})

	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) updateGeometry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req gisapi.UpdateGeometryRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.store.UpdateGeometry(id, req.Name, req.Description, toAny(req.Metadata)); err != nil {
		s.writeStoreError(w, err, "")

		return
	}

	writeMessage(w, http.StatusOK, "Geometry updated")
}

func (s *Server) deleteGeometry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteGeometry(id); err != nil {
		s.writeStoreError(w, err, "")

		return
	}

	writeMessage(w, http.StatusOK, "Geometry deleted")
}

// geometryObject checks that coordinates form a valid geometry of type t and
// returns it as a GeoJSON geometry object.
func geometryObject(t models.GeometryType, coordinates any) (json.RawMessage, error) {
	if _, err := models.ParseGeometryType(string(t)); err != nil {
		return nil, err //nolint:wrapcheck
	}

	raw, err := json.Marshal(map[string]any{"type": t, "coordinates": coordinates})
	if err != nil {
		return nil, fmt.Errorf("marshal geometry error: %w", err)
	}

	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal geometry error: %w", err)
	}

	if g.Geometry() == nil || g.Geometry().GeoJSONType() != string(t) {
		return nil, models.ErrUnknownGeometryType
	}

	return raw, nil
}

func toAny(m map[string]string) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error, conflict string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrAlreadyExists):
		writeMessage(w, http.StatusConflict, conflict)
	case errors.Is(err, ErrProtected):
		writeMessage(w, http.StatusForbidden, "Built-in roles cannot be deleted")
	default:
		s.lg.Errorf("store error: %s", err.Error())
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid id")

		return 0, false
	}

	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")

		return false
	}

	return true
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	json.NewEncoder(w).Encode(v) //nolint:errcheck,errchkjson
}

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Leopold1975/gis_console/internal/console/api/server"
	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore/memory"
	"github.com/Leopold1975/gis_console/internal/console/services/authservice"
	"github.com/Leopold1975/gis_console/internal/console/workspace"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/internal/pkg/gisstub"
	"github.com/Leopold1975/gis_console/pkg/logger"
	"github.com/stretchr/testify/suite"
)

type ConsoleSuite struct {
	suite.Suite
	stub    *httptest.Server
	console *httptest.Server
	client  *http.Client

	rejectGeometries atomic.Bool
}

func TestConsole(t *testing.T) {
	suite.Run(t, new(ConsoleSuite))
}

func (cs *ConsoleSuite) SetupTest() {
	store, err := gisstub.NewStore("admin", "admin")
	cs.Require().NoError(err)

	stub := gisstub.New(config.Stub{TTL: time.Hour, Secret: "s"}, store, logger.NewNop()).Handler() //nolint:exhaustruct
	cs.rejectGeometries.Store(false)
	cs.stub = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cs.rejectGeometries.Load() && r.Method == http.MethodPost && r.URL.Path == "/api/geometries" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Invalid geometry"}`)) //nolint:errcheck

			return
		}

		stub.ServeHTTP(w, r)
	}))

	cfg := config.Config{ //nolint:exhaustruct
		GIS:   config.GIS{BaseURL: cs.stub.URL + "/api"}, //nolint:exhaustruct
		Admin: config.Admin{ProtectedRoleMaxID: 4},       //nolint:exhaustruct
		Map:   config.Map{CenterLon: 78.9629, CenterLat: 20.5937, Zoom: 5}, //nolint:exhaustruct
	}

	reg := workspace.New(memory.New(), cfg, logger.NewNop())
	cs.console = httptest.NewServer(server.New(cfg.Server, reg, logger.NewNop()).Handler())

	jar, err := cookiejar.New(nil)
	cs.Require().NoError(err)

	cs.client = &http.Client{Jar: jar} //nolint:exhaustruct
}

func (cs *ConsoleSuite) TearDownTest() {
	cs.console.Close()
	cs.stub.Close()
}

// call sends body as JSON and decodes the answer into out when out is not nil.
func (cs *ConsoleSuite) call(method, path string, body, out any) int {
	var r io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		cs.Require().NoError(err)

		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, cs.console.URL+path, r)
	cs.Require().NoError(err)

	resp, err := cs.client.Do(req)
	cs.Require().NoError(err)

	defer resp.Body.Close()

	if out != nil {
		cs.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func (cs *ConsoleSuite) signin() {
	var res authservice.Result

	code := cs.call(http.MethodPost, "/v1/session/signin", map[string]string{"username": "admin", "password": "admin"}, &res)
	cs.Require().Equal(http.StatusOK, code)
	cs.Require().True(res.Success)
}

func (cs *ConsoleSuite) TestSessionLifecycle() {
	var sess server.SessionResponse

	cs.Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/session", nil, &sess))
	cs.False(sess.Authenticated)

	var res authservice.Result

	code := cs.call(http.MethodPost, "/v1/session/signin", map[string]string{"username": "admin", "password": "bad"}, &res)
	cs.Equal(http.StatusUnauthorized, code)
	cs.Equal("Invalid Password!", res.Error)

	cs.signin()

	cs.Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/session", nil, &sess))
	cs.True(sess.Authenticated)
	cs.Equal("admin", sess.User.Username)
	cs.Equal("Admin", sess.User.Role)

	cs.Equal(http.StatusNoContent, cs.call(http.MethodPost, "/v1/session/signout", nil, nil))
	cs.Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/session", nil, &sess))
	cs.False(sess.Authenticated)
}

func (cs *ConsoleSuite) TestAnonymousAdminAlerts() {
	var view server.AdminResponse

	cs.Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/admin", nil, &view))
	cs.Equal("Not signed in", view.Header)
	cs.Equal([]string{"Error loading data. Please check your login."}, view.Alerts)
	cs.Empty(view.Users)
	cs.False(view.CanCreate)
}

func (cs *ConsoleSuite) TestAdminUserFlow() {
	cs.signin()

	var view server.AdminResponse

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/admin", nil, &view))
	cs.Equal("Logged in as: admin (Admin)", view.Header)
	cs.Len(view.Users, 1)
	cs.Len(view.Roles, 4)
	cs.True(view.CanCreate)

	code := cs.call(http.MethodPost, "/v1/admin/users", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": "secret", "roleId": 2,
	}, &view)
	cs.Require().Equal(http.StatusOK, code)
	cs.Equal([]string{"User created successfully!"}, view.Alerts)
	cs.Require().Len(view.Users, 2)
	cs.Equal("alice", view.Users[1].Username)
	cs.Equal("Dept. HOD", view.Users[1].RoleLabel)
	cs.Equal("N/A", view.Users[1].DepartmentLabel)
	cs.False(view.UserForm.Open)

	code = cs.call(http.MethodPut, "/v1/admin/users/2", map[string]any{
		"username": "alice", "email": "alice@example.com", "roleId": 4,
	}, &view)
	cs.Require().Equal(http.StatusOK, code)
	cs.Equal([]string{"User updated successfully!"}, view.Alerts)
	cs.Equal("QC", view.Users[1].Role)

	cs.Equal(http.StatusPreconditionRequired, cs.call(http.MethodDelete, "/v1/admin/users/2", nil, nil))
	cs.Equal(http.StatusOK, cs.call(http.MethodDelete, "/v1/admin/users/2?confirm=true", nil, &view))
	cs.Equal([]string{"User deleted!"}, view.Alerts)
	cs.Len(view.Users, 1)
}

func (cs *ConsoleSuite) TestAdminRolesAndDepartments() {
	cs.signin()

	var view server.AdminResponse

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/admin", nil, &view))

	cs.Equal(http.StatusForbidden, cs.call(http.MethodDelete, "/v1/admin/roles/2?confirm=true", nil, nil))

	code := cs.call(http.MethodPost, "/v1/admin/roles", map[string]any{"name": "Viewer", "permissions": []string{"read", ""}}, &view) //nolint:lll
	cs.Require().Equal(http.StatusOK, code)
	cs.Require().Len(view.Roles, 5)
	cs.Equal([]string{"read"}, view.Roles[4].Permissions)
	cs.True(view.Roles[4].CanDelete)
	cs.False(view.Roles[0].CanDelete)

	cs.Equal(http.StatusOK, cs.call(http.MethodDelete, "/v1/admin/roles/5?confirm=true", nil, &view))
	cs.Len(view.Roles, 4)

	code = cs.call(http.MethodPost, "/v1/admin/departments", map[string]any{"name": "Survey"}, &view)
	cs.Require().Equal(http.StatusOK, code)
	cs.Require().Len(view.Departments, 1)
	cs.Equal("N/A", view.Departments[0].Description)

	cs.Equal(http.StatusOK, cs.call(http.MethodPut, "/v1/admin/tab", map[string]string{"tab": "departments"}, &view))
	cs.Equal("departments", string(view.Tab))
	cs.Equal(http.StatusBadRequest, cs.call(http.MethodPut, "/v1/admin/tab", map[string]string{"tab": "audit"}, nil))

	var matrix []map[string]any

	cs.Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/admin/permissions", nil, &matrix))
	cs.Len(matrix, 4)
}

func (cs *ConsoleSuite) TestMapDrawAndSave() {
	cs.signin()

	var view server.MapResponse

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/map", nil, &view))
	cs.Equal("None", string(view.Mode))
	cs.InDelta(5.0, view.Viewport.Zoom, 1e-9)

	cs.Equal(http.StatusBadRequest, cs.call(http.MethodPut, "/v1/map/mode", map[string]string{"mode": "Circle"}, nil))
	cs.Require().Equal(http.StatusOK, cs.call(http.MethodPut, "/v1/map/mode", map[string]string{"mode": "Point"}, &view))
	cs.Equal("Point", string(view.Mode))

	point := map[string]any{"geometry": map[string]any{"type": "Point", "coordinates": []float64{8_593_000, 3_331_000}}}
	cs.Require().Equal(http.StatusOK, cs.call(http.MethodPost, "/v1/map/draw", point, &view))
	cs.True(view.FormOpen)
	cs.Equal("Add Point Details", view.Form.Title)
	cs.Equal(1, view.Scratch)

	cs.Equal(http.StatusBadRequest, cs.call(http.MethodPost, "/v1/map/form", nil, nil))

	form := map[string]any{"name": "Well", "fields": []map[string]string{{"key": "depth", "value": "30"}}}
	cs.Require().Equal(http.StatusOK, cs.call(http.MethodPut, "/v1/map/form", form, nil))
	cs.Require().Equal(http.StatusOK, cs.call(http.MethodPost, "/v1/map/form", nil, &view))
	cs.Equal([]string{"Geometry saved successfully!"}, view.Alerts)
	cs.False(view.FormOpen)
	cs.Equal(1, view.Features)
	cs.Zero(view.Scratch)
	cs.Require().Len(view.Geometries, 1)
	cs.Equal(models.GeometryPoint, view.Geometries[0].GeometryType)
	cs.Equal("30", view.Geometries[0].Metadata["depth"])

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID string `json:"id"`
		} `json:"features"`
	}

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/map/features", nil, &fc))
	cs.Equal("FeatureCollection", fc.Type)
	cs.Require().Len(fc.Features, 1)
	cs.Equal("1", fc.Features[0].ID)

	var stats models.GeometryStats

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/map/stats", nil, &stats))
	cs.Equal(1, stats.Total)

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodDelete, "/v1/map/geometries/1", nil, &view))
	cs.Equal([]string{"Geometry deleted successfully!"}, view.Alerts)
	cs.Zero(view.Features)
}

func (cs *ConsoleSuite) TestMapSaveFailureCarriesAlert() {
	cs.signin()
	cs.rejectGeometries.Store(true)

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/map", nil, nil))
	cs.Require().Equal(http.StatusOK, cs.call(http.MethodPut, "/v1/map/mode", map[string]string{"mode": "Point"}, nil))

	point := map[string]any{"geometry": map[string]any{"type": "Point", "coordinates": []float64{8_593_000, 3_331_000}}}
	cs.Require().Equal(http.StatusOK, cs.call(http.MethodPost, "/v1/map/draw", point, nil))
	cs.Require().Equal(http.StatusOK, cs.call(http.MethodPut, "/v1/map/form", map[string]any{"name": "Well"}, nil))

	var failed server.Error

	cs.Equal(http.StatusBadRequest, cs.call(http.MethodPost, "/v1/map/form", nil, &failed))
	cs.Equal([]string{"Invalid geometry"}, failed.Alerts)
	cs.Contains(failed.Err, "Invalid geometry")

	var view server.MapResponse

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/map", nil, &view))
	cs.Empty(view.Alerts)
	cs.False(view.FormOpen)
	cs.Zero(view.Scratch)
	cs.Empty(view.Geometries)
}

func (cs *ConsoleSuite) TestAdminFailureCarriesAlert() {
	cs.signin()

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/admin", nil, nil))

	var failed server.Error

	code := cs.call(http.MethodPost, "/v1/admin/users", map[string]any{"username": "admin", "password": "x"}, &failed)
	cs.Equal(http.StatusConflict, code)
	cs.Equal([]string{"Username is already in use!"}, failed.Alerts)
}

func (cs *ConsoleSuite) TestMapCancelDraw() {
	cs.signin()

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodGet, "/v1/map", nil, nil))
	cs.Require().Equal(http.StatusOK, cs.call(http.MethodPut, "/v1/map/mode", map[string]string{"mode": "LineString"}, nil))

	line := map[string]any{"geometry": map[string]any{"type": "LineString", "coordinates": [][]float64{{0, 0}, {1000, 1000}}}}
	cs.Require().Equal(http.StatusOK, cs.call(http.MethodPost, "/v1/map/draw", line, nil))

	var view server.MapResponse

	cs.Require().Equal(http.StatusOK, cs.call(http.MethodDelete, "/v1/map/form", nil, &view))
	cs.False(view.FormOpen)
	cs.Zero(view.Scratch)
	cs.Equal(http.StatusConflict, cs.call(http.MethodDelete, "/v1/map/form", nil, nil))
}

func (cs *ConsoleSuite) TestDrawBeforeOpen() {
	point := map[string]any{"geometry": map[string]any{"type": "Point", "coordinates": []float64{0, 0}}}
	cs.Equal(http.StatusConflict, cs.call(http.MethodPost, "/v1/map/draw", point, nil))
}

func (cs *ConsoleSuite) TestHealthAndMetrics() {
	var health map[string]string

	cs.Equal(http.StatusOK, cs.call(http.MethodGet, "/health", nil, &health))
	cs.Equal("ok", health["status"])

	resp, err := cs.client.Get(cs.console.URL + "/metrics") //nolint:noctx
	cs.Require().NoError(err)

	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	cs.Require().NoError(err)
	cs.Contains(string(b), "gis_console_requests_total")
}

package gisstub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/Leopold1975/gis_console/internal/console/gisapi"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/internal/pkg/gisstub"
	"github.com/Leopold1975/gis_console/pkg/logger"
	"github.com/stretchr/testify/suite"
)

type staticToken string

func (t staticToken) Token(context.Context) (string, error) { return string(t), nil }

type StubSuite struct {
	suite.Suite
	ts     *httptest.Server
	anon   *gisapi.Client
	client *gisapi.Client
}

func TestStub(t *testing.T) {
	suite.Run(t, new(StubSuite))
}

func (ss *StubSuite) SetupTest() {
	cfg := config.Stub{TTL: time.Hour, Secret: "test-secret"} //nolint:exhaustruct

	store, err := gisstub.NewStore("admin", "admin")
	ss.Require().NoError(err)

	ss.ts = httptest.NewServer(gisstub.New(cfg, store, logger.NewNop()).Handler())

	ss.anon, err = gisapi.NewClient(ss.ts.URL + "/api")
	ss.Require().NoError(err)

	resp, err := ss.anon.Signin(context.Background(), gisapi.SigninRequest{Username: "admin", Password: "admin"})
	ss.Require().NoError(err)
	ss.Require().NotEmpty(resp.AccessToken)
	ss.Equal("Admin", resp.Role)
	ss.Contains(resp.Permissions, "delete")

	ss.client, err = gisapi.NewClient(ss.ts.URL+"/api", gisapi.WithTokenSource(staticToken(resp.AccessToken)))
	ss.Require().NoError(err)
}

func (ss *StubSuite) TearDownTest() {
	ss.ts.Close()
}

func (ss *StubSuite) TestSigninFailures() {
	_, err := ss.anon.Signin(context.Background(), gisapi.SigninRequest{Username: "admin", Password: "nope"})
	ss.Require().Error(err)
	ss.Equal(http.StatusUnauthorized, gisapi.StatusOf(err))
	ss.Equal("Invalid Password!", gisapi.MessageOf(err, ""))

	_, err = ss.anon.Signin(context.Background(), gisapi.SigninRequest{Username: "ghost", Password: "x"})
	ss.Equal(http.StatusNotFound, gisapi.StatusOf(err))
}

func (ss *StubSuite) TestTokenRequired() {
	_, err := ss.anon.ListUsers(context.Background())
	ss.Equal(http.StatusForbidden, gisapi.StatusOf(err))

	bad, err := gisapi.NewClient(ss.ts.URL+"/api", gisapi.WithTokenSource(staticToken("forged")))
	ss.Require().NoError(err)

	_, err = bad.ListRoles(context.Background())
	ss.Equal(http.StatusUnauthorized, gisapi.StatusOf(err))
}

func (ss *StubSuite) TestUsersResolveNames() {
	ctx := context.Background()

	ss.Require().NoError(ss.client.CreateDepartment(ctx, gisapi.DepartmentRequest{Name: "Survey"}))

	err := ss.client.Signup(ctx, gisapi.SignupRequest{
		Username: "bob", Email: "bob@example.com", Password: "pw", RoleID: 3, DepartmentID: 1,
	})
	ss.Require().NoError(err)

	err = ss.client.Signup(ctx, gisapi.SignupRequest{Username: "bob", Password: "pw"}) //nolint:exhaustruct
	ss.Equal(http.StatusConflict, gisapi.StatusOf(err))

	users, err := ss.client.ListUsers(ctx)
	ss.Require().NoError(err)
	ss.Require().Len(users, 2)
	ss.Equal("Surveyor", users[1].Role)
	ss.Equal("Survey", users[1].Department)

	ss.Require().NoError(ss.client.UpdateUser(ctx, users[1].ID, gisapi.UpdateUserRequest{
		Username: "bobby", Email: "bob@example.com", RoleID: 4, DepartmentID: 1,
	}))

	u, err := ss.client.GetUser(ctx, users[1].ID)
	ss.Require().NoError(err)
	ss.Equal("bobby", u.Username)
	ss.Equal("QC", u.Role)

	ss.Require().NoError(ss.client.DeleteUser(ctx, u.ID))

	_, err = ss.client.GetUser(ctx, u.ID)
	ss.Equal(http.StatusNotFound, gisapi.StatusOf(err))
}

func (ss *StubSuite) TestBuiltinRolesSurviveDelete() {
	ctx := context.Background()

	err := ss.client.DeleteRole(ctx, 2)
	ss.Equal(http.StatusForbidden, gisapi.StatusOf(err))

	ss.Require().NoError(ss.client.CreateRole(ctx, gisapi.RoleRequest{Name: "Viewer", Permissions: []string{"read"}})) //nolint:exhaustruct,lll
	ss.Require().NoError(ss.client.DeleteRole(ctx, 5))

	roles, err := ss.client.ListRoles(ctx)
	ss.Require().NoError(err)
	ss.Len(roles, 4)
}

func (ss *StubSuite) TestGeometryLifecycle() {
	ctx := context.Background()

	g, err := ss.client.CreateGeometry(ctx, gisapi.CreateGeometryRequest{
		Name:         "Well",
		GeometryType: models.GeometryPoint,
		Coordinates:  []float64{77.2, 28.6},
		Metadata:     map[string]string{"depth": "30"},
	})
	ss.Require().NoError(err)
	ss.Equal(int64(1), g.ID)
	ss.JSONEq(`{"type":"Point","coordinates":[77.2,28.6]}`, string(g.Geometry))

	_, err = ss.client.CreateGeometry(ctx, gisapi.CreateGeometryRequest{
		Name:         "Broken",
		GeometryType: models.GeometryPolygon,
		Coordinates:  []float64{1, 2},
	})
	ss.Equal("Invalid geometry", gisapi.MessageOf(err, ""))

	ss.Require().NoError(ss.client.UpdateGeometry(ctx, g.ID, gisapi.UpdateGeometryRequest{Name: "Old well"})) //nolint:exhaustruct,lll

	got, err := ss.client.GetGeometry(ctx, g.ID)
	ss.Require().NoError(err)
	ss.Equal("Old well", got.Name)
	ss.Equal("30", got.Metadata["depth"])

	stats, err := ss.client.GeometryStats(ctx)
	ss.Require().NoError(err)
	ss.Equal(1, stats.Total)
	ss.Equal(1, stats.ByType["Point"])

	ss.Require().NoError(ss.client.DeleteGeometry(ctx, g.ID))

	list, err := ss.client.ListGeometries(ctx)
	ss.Require().NoError(err)
	ss.Empty(list)
}

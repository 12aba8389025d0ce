package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "console.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))

	return p
}

func TestNewAppliesDefaults(t *testing.T) {
	p := writeConfig(t, "gis:\n  baseURL: http://gis.local/api\n")

	cfg, err := config.New(p)
	require.NoError(t, err)

	require.Equal(t, "http://gis.local/api", cfg.GIS.BaseURL)
	require.Equal(t, config.SessionBackendMemory, cfg.Session.Backend)
	require.Equal(t, int64(4), cfg.Admin.ProtectedRoleMaxID)
	require.InDelta(t, 78.9629, cfg.Map.CenterLon, 1e-9)
	require.InDelta(t, 20.5937, cfg.Map.CenterLat, 1e-9)
	require.Equal(t, config.DefaultPermissionsMatrix(), cfg.Admin.PermissionsMatrix)
	require.Equal(t, "admin", cfg.Stub.AdminUsername)
}

func TestNewRequiresBaseURL(t *testing.T) {
	t.Setenv("GIS_API_URL", "")
	os.Unsetenv("GIS_API_URL")

	p := writeConfig(t, "logger:\n  level: info\n")

	_, err := config.New(p)
	require.Error(t, err)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	p := writeConfig(t, "gis:\n  baseURL: http://gis.local\nsession:\n  backend: etcd\n")

	_, err := config.New(p)
	require.Error(t, err)
}

func TestNewKeepsConfiguredMatrixOrder(t *testing.T) {
	p := writeConfig(t, `gis:
  baseURL: http://gis.local
admin:
  permissionsMatrix:
    - role: QC
      capabilities: [Read]
    - role: Admin
      capabilities: [Create, Read, Update, Delete]
`)

	cfg, err := config.New(p)
	require.NoError(t, err)
	require.Len(t, cfg.Admin.PermissionsMatrix, 2)
	require.Equal(t, "QC", cfg.Admin.PermissionsMatrix[0].Role)
	require.Equal(t, []string{"Read"}, cfg.Admin.PermissionsMatrix[0].Capabilities)
}

func TestConnString(t *testing.T) {
	db := config.PostgresDB{
		Addr: "db:5432", Username: "u", Password: "p", DB: "gis", SSLmode: "disable", MaxConns: "4",
	}
	require.Equal(t, "postgres://u:p@db:5432/gis?sslmode=disable&pool_max_conns=4", db.ConnString())
}

package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
)

type Config struct {
	Server  Server  `yaml:"server"`
	Logger  Logger  `yaml:"logger"`
	GIS     GIS     `yaml:"gis"`
	Session Session `yaml:"session"`
	Admin   Admin   `yaml:"admin"`
	Map     Map     `yaml:"map"`
	Stub    Stub    `yaml:"stub"`
}

type Server struct {
	Addr         string        `env-default:":8080" yaml:"addr"`
	ReadTimeout  time.Duration `env-default:"5s"    yaml:"readTimeout"`
	IdleTimeout  time.Duration `env-default:"30s"   yaml:"idleTimeout"`
	WriteTimeout time.Duration `env-default:"10s"   yaml:"writeTimeout"`
}

type Logger struct {
	Level     string   `env-default:"info" yaml:"level"`
	Output    []string `yaml:"output"`
	ErrOutput []string `yaml:"errOutput"`
}

// GIS points at the remote REST service. A zero Timeout means no client timeout.
type GIS struct {
	BaseURL string        `env:"GIS_API_URL" env-required:"true" yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

type Session struct {
	Backend    string     `env:"SESSION_BACKEND" env-default:"memory" yaml:"backend"`
	PostgresDB PostgresDB `yaml:"db"`
	Redis      Redis      `yaml:"rdb"`
}

type PostgresDB struct {
	Addr     string `yaml:"addr"`
	Username string `env:"POSTGRES_USER"     yaml:"username"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	DB       string `env:"POSTGRES_DB"       yaml:"db"`
	SSLmode  string `env-default:"disable"   yaml:"sslmode"`
	MaxConns string `env-default:"4"         yaml:"maxConns"`
	Reload   bool   `yaml:"reload"`
	Version  int    `env-default:"1"         yaml:"version"`
}

type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int           `yaml:"db"`
	ExpTime  time.Duration `yaml:"exp"`
}

type Admin struct {
	ProtectedRoleMaxID int64           `env-default:"4" yaml:"protectedRoleMaxID"`
	PermissionsMatrix  []PermissionRow `yaml:"permissionsMatrix"`
}

// PermissionRow is one line of the reference matrix shown on the permissions tab.
type PermissionRow struct {
	Role         string   `yaml:"role"`
	Capabilities []string `yaml:"capabilities"`
}

type Map struct {
	CenterLon float64 `env-default:"78.9629" yaml:"centerLon"`
	CenterLat float64 `env-default:"20.5937" yaml:"centerLat"`
	Zoom      float64 `env-default:"5"       yaml:"zoom"`
	TileURL   string  `env-default:"https://tile.openstreetmap.org/{z}/{x}/{y}.png" yaml:"tileURL"`
}

// Stub configures the in-memory GIS service used for development and tests.
type Stub struct {
	Addr          string        `env-default:":5000"       yaml:"addr"`
	TTL           time.Duration `env-default:"24h"         yaml:"ttl"`
	Secret        string        `env:"STUB_SECRET"         yaml:"secret"`
	AdminUsername string        `env-default:"admin"       yaml:"adminUsername"`
	AdminPassword string        `env:"STUB_ADMIN_PASSWORD" env-default:"admin"  yaml:"adminPassword"`
}

// DefaultProtectedRoleMaxID covers the four built-in roles.
const DefaultProtectedRoleMaxID = 4

// DefaultPermissionsMatrix is used when the config file does not define one.
func DefaultPermissionsMatrix() []PermissionRow {
	return []PermissionRow{
		{Role: "Admin", Capabilities: []string{"Create", "Read", "Update", "Delete"}},
		{Role: "Dept. HOD", Capabilities: []string{"Create", "Read", "Update"}},
		{Role: "Surveyor", Capabilities: []string{"Create", "Read"}},
		{Role: "QC", Capabilities: []string{"Read", "Update", "Delete"}},
	}
}

func New(configPath string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config error: %w", err)
	}

	if len(cfg.Admin.PermissionsMatrix) == 0 {
		cfg.Admin.PermissionsMatrix = DefaultPermissionsMatrix()
	}

	switch cfg.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis, SessionBackendPostgres:
	default:
		return Config{}, fmt.Errorf("unknown session backend %q", cfg.Session.Backend) //nolint:goerr113
	}

	return cfg, nil
}

// ConnString builds the pgx pool DSN.
func (db PostgresDB) ConnString() string {
	return "postgres://" + db.Username + ":" + db.Password + "@" +
		db.Addr + "/" + db.DB + "?" + "sslmode=" + db.SSLmode + "&pool_max_conns=" + db.MaxConns
}

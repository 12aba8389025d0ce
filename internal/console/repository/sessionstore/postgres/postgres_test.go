package postgres_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore"
	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore/postgres"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) config.PostgresDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("gis_console_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		container.Terminate(ctx) //nolint:errcheck
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.PostgresDB{
		Addr:     net.JoinHostPort(host, port.Port()),
		Username: "test",
		Password: "test",
		DB:       "gis_console_test",
		SSLmode:  "disable",
		MaxConns: "2",
		Version:  1,
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ss, err := postgres.New(ctx, setupPostgres(t))
	require.NoError(t, err)

	defer ss.Shutdown(ctx) //nolint:errcheck

	_, err = ss.Get(ctx, "p1", sessionstore.TokenKey)
	require.ErrorIs(t, err, sessionstore.ErrNotFound)

	require.NoError(t, ss.Set(ctx, "p1", sessionstore.TokenKey, "first"))
	require.NoError(t, ss.Set(ctx, "p1", sessionstore.TokenKey, "second"))
	require.NoError(t, ss.Set(ctx, "p1", sessionstore.UserKey, `{"id":1}`))
	require.NoError(t, ss.Set(ctx, "p2", sessionstore.TokenKey, "other"))

	v, err := ss.Get(ctx, "p1", sessionstore.TokenKey)
	require.NoError(t, err)
	require.Equal(t, "second", v)

	require.NoError(t, ss.Delete(ctx, "p1", sessionstore.TokenKey, sessionstore.UserKey))

	_, err = ss.Get(ctx, "p1", sessionstore.UserKey)
	require.ErrorIs(t, err, sessionstore.ErrNotFound)

	v, err = ss.Get(ctx, "p2", sessionstore.TokenKey)
	require.NoError(t, err)
	require.Equal(t, "other", v)
}

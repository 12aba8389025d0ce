package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Leopold1975/gis_console/internal/console/api/server"
	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore/memory"
	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore/postgres"
	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore/redis"
	"github.com/Leopold1975/gis_console/internal/console/services/authservice"
	"github.com/Leopold1975/gis_console/internal/console/workspace"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type SessionStore interface {
	authservice.Store
	Shutdown(context.Context) error
}

type ConsoleApp struct {
	s          Server
	store      SessionStore
	workspaces *workspace.Registry
	lg         logger.Logger
	cfg        config.Config
}

func New(ctx context.Context, cfg config.Config) (ConsoleApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return ConsoleApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	store, err := NewSessionStore(ctx, cfg.Session)
	if err != nil {
		return ConsoleApp{}, fmt.Errorf("%s session store initializing error: %w", cfg.Session.Backend, err)
	}

	reg := workspace.New(store, cfg, lg)
	s := server.New(cfg.Server, reg, lg)

	return ConsoleApp{
		s:          s,
		store:      store,
		workspaces: reg,
		lg:         lg,
		cfg:        cfg,
	}, nil
}

// NewSessionStore opens the backend named by cfg.Backend.
func NewSessionStore(ctx context.Context, cfg config.Session) (SessionStore, error) {
	switch cfg.Backend {
	case config.SessionBackendRedis:
		return redis.New(ctx, cfg.Redis) //nolint:wrapcheck
	case config.SessionBackendPostgres:
		return postgres.New(ctx, cfg.PostgresDB) //nolint:wrapcheck
	default:
		return memory.New(), nil
	}
}

func (ca *ConsoleApp) Run(ctx context.Context) {
	ca.lg.Infof("STARTED SERVER ON %s session backend %s", ca.cfg.Server.Addr, ca.cfg.Session.Backend)

	go func() {
		if err := ca.s.Start(ctx); err != nil {
			ca.lg.Errorf("server start error: %s", err.Error())

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := ca.Stop(ctxS); err != nil { //nolint:contextcheck
		ca.lg.Errorf("shutdown error: %s", err.Error())
	}
}

func (ca *ConsoleApp) Stop(ctx context.Context) error {
	if err := ca.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	ca.workspaces.Close()

	if err := ca.store.Shutdown(ctx); err != nil {
		return fmt.Errorf("session store shutdown error: %w", err)
	}

	ca.lg.Info("Shutdowned successfully")

	return nil
}

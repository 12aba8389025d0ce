package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/internal/pkg/gisstub"
	"github.com/Leopold1975/gis_console/pkg/logger"
)

func main() {
	var configPath string

	flag.StringVar(&configPath, "config", "configs/console.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.New(configPath)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Stub.Secret == "" {
		log.Fatal("stub secret is empty, set STUB_SECRET")
	}

	lg, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatal(err)
	}

	store, err := gisstub.NewStore(cfg.Stub.AdminUsername, cfg.Stub.AdminPassword)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lg.Infof("GIS STUB LISTENING ON %s", cfg.Stub.Addr)

	if err := gisstub.New(cfg.Stub, store, lg).Start(ctx); err != nil {
		lg.Errorf("stub server error: %s", err.Error())
		os.Exit(1) //nolint:gocritic
	}
}

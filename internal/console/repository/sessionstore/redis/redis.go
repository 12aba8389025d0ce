package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/gis_console/internal/console/repository/sessionstore"
	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/Leopold1975/gis_console/internal/pkg/redistools"
	"github.com/redis/go-redis/v9"
)

type SessionStore struct {
	rdb     *redis.Client
	expTime time.Duration
}

func New(ctx context.Context, cfg config.Redis) (SessionStore, error) {
	rdb := redistools.NewClient(cfg)

	if err := redistools.Connect(ctx, rdb); err != nil {
		return SessionStore{}, fmt.Errorf("connect error: %w", err)
	}

	return SessionStore{
		rdb:     rdb,
		expTime: cfg.ExpTime,
	}, nil
}

// Key is the redis key holding entry k of profile.
func Key(profile, k string) string {
	return fmt.Sprintf("session:%s:%s", profile, k)
}

func (ss SessionStore) Get(ctx context.Context, profile, k string) (string, error) {
	v, err := ss.rdb.Get(ctx, Key(profile, k)).Result()
	if errors.Is(err, redis.Nil) {
		return "", sessionstore.ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("get error: %w", err)
	}

	return v, nil
}

// Set stores the entry. ExpTime of zero keeps it until it is deleted.
func (ss SessionStore) Set(ctx context.Context, profile, k, value string) error {
	if err := ss.rdb.Set(ctx, Key(profile, k), value, ss.expTime).Err(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (ss SessionStore) Delete(ctx context.Context, profile string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, Key(profile, k))
	}

	if err := ss.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	return nil
}

func (ss SessionStore) Shutdown(context.Context) error {
	if err := ss.rdb.Close(); err != nil {
		return fmt.Errorf("close redis error: %w", err)
	}

	return nil
}

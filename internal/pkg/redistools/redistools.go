package redistools

import (
	"context"
	"fmt"
	"time"

	"github.com/Leopold1975/gis_console/internal/pkg/config"
	"github.com/redis/go-redis/v9"
)

const maxConnectDelay = time.Second * 10

func NewClient(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Connect pings rdb with a growing delay until it answers or gives up.
func Connect(ctx context.Context, rdb *redis.Client) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		delay := time.Second

		for {
			err := rdb.Ping(ctx).Err()
			if err == nil {
				return
			}

			if delay > maxConnectDelay || ctx.Err() != nil {
				errCh <- fmt.Errorf("cannot ping redis db error: %w", err)

				return
			}

			time.Sleep(delay)
			delay += time.Second
		}
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case err := <-errCh:
		return err
	}
}

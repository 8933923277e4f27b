package console

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/config"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/repository/file"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/repository/memory"
	redisstore "github.com/DNBN-rft/dnbn-f-sub000/internal/repository/redis"
)

// NewStore builds the marker store selected by cfg.Session.Store. The returned close
// function releases the backing connection, if any.
func NewStore(ctx context.Context, cfg *config.Config) (model.MarkerStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Session.Store {
	case config.StoreMemory:
		return memory.NewMarkerStore(), noop, nil
	case config.StoreFile:
		store, err := file.NewMarkerStore(cfg.Session.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open marker file: %w", err)
		}
		return store, noop, nil
	case config.StoreRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.Redis.Addr},
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewMarkerStore(client, cfg.Redis.Prefix), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown marker store %q", cfg.Session.Store)
	}
}

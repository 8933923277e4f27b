package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

var _ model.MarkerStore = (*MarkerStore)(nil)

// MarkerStore keeps session markers as plain string keys named prefix:key.
type MarkerStore struct {
	client redis.UniversalClient
	prefix string
}

func NewMarkerStore(client redis.UniversalClient, prefix string) *MarkerStore {
	if prefix == "" {
		prefix = "console:session"
	}
	return &MarkerStore{client: client, prefix: prefix}
}

func (s *MarkerStore) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *MarkerStore) Load(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load marker %q: %w", key, err)
	}
	return blob, nil
}

func (s *MarkerStore) Save(ctx context.Context, key string, blob []byte) error {
	if err := s.client.Set(ctx, s.redisKey(key), blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to save marker %q: %w", key, err)
	}
	return nil
}

func (s *MarkerStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	redisKeys := make([]string, len(keys))
	for i, key := range keys {
		redisKeys[i] = s.redisKey(key)
	}
	if err := s.client.Del(ctx, redisKeys...).Err(); err != nil {
		return fmt.Errorf("failed to delete markers: %w", err)
	}
	return nil
}

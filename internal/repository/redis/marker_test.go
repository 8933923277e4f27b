package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

func newStoreForTest(t *testing.T) (*miniredis.Miniredis, *MarkerStore) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		m.Close()
	})
	return m, NewMarkerStore(client, "test")
}

func TestMarkerStore_SaveLoadDelete(t *testing.T) {
	m, s := newStoreForTest(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "admin")
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.Save(ctx, "admin", []byte(`{"adminId":3}`)))
	stored, err := m.Get("test:admin")
	require.NoError(t, err)
	assert.Equal(t, `{"adminId":3}`, stored)

	got, err := s.Load(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, `{"adminId":3}`, string(got))

	require.NoError(t, s.Delete(ctx, "admin", "store"))
	assert.False(t, m.Exists("test:admin"))
	require.NoError(t, s.Delete(ctx))
}

func TestMarkerStore_DefaultPrefix(t *testing.T) {
	s := NewMarkerStore(nil, "")
	assert.Equal(t, "console:session:store", s.redisKey("store"))
}

func TestMarkerStore_BackendError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 20 * time.Millisecond, ReadTimeout: 20 * time.Millisecond, WriteTimeout: 20 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	s := NewMarkerStore(client, "")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := s.Load(ctx, "admin")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
	require.Error(t, s.Save(ctx, "admin", []byte("x")))
	require.Error(t, s.Delete(ctx, "admin"))
}

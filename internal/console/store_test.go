package console

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/config"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/repository/file"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/repository/memory"
	redisstore "github.com/DNBN-rft/dnbn-f-sub000/internal/repository/redis"
)

func TestNewStore(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		modify   func(cfg *config.Config)
		wantType any
		wantErr  bool
	}{
		{
			name:     "memory",
			modify:   func(cfg *config.Config) { cfg.Session.Store = config.StoreMemory },
			wantType: &memory.MarkerStore{},
		},
		{
			name: "file",
			modify: func(cfg *config.Config) {
				cfg.Session.Store = config.StoreFile
				cfg.Session.FilePath = filepath.Join(t.TempDir(), "session.json")
			},
			wantType: &file.MarkerStore{},
		},
		{
			name: "redis",
			modify: func(cfg *config.Config) {
				cfg.Session.Store = config.StoreRedis
				cfg.Redis.Addr = mr.Addr()
				cfg.Redis.Prefix = "test"
			},
			wantType: &redisstore.MarkerStore{},
		},
		{
			name:    "unknown",
			modify:  func(cfg *config.Config) { cfg.Session.Store = "etcd" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			tt.modify(cfg)

			store, closeStore, err := NewStore(context.Background(), cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, store)

			ctx := context.Background()
			require.NoError(t, store.Save(ctx, "admin", []byte("x")))
			got, err := store.Load(ctx, "admin")
			require.NoError(t, err)
			assert.Equal(t, []byte("x"), got)
			require.NoError(t, closeStore())
		})
	}

	assert.True(t, mr.Exists("test:admin"))
}

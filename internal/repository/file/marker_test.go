package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

func TestMarkerStore_MissingFileIsEmpty(t *testing.T) {
	s, err := NewMarkerStore(filepath.Join(t.TempDir(), "nested", "session.json"))
	require.NoError(t, err)

	_, err = s.Load(context.Background(), "admin")
	require.ErrorIs(t, err, model.ErrNotFound)
	require.NoError(t, s.Delete(context.Background(), "admin"))
}

func TestMarkerStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := NewMarkerStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "store", []byte(`{"storeId":7}`)))
	require.NoError(t, s.Save(ctx, "admin", []byte("opaque")))

	reopened, err := NewMarkerStore(path)
	require.NoError(t, err)
	got, err := reopened.Load(ctx, "store")
	require.NoError(t, err)
	assert.Equal(t, `{"storeId":7}`, string(got))

	require.NoError(t, reopened.Delete(ctx, "admin", "store"))
	_, err = s.Load(ctx, "admin")
	require.ErrorIs(t, err, model.ErrNotFound)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestMarkerStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewMarkerStore(path)
	require.NoError(t, err)

	_, err = s.Load(context.Background(), "admin")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}

func TestMarkerStore_BinaryBlobRoundTrips(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	tests := []struct {
		name string
		blob []byte
	}{
		{name: "invalid utf-8", blob: []byte{0xff, 0x00, 0xfe, 'a'}},
		{name: "empty", blob: []byte{}},
		{name: "json text", blob: []byte(`{"loginId":"owner"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMarkerStore(path)
			require.NoError(t, err)
			require.NoError(t, s.Save(ctx, "admin", tt.blob))

			reopened, err := NewMarkerStore(path)
			require.NoError(t, err)
			got, err := reopened.Load(ctx, "admin")
			require.NoError(t, err)
			assert.Len(t, got, len(tt.blob))
			assert.Equal(t, tt.blob, got)
		})
	}
}

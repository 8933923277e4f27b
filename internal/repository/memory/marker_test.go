package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

func TestMarkerStore(t *testing.T) {
	ctx := context.Background()
	s := NewMarkerStore()

	_, err := s.Load(ctx, "admin")
	require.ErrorIs(t, err, model.ErrNotFound)

	blob := []byte(`{"id":1}`)
	require.NoError(t, s.Save(ctx, "admin", blob))
	blob[0] = 'x'

	got, err := s.Load(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(got))

	require.NoError(t, s.Delete(ctx, "admin", "store"))
	_, err = s.Load(ctx, "admin")
	require.ErrorIs(t, err, model.ErrNotFound)
}

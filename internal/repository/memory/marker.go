package memory

import (
	"context"
	"sync"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

var _ model.MarkerStore = (*MarkerStore)(nil)

// MarkerStore keeps session markers in process memory.
type MarkerStore struct {
	mu      sync.RWMutex
	markers map[string][]byte
}

func NewMarkerStore() *MarkerStore {
	return &MarkerStore{markers: make(map[string][]byte)}
}

func (s *MarkerStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.markers[key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return append([]byte(nil), blob...), nil
}

func (s *MarkerStore) Save(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markers[key] = append([]byte(nil), blob...)
	return nil
}

func (s *MarkerStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.markers, key)
	}
	return nil
}

package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

var _ model.MarkerStore = (*MarkerStore)(nil)

// MarkerStore keeps session markers in a single JSON object file. Every write
// replaces the file atomically through a temporary file in the same directory.
type MarkerStore struct {
	path string
	mu   sync.Mutex
}

// NewMarkerStore creates the parent directory of path if needed. The file itself
// is created on first Save.
func NewMarkerStore(path string) (*MarkerStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create marker directory: %w", err)
	}
	return &MarkerStore{path: path}, nil
}

func (s *MarkerStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	markers, err := s.read()
	if err != nil {
		return nil, err
	}
	blob, ok := markers[key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return blob, nil
}

func (s *MarkerStore) Save(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	markers, err := s.read()
	if err != nil {
		return err
	}
	markers[key] = append([]byte(nil), blob...)
	return s.write(markers)
}

func (s *MarkerStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	markers, err := s.read()
	if err != nil {
		return err
	}
	changed := false
	for _, key := range keys {
		if _, ok := markers[key]; ok {
			delete(markers, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.write(markers)
}

// read returns the stored markers; a missing file reads as empty. Blobs are stored
// base64-encoded so arbitrary bytes round-trip unchanged.
func (s *MarkerStore) read() (map[string][]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string][]byte), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read markers: %w", err)
	}

	markers := make(map[string][]byte)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &markers); err != nil {
			return nil, fmt.Errorf("failed to decode markers: %w", err)
		}
	}
	return markers, nil
}

func (s *MarkerStore) write(markers map[string][]byte) error {
	data, err := json.Marshal(markers)
	if err != nil {
		return fmt.Errorf("failed to encode markers: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".markers-*")
	if err != nil {
		return fmt.Errorf("failed to create temp marker file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write markers: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp marker file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace marker file: %w", err)
	}
	return nil
}

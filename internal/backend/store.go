package backend

import (
	"context"
	"sync"
	"time"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenStore)(nil)

// RefreshTokenStore keeps refresh token state in memory.
type RefreshTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken
}

func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{tokens: make(map[string]model.RefreshToken)}
}

func (s *RefreshTokenStore) Create(_ context.Context, token model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.JTI] = token
	return nil
}

func (s *RefreshTokenStore) GetByJTI(_ context.Context, jti string) (model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[jti]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	return rt, nil
}

func (s *RefreshTokenStore) RevokeByJTI(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[jti]
	if !ok {
		return model.ErrNotFound
	}
	if rt.RevokedAt == nil {
		now := time.Now()
		rt.RevokedAt = &now
		s.tokens[jti] = rt
	}
	return nil
}

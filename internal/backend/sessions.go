package backend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

// Sessions issues, refreshes and revokes token pairs. Access tokens carry the
// generation current at issue time; ExpireAccess bumps the generation so every
// outstanding access token is rejected while refresh tokens stay valid.
type Sessions struct {
	manager    model.TokenManager
	store      model.RefreshTokenStore
	refreshTTL time.Duration
	generation atomic.Int64
	logger     *logger.Logger
}

func NewSessions(manager model.TokenManager, store model.RefreshTokenStore, refreshTTL time.Duration, logger *logger.Logger) *Sessions {
	return &Sessions{manager: manager, store: store, refreshTTL: refreshTTL, logger: logger}
}

func (s *Sessions) Issue(ctx context.Context, p model.Principal) (accessToken string, refreshToken string, err error) {
	access, err := s.manager.GenerateAccessToken(p, s.generation.Load())
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	refresh, jti, err := s.manager.GenerateRefreshToken(p)
	if err != nil {
		return "", "", fmt.Errorf("issue refresh: %w", err)
	}

	now := time.Now()
	if err := s.store.Create(ctx, model.RefreshToken{
		JTI:       jti,
		Principal: p,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
	}); err != nil {
		return "", "", fmt.Errorf("persist refresh: %w", err)
	}

	return access, refresh, nil
}

// Refresh rotates presentedRefresh, which must belong to realm.
func (s *Sessions) Refresh(ctx context.Context, realm, presentedRefresh string) (newAccess string, newRefresh string, err error) {
	p, jti, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return "", "", err
	}
	if p.Realm != realm {
		return "", "", model.ErrTokenMismatch
	}

	rt, err := s.store.GetByJTI(ctx, jti)
	if err != nil {
		return "", "", err
	}
	if rt.RevokedAt != nil {
		return "", "", model.ErrTokenRevoked
	}
	if time.Now().After(rt.ExpiresAt) {
		return "", "", model.ErrTokenExpired
	}

	if err := s.store.RevokeByJTI(ctx, jti); err != nil {
		return "", "", fmt.Errorf("revoke old refresh: %w", err)
	}

	access, refresh, err := s.Issue(ctx, p)
	if err != nil {
		return "", "", err
	}

	s.logger.Debug("refresh token rotated", "realm", realm, "rotated_from", jti)
	return access, refresh, nil
}

// Authenticate validates an access token for realm.
func (s *Sessions) Authenticate(realm, accessToken string) (model.Principal, error) {
	p, generation, err := s.manager.ParseAccessToken(accessToken)
	if err != nil {
		return model.Principal{}, err
	}
	if p.Realm != realm {
		return model.Principal{}, model.ErrTokenMismatch
	}
	if generation < s.generation.Load() {
		return model.Principal{}, model.ErrTokenExpired
	}
	return p, nil
}

func (s *Sessions) RevokeByToken(ctx context.Context, presentedRefresh string) error {
	_, jti, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return err
	}
	return s.store.RevokeByJTI(ctx, jti)
}

// ExpireAccess invalidates every access token issued so far.
func (s *Sessions) ExpireAccess() {
	s.generation.Add(1)
}

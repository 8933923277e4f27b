package model

import (
	"context"
	"time"
)

// RefreshTokenStore persists refresh token state for the development backend.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	GetByJTI(ctx context.Context, jti string) (RefreshToken, error)
	RevokeByJTI(ctx context.Context, jti string) error
}

type RefreshToken struct {
	JTI            string
	Principal      Principal
	IssuedAt       time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
}

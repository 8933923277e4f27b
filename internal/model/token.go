package model

import "github.com/google/uuid"

// Principal is the identity carried inside tokens issued by the development backend.
// Realm is the route segment the account logs in through ("admin", "store").
type Principal struct {
	UserID uuid.UUID
	Realm  string
}

// TokenManager generates and validates access/refresh tokens.
type TokenManager interface {
	GenerateAccessToken(p Principal, generation int64) (string, error)
	GenerateRefreshToken(p Principal) (token string, jti string, err error)
	ParseAccessToken(token string) (p Principal, generation int64, err error)
	ParseRefreshToken(token string) (p Principal, jti string, err error)
}

package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

// Claims represents JWT claims with token type, realm and access generation.
type Claims struct {
	jwt.RegisteredClaims
	UserID     uuid.UUID `json:"user_id"`
	Realm      string    `json:"realm"`
	Generation int64     `json:"gen,omitempty"`
	TokenType  string    `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 14 * 24 * time.Hour
	typeAccess        = "access"
	typeRefresh       = "refresh"
)

// NewJWT creates a new JWT token manager with the provided secret key.
// A non-positive accessTTL selects the 15 minute default.
func NewJWT(secretKey string, accessTTL time.Duration) *JWT {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	return &JWT{secretKey: secretKey, accessTTL: accessTTL, refreshTTL: defaultRefreshTTL}
}

var _ model.TokenManager = (*JWT)(nil)

// AccessTTL returns the lifetime of issued access tokens.
func (j *JWT) AccessTTL() time.Duration { return j.accessTTL }

// RefreshTTL returns the lifetime of issued refresh tokens.
func (j *JWT) RefreshTTL() time.Duration { return j.refreshTTL }

// GenerateAccessToken creates a short-lived access token bound to generation.
func (j *JWT) GenerateAccessToken(p model.Principal, generation int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		UserID:     p.UserID,
		Realm:      p.Realm,
		Generation: generation,
		TokenType:  typeAccess,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken creates a long-lived refresh token and returns its JTI.
func (j *JWT) GenerateRefreshToken(p model.Principal) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
		},
		UserID:    p.UserID,
		Realm:     p.Realm,
		TokenType: typeRefresh,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, jti, nil
}

// ParseAccessToken validates an access token and returns its principal and generation.
func (j *JWT) ParseAccessToken(tokenString string) (model.Principal, int64, error) {
	claims, err := j.parse(tokenString, typeAccess)
	if err != nil {
		return model.Principal{}, 0, err
	}
	return model.Principal{UserID: claims.UserID, Realm: claims.Realm}, claims.Generation, nil
}

// ParseRefreshToken validates a refresh token and returns its principal and JTI.
func (j *JWT) ParseRefreshToken(tokenString string) (model.Principal, string, error) {
	claims, err := j.parse(tokenString, typeRefresh)
	if err != nil {
		return model.Principal{}, "", err
	}
	return model.Principal{UserID: claims.UserID, Realm: claims.Realm}, claims.ID, nil
}

func (j *JWT) parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("failed to parse %s token: %w", tokenType, model.ErrTokenExpired)
		}
		return nil, fmt.Errorf("failed to parse %s token: %w", tokenType, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%s token is invalid", tokenType)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims, nil
}

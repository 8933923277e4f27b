package model

import "errors"

var (
	ErrTokenRevoked  = errors.New("refresh token revoked")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenMismatch = errors.New("token realm mismatch")
)

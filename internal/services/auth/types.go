package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidAccessCode = errors.New("invalid access code")
)

type SessionClaims struct {
	SID       string
	ClientID  string
	ExpiresAt time.Time
}

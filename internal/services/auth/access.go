package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AccessChecker compares login attempts against the single shared access
// code. Only the bcrypt hash is kept in memory.
type AccessChecker struct {
	hash []byte
}

// NewAccessChecker prefers a precomputed hash and falls back to hashing the
// plain code.
func NewAccessChecker(code, hash string) (*AccessChecker, error) {
	hash = strings.TrimSpace(hash)
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("parse access code hash: %w", err)
		}
		return &AccessChecker{hash: []byte(hash)}, nil
	}

	if code == "" {
		return nil, fmt.Errorf("access code or hash is required")
	}
	generated, err := HashAccessCode(code)
	if err != nil {
		return nil, err
	}
	return &AccessChecker{hash: []byte(generated)}, nil
}

func (c *AccessChecker) Check(code string) error {
	if c == nil || len(c.hash) == 0 || code == "" {
		return ErrInvalidAccessCode
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(code)); err != nil {
		return ErrInvalidAccessCode
	}
	return nil
}

func HashAccessCode(code string) (string, error) {
	if code == "" {
		return "", ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash access code: %w", err)
	}
	return string(hash), nil
}

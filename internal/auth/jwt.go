// Package auth turns bearer tokens into owner ids.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret    = errors.New("jwt secret is empty")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token has no subject")
)

// TokenService signs and verifies HS256 tokens whose subject is the owner id.
type TokenService struct {
	secretKey []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, expiresIn time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenService{
		secretKey: []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}, nil
}

// GenerateToken issues a token for ownerID that expires after the configured
// duration.
func (s *TokenService) GenerateToken(ownerID string) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", ErrMissingSubject
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   ownerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies tokenStr and returns its subject.
func (s *TokenService) ParseToken(tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

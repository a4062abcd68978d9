// Package auth issues and checks the project API keys clients send with
// every request.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles an API key may carry.
const (
	RoleAnon    = "anon"
	RoleService = "service"
)

var (
	ErrMissingKey  = errors.New("missing api key")
	ErrInvalidRole = errors.New("invalid role")
)

// Claims represents the claims of a project API key.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Config holds API key configuration. A zero TTL issues keys that never
// expire.
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Enabled reports whether keys are required at all.
func (c *Config) Enabled() bool {
	return c != nil && len(c.Secret) > 0
}

// GenerateKey creates a signed API key for role.
func GenerateKey(cfg *Config, role string) (string, error) {
	if !validRole(role) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   cfg.Issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if cfg.TTL != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(cfg.TTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

// ValidateKey parses and validates an API key.
func ValidateKey(cfg *Config, key string) (*Claims, error) {
	if key == "" {
		return nil, ErrMissingKey
	}

	token, err := jwt.ParseWithClaims(key, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse api key: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid api key claims")
	}

	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("invalid issuer")
	}
	if !validRole(claims.Role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, claims.Role)
	}

	return claims, nil
}

func validRole(role string) bool {
	return role == RoleAnon || role == RoleService
}

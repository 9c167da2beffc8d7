package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and unexpected algorithms.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned once the current time passes the encoded expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims defines the custom claims for the identity token.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited identity tokens.
// Validity depends only on signature and expiry; there is no revocation list.
type TokenService interface {
	// GenerateToken signs a token for userID that expires after ttl.
	GenerateToken(userID uuid.UUID, ttl time.Duration) (string, error)

	// ValidateToken returns the embedded claims, or ErrInvalidToken / ErrTokenExpired.
	ValidateToken(tokenString string) (*Claims, error)

	// TokenDuration returns the configured default TTL.
	TokenDuration() time.Duration
}

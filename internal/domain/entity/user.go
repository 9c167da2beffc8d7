// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered account. It is immutable after registration.
type User struct {
	ID           uuid.UUID // The Global Unique Identifier (GUID) for the user.
	Name         string    // The user's display name.
	Email        string    // Login identifier, stored normalized (see NormalizeEmail).
	PasswordHash string    // bcrypt digest; never leaves the service boundary.
	CreatedAt    time.Time // Timestamp of when this user account was created.
}

// NormalizeEmail returns the canonical form used for storage and lookup,
// making email comparison case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

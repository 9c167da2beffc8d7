package context

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Identity is the authenticated caller established from a verified token.
type Identity struct {
	UserID uuid.UUID
}

func (i Identity) valid() bool {
	return i.UserID != uuid.Nil
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, KeyIdentity, identity)
}

// IdentityFromContext reports false for a missing identity or a nil user ID.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := valueOf[Identity](ctx, KeyIdentity)
	if !ok || !identity.valid() {
		return Identity{}, false
	}

	return identity, true
}

// SetIdentity stores the identity in the request's context.Context, where
// both handlers and anything the request context reaches can find it.
func SetIdentity(c echo.Context, identity Identity) {
	storeInRequest(c, KeyIdentity, identity)
}

func GetIdentity(c echo.Context) (Identity, bool) {
	return IdentityFromContext(c.Request().Context())
}

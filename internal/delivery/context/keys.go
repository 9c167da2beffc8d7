// Package context carries per-request values (request ID, scoped logger,
// caller identity) through both echo.Context and context.Context.
package context

import (
	"context"

	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	KeyRequestID ContextKey = "request_id"
	KeyLogger    ContextKey = "logger"
	KeyIdentity  ContextKey = "identity"

	// HeaderXRequestID is the HTTP header name for request ID.
	HeaderXRequestID = "X-Request-Id"
)

func valueOf[T any](ctx context.Context, key ContextKey) (T, bool) {
	v, ok := ctx.Value(key).(T)

	return v, ok
}

// storeInRequest replaces the request with one whose context carries value under key.
func storeInRequest(c echo.Context, key ContextKey, value any) {
	req := c.Request()
	c.SetRequest(req.WithContext(context.WithValue(req.Context(), key, value)))
}

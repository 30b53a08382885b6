package types

import (
	"context"
)

// Context Keys
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	clientIDKey  contextKey = "client_identity"
)

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithClientIdentity stores the inbound caller's rate-limit identity in the
// context. Set by middleware before the rate limiter runs.
func WithClientIdentity(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey, id)
}

// GetClientIdentity retrieves the caller identity from the context.
// Returns empty string when the request did not pass through the identity
// middleware (e.g., internally scheduled cycles).
func GetClientIdentity(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}

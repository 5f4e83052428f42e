// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services read them. Keeping this package free of
// net/http lets services and tests thread a caller principal and ledger height
// through plain contexts without a live server.
//
// Usage in services (read values):
//
//	caller := requestcontext.CallerID(ctx)
//	height := requestcontext.Height(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithCallerID(ctx, caller)
//	ctx = requestcontext.WithHeight(ctx, height)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithHeight(ctx, 42)
package requestcontext

import (
	"context"

	"canopy/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	callerIDKey  struct{}
	requestIDKey struct{}
	heightKey    struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyCallerID  = callerIDKey{}
	ContextKeyRequestID = requestIDKey{}
	ContextKeyHeight    = heightKey{}
)

// CallerID retrieves the substrate-authenticated caller principal from the
// context. Returns the empty principal if not set.
func CallerID(ctx context.Context) domain.UserID {
	if caller, ok := ctx.Value(ContextKeyCallerID).(domain.UserID); ok {
		return caller
	}
	return ""
}

// WithCallerID injects the caller principal into the context.
func WithCallerID(ctx context.Context, caller domain.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyCallerID, caller)
}

// RequestID retrieves the correlation id assigned by middleware.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation id into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// Height retrieves the ledger height stamped on this request. Zero means the
// request never passed through the height middleware; mutating services treat
// that as a wiring bug, not a domain failure.
func Height(ctx context.Context) domain.Height {
	if h, ok := ctx.Value(ContextKeyHeight).(domain.Height); ok {
		return h
	}
	return 0
}

// WithHeight injects a ledger height into the context.
func WithHeight(ctx context.Context, h domain.Height) context.Context {
	return context.WithValue(ctx, ContextKeyHeight, h)
}

// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// The registry never computes a caller identity or a timestamp itself: both
// are injected by the execution substrate. Over HTTP that substrate is the
// middleware chain (auth sets the caller, the logical clock sets the tick);
// in tests the values are injected directly.
//
// Usage in services (read values):
//
//	caller := requestcontext.Caller(ctx)
//	now := requestcontext.Tick(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithCaller(ctx, principal)
//	ctx = requestcontext.WithTick(ctx, clock.Next())
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithCaller(ctx, "0xalice")
//	ctx = requestcontext.WithTick(ctx, 42)
package requestcontext

import (
	"context"

	id "vouch/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	callerKey    struct{}
	tickKey      struct{}
	requestIDKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyCaller    = callerKey{}
	ContextKeyTick      = tickKey{}
	ContextKeyRequestID = requestIDKey{}
)

// Caller retrieves the authenticated caller principal from the context.
// Returns the zero principal if not set.
func Caller(ctx context.Context) id.Principal {
	if p, ok := ctx.Value(ContextKeyCaller).(id.Principal); ok {
		return p
	}
	return ""
}

// WithCaller injects a caller principal into the context.
func WithCaller(ctx context.Context, caller id.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// Tick retrieves the logical timestamp assigned to this call.
// Returns zero if not set (read-only paths never need one).
func Tick(ctx context.Context) id.LogicalTime {
	if t, ok := ctx.Value(ContextKeyTick).(id.LogicalTime); ok {
		return t
	}
	return 0
}

// WithTick injects a logical timestamp into the context.
func WithTick(ctx context.Context, t id.LogicalTime) context.Context {
	return context.WithValue(ctx, ContextKeyTick, t)
}

// RequestID retrieves the transport correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a transport correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

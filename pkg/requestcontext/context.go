// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services and handlers. By keeping this
// package free of net/http dependencies, services can import only what they need
// without pulling in HTTP-related code.
//
// Usage in handlers (read values):
//
//	accountID := requestcontext.AccountID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithAccountID(ctx, accountID)
//	ctx = requestcontext.WithSessionKind(ctx, requestcontext.SessionFull)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithAccountID(ctx, id)
package requestcontext

import (
	"context"

	id "sahay/pkg/domain"
)

// SessionKind distinguishes the two authentication tiers attached by the gate.
type SessionKind string

const (
	// SessionNone marks requests that passed the gate anonymously.
	SessionNone SessionKind = ""
	// SessionFull marks requests carrying a valid full session.
	SessionFull SessionKind = "full"
	// SessionTemporary marks requests carrying a valid onboarding-scoped session.
	SessionTemporary SessionKind = "temporary"
)

// Context key types (unexported for encapsulation).
type (
	accountIDKey   struct{}
	sessionKindKey struct{}
	requestIDKey   struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyAccountID   = accountIDKey{}
	ContextKeySessionKind = sessionKindKey{}
	ContextKeyRequestID   = requestIDKey{}
)

// AccountID retrieves the authenticated account ID from the context.
// Returns the zero value (nil UUID) if not set.
func AccountID(ctx context.Context) id.AccountID {
	if accountID, ok := ctx.Value(ContextKeyAccountID).(id.AccountID); ok {
		return accountID
	}
	return id.AccountID{}
}

// WithAccountID injects an account ID into the context.
func WithAccountID(ctx context.Context, accountID id.AccountID) context.Context {
	return context.WithValue(ctx, ContextKeyAccountID, accountID)
}

// Kind retrieves the session tier resolved by the gate.
// Returns SessionNone if the gate let the request through anonymously.
func Kind(ctx context.Context) SessionKind {
	if kind, ok := ctx.Value(ContextKeySessionKind).(SessionKind); ok {
		return kind
	}
	return SessionNone
}

// WithSessionKind injects the resolved session tier into the context.
func WithSessionKind(ctx context.Context, kind SessionKind) context.Context {
	return context.WithValue(ctx, ContextKeySessionKind, kind)
}

// RequestID retrieves the correlation ID assigned by middleware.
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

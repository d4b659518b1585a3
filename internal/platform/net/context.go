// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const (
	keyCallerID ctxKey = "caller_id"
	keyRole     ctxKey = "role"
)

// WithRequest annotates context with the request id and the caller id
func WithRequest(ctx context.Context, reqID, callerID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if callerID != "" {
		ctx = context.WithValue(ctx, keyCallerID, callerID)
	}
	return ctx
}

// WithRole annotates context with the caller's token role (authenticated, service_role, ...)
func WithRole(ctx context.Context, role string) context.Context {
	if role != "" {
		ctx = context.WithValue(ctx, keyRole, role)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// CallerID returns the authenticated caller id on the context if present
func CallerID(ctx context.Context) string {
	if v, ok := ctx.Value(keyCallerID).(string); ok {
		return v
	}
	return ""
}

// Role returns the caller's token role if present
func Role(ctx context.Context) string {
	if v, ok := ctx.Value(keyRole).(string); ok {
		return v
	}
	return ""
}

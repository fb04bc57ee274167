// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, HTTP client initialization, JWT token generation
// and validation, and record identifier generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key used to store the authenticated user identity in
// the request context. The value is the opaque user id string taken from the
// "sub" claim of the bearer token.
//
//	ctx := context.WithValue(ctx, utils.UserIDCtxKey, "0190c7e2-...")
var UserIDCtxKey = contextKey("userID")

// GetUserIDFromContext retrieves the user identity from the context.
// ok is false when the value is missing, empty or of an unexpected type.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}

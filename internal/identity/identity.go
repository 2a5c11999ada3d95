package identity

import (
	"context"
	"errors"
)

// ErrUnauthenticated means an operation that requires a signed-in user
// was invoked without one. Checked before any validation or I/O.
var ErrUnauthenticated = errors.New("no authenticated user")

type contextKey struct{}

// WithUser returns a context carrying the authenticated user's email.
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, contextKey{}, email)
}

// UserFromContext extracts the authenticated user's email. The second
// return is false when no user is attached or the email is empty.
func UserFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(contextKey{}).(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

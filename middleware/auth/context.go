package auth

import "context"

// Context key for storing the authenticated user in the request context
type contextKey string

const userKey contextKey = "authUser"

// CurrentUser retrieves the authenticated user from the request context.
// Returns the user and true if authenticated, nil and false otherwise.
func CurrentUser(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey).(*User)
	return user, ok
}

// WithUser adds an authenticated user to the request context
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// IsAuthenticated checks if the request context contains an authenticated user
func IsAuthenticated(ctx context.Context) bool {
	_, ok := CurrentUser(ctx)
	return ok
}

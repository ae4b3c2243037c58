// Package auth provides session-based authentication middleware for the
// API and view controllers.
package auth

import (
	"context"
	"net/http"
)

// User represents an authenticated user in the system
type User struct {
	ID       Identity `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthenticatorFunc validates a username/password pair and returns the
// matching user or an error.
type AuthenticatorFunc func(ctx context.Context, username, password string) (*User, error)

// Config holds the complete authentication configuration
type Config struct {
	// Enabled determines if authentication is active
	Enabled bool

	// LoginPath is the URL path for the login page (default: "/login")
	LoginPath string

	// LogoutPath is the URL path for logout (default: "/logout")
	LogoutPath string

	// Authenticator is the function used to validate user credentials
	Authenticator AuthenticatorFunc

	// SessionStore handles session persistence
	SessionStore SessionStore

	// RequireAuth determines if all protected routes require authentication.
	// If false, authentication is optional and requests proceed anonymously.
	RequireAuth bool

	// LoginRedirect is the path to redirect to after successful login
	LoginRedirect string

	// LogoutRedirect is the path to redirect to after logout
	LogoutRedirect string
}

// SessionStore defines the interface for session management
type SessionStore interface {
	// GetSession retrieves a user session by session ID
	GetSession(ctx context.Context, sessionID string) (*User, error)

	// CreateSession creates a new session for the user and returns the session ID
	CreateSession(ctx context.Context, user *User) (sessionID string, err error)

	// DeleteSession removes a session by session ID
	DeleteSession(ctx context.Context, sessionID string) error

	// CleanExpiredSessions removes expired sessions (called periodically)
	CleanExpiredSessions(ctx context.Context) error
}

// Middleware wraps HTTP handlers to provide authentication
type Middleware func(http.Handler) http.Handler

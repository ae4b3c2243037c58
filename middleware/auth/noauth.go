package auth

// WithNoAuth creates a Config that disables authentication. This is the
// default for applications that don't need login.
func WithNoAuth() Config {
	return Config{
		Enabled:        false,
		LoginPath:      "/login",
		LogoutPath:     "/logout",
		Authenticator:  nil,
		SessionStore:   nil,
		RequireAuth:    false,
		LoginRedirect:  "/",
		LogoutRedirect: "/",
	}
}

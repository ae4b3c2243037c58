package auth

import (
	"net/http"
	"strings"
)

const sessionCookieName = "servicerepo_session"

// NewMiddleware creates HTTP middleware that resolves the session cookie
// into a context user. API requests that fail authentication get a JSON 401;
// browser requests are redirected to the login page.
func NewMiddleware(cfg *Config) Middleware {
	if cfg == nil || !cfg.Enabled {
		// No-op middleware when auth is disabled
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Login/logout endpoints handle themselves
			if isAuthEndpoint(r.URL.Path, cfg) {
				next.ServeHTTP(w, r)
				return
			}

			user, err := userFromSession(r, cfg)
			if err != nil && cfg.RequireAuth {
				if wantsJSON(r) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					w.Write([]byte(`{"message":"Unauthorized"}`))
					return
				}
				redirectToLogin(w, r, cfg)
				return
			}

			ctx := r.Context()
			if user != nil {
				ctx = WithUser(ctx, user)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles wraps a handler so only users carrying at least one of the
// given roles may pass. Must run after NewMiddleware so the context user is
// populated.
func RequireRoles(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r.Context())
			if !ok {
				forbid(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			for _, role := range roles {
				if user.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			forbid(w, r, http.StatusForbidden, "Forbidden")
		})
	}
}

func forbid(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"message":"` + message + `"}`))
		return
	}
	http.Error(w, message, status)
}

// wantsJSON decides whether an authentication failure should be reported as
// JSON rather than a redirect.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// isAuthEndpoint checks if the path is an authentication endpoint
func isAuthEndpoint(path string, cfg *Config) bool {
	return strings.HasSuffix(path, cfg.LoginPath) || strings.HasSuffix(path, cfg.LogoutPath)
}

// userFromSession retrieves the user from the session cookie
func userFromSession(r *http.Request, cfg *Config) (*User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, err
	}
	return cfg.SessionStore.GetSession(r.Context(), cookie.Value)
}

// redirectToLogin redirects the user to the login page, preserving the
// original URL so login can bounce back.
func redirectToLogin(w http.ResponseWriter, r *http.Request, cfg *Config) {
	returnURL := r.URL.Path
	if r.URL.RawQuery != "" {
		returnURL += "?" + r.URL.RawQuery
	}

	loginURL := cfg.LoginPath
	if returnURL != loginURL {
		loginURL += "?return=" + returnURL
	}

	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

// CreateSessionCookie creates a session cookie for the authenticated user
func CreateSessionCookie(sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		// MaxAge is controlled by the session store timeout
	}
}

// DeleteSessionCookie creates a cookie that deletes the session
func DeleteSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	}
}

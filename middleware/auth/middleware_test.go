package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		if !ok {
			w.Write([]byte("anonymous"))
			return
		}
		w.Write([]byte("hello " + user.Username))
	})
}

func TestMiddlewareDisabledIsNoOp(t *testing.T) {
	mw := NewMiddleware(nil)
	handler := mw(protectedHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/products", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Errorf("disabled middleware altered the request: %d %q", rec.Code, rec.Body.String())
	}
}

func TestMiddlewareRedirectsBrowsers(t *testing.T) {
	cfg := WithBasicAuth(testCredentials(t))
	handler := NewMiddleware(&cfg)(protectedHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/products?page=2", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/login") || !strings.Contains(loc, "return=/products") {
		t.Errorf("Location = %q", loc)
	}
}

func TestMiddlewareReturnsJSONForAPIRequests(t *testing.T) {
	cfg := WithBasicAuth(testCredentials(t))
	handler := NewMiddleware(&cfg)(protectedHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/products", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Unauthorized") {
		t.Errorf("body = %q", rec.Body.String())
	}

	// An Accept header also opts into JSON errors
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/products", nil)
	req.Header.Set("Accept", "application/json")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for JSON clients, got %d", rec.Code)
	}
}

func TestMiddlewareResolvesSessionCookie(t *testing.T) {
	cfg := WithBasicAuth(testCredentials(t))
	handler := NewMiddleware(&cfg)(protectedHandler(t))

	user, err := cfg.Authenticator(t.Context(), "admin", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	sessionID, _ := cfg.SessionStore.CreateSession(t.Context(), user)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/products", nil)
	req.AddCookie(CreateSessionCookie(sessionID))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "hello admin" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestMiddlewarePassesAuthEndpointsThrough(t *testing.T) {
	cfg := WithBasicAuth(testCredentials(t))
	handler := NewMiddleware(&cfg)(protectedHandler(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/login", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("login page should be reachable anonymously, got %d", rec.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler := RequireRoles("admin")(inner)

	// No user in context
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/admin", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a user, got %d", rec.Code)
	}

	// User without the role
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/admin", nil)
	req = req.WithContext(WithUser(req.Context(), &User{Username: "bob", Roles: []string{"viewer"}}))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 without the role, got %d", rec.Code)
	}

	// User carrying the role
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/admin", nil)
	req = req.WithContext(WithUser(req.Context(), &User{Username: "ann", Roles: []string{"admin"}}))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with the role, got %d", rec.Code)
	}
}

func TestIdentityHelpers(t *testing.T) {
	if ID.GetString("abc") != "abc" {
		t.Error("GetString failed for a string identity")
	}
	if ID.GetString(42) != "" {
		t.Error("GetString should return empty for non-strings")
	}
	if ID.GetInt64(42) != 42 || ID.GetInt64(int64(7)) != 7 || ID.GetInt64(uint(9)) != 9 {
		t.Error("GetInt64 conversions failed")
	}
	if ID.GetInt64("nope") != 0 {
		t.Error("GetInt64 should return 0 for strings")
	}
	if ID.GetUint(uint(5)) != 5 || ID.GetUint(12) != 12 {
		t.Error("GetUint conversions failed")
	}
	if ID.GetUint(-3) != 0 {
		t.Error("GetUint must reject negative values")
	}
}

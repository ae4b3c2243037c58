package auth

import (
	"context"
	"errors"
	"time"

	"github.com/garrett9/servicerepo/config"

	"golang.org/x/crypto/bcrypt"
)

// Credential represents a user configured for username/password login. The
// password is stored as a bcrypt hash.
type Credential struct {
	Username     string
	PasswordHash string
	User         User
}

// dummyHash is a well-formed bcrypt hash compared against when the username
// does not exist, so lookups for missing users take as long as real ones.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword produces a bcrypt hash suitable for Credential.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// WithBasicAuth creates a Config that authenticates against the provided
// credentials, keyed by username.
func WithBasicAuth(users map[string]Credential) Config {
	return WithBasicAuthAndTimeout(users, 24*time.Hour)
}

// WithBasicAuthAndTimeout creates a Config with a custom session timeout.
func WithBasicAuthAndTimeout(users map[string]Credential, sessionTimeout time.Duration) Config {
	sessionStore := NewMemorySessionStoreWithTimeout(sessionTimeout)

	authenticator := func(ctx context.Context, username, password string) (*User, error) {
		cred, exists := users[username]
		if !exists {
			// Burn a comparison anyway so missing users cost the same as
			// wrong passwords.
			bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, errors.New("invalid credentials")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
			return nil, errors.New("invalid credentials")
		}

		user := cred.User
		return &user, nil
	}

	return Config{
		Enabled:        true,
		LoginPath:      "/login",
		LogoutPath:     "/logout",
		Authenticator:  authenticator,
		SessionStore:   sessionStore,
		RequireAuth:    true,
		LoginRedirect:  "/",
		LogoutRedirect: "/",
	}
}

// NewCredential builds a Credential from a plaintext password, hashing it
// on the way in.
func NewCredential(username, password string, id Identity, email string, roles []string) (Credential, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		Username:     username,
		PasswordHash: hash,
		User: User{
			ID:       id,
			Username: username,
			Email:    email,
			Roles:    roles,
		},
	}, nil
}

// WithBasicAuthFromConfig creates a Config with a single admin user taken
// from the environment-driven configuration.
func WithBasicAuthFromConfig() (Config, error) {
	cfg := config.LoadConfig()

	cred, err := NewCredential(
		cfg.Auth.BasicAuthUser,
		cfg.Auth.BasicAuthPass,
		"admin001",
		"admin@example.com",
		[]string{"admin"},
	)
	if err != nil {
		return Config{}, err
	}

	return WithBasicAuth(map[string]Credential{cfg.Auth.BasicAuthUser: cred}), nil
}

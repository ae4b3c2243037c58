package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateAndGetSession(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	user := &User{ID: "u1", Username: "ann", Roles: []string{"admin"}}
	sessionID, err := store.CreateSession(ctx, user)
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected a session ID")
	}

	got, err := store.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if got.Username != "ann" {
		t.Errorf("Username = %q", got.Username)
	}
}

func TestGetSessionMissing(t *testing.T) {
	store := NewMemorySessionStore()

	_, err := store.GetSession(context.Background(), "no-such-session")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	store := NewMemorySessionStoreWithTimeout(-time.Second)
	ctx := context.Background()

	sessionID, _ := store.CreateSession(ctx, &User{Username: "ann"})

	_, err := store.GetSession(ctx, sessionID)
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestDeleteSession(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	sessionID, _ := store.CreateSession(ctx, &User{Username: "ann"})
	if err := store.DeleteSession(ctx, sessionID); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}

	_, err := store.GetSession(ctx, sessionID)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestCleanExpiredSessions(t *testing.T) {
	store := NewMemorySessionStoreWithTimeout(-time.Second)
	ctx := context.Background()

	store.CreateSession(ctx, &User{Username: "a"})
	store.CreateSession(ctx, &User{Username: "b"})
	if store.SessionCount() != 2 {
		t.Fatalf("SessionCount = %d", store.SessionCount())
	}

	if err := store.CleanExpiredSessions(ctx); err != nil {
		t.Fatalf("CleanExpiredSessions() error: %v", err)
	}
	if store.SessionCount() != 0 {
		t.Errorf("SessionCount after cleanup = %d", store.SessionCount())
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, _ := store.CreateSession(ctx, &User{Username: "ann"})
		if seen[id] {
			t.Fatalf("duplicate session ID %q", id)
		}
		seen[id] = true
	}
}

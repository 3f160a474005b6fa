package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

type memStore struct {
	token   *StoredToken
	cleared int
}

func (m *memStore) Save(token *StoredToken) error { m.token = token; return nil }
func (m *memStore) Load() (*StoredToken, error)   { return m.token, nil }
func (m *memStore) Clear() error                  { m.token = nil; m.cleared++; return nil }

// fakeIdentity serves the accounts endpoints with a single valid account.
func fakeIdentity(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(body, &payload)

		reject := func(code string) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": code}})
		}

		switch {
		case strings.Contains(r.URL.Path, "accounts:signUp"):
			if payload["email"] == "taken@example.com" {
				reject("EMAIL_EXISTS")
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"localId": "uid-1", "email": payload["email"],
				"idToken": "id-token", "refreshToken": "refresh-token", "expiresIn": "3600",
			})
		case strings.Contains(r.URL.Path, "accounts:signInWithPassword"):
			if payload["password"] != "secret" {
				reject("INVALID_PASSWORD")
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"localId": "uid-1", "email": payload["email"], "displayName": "Alice",
				"idToken": "id-token", "refreshToken": "refresh-token", "expiresIn": "3600",
			})
		case strings.Contains(r.URL.Path, "accounts:update"):
			json.NewEncoder(w).Encode(map[string]any{"localId": "uid-1"})
		case strings.Contains(r.URL.Path, "accounts:lookup"):
			if payload["idToken"] != "id-token" {
				reject("INVALID_ID_TOKEN")
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"users": []map[string]any{{"localId": "uid-1", "email": "alice@example.com", "displayName": "Alice"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestSession(t *testing.T, server *httptest.Server, store TokenStore) *Session {
	t.Helper()
	provider := NewRESTProvider(shared.IdentityConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		TokenURL: server.URL + "/token",
	}, shared.NewLogger(io.Discard))
	return NewSession(provider, store, shared.NewLogger(io.Discard))
}

func TestSessionLogin(t *testing.T) {
	server := fakeIdentity(t)
	defer server.Close()

	t.Run("successful login stores token and sets user", func(t *testing.T) {
		store := &memStore{}
		session := newTestSession(t, server, store)

		user, err := session.Login(context.Background(), "  alice@example.com  ", "secret")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("unexpected email: %q", user.Email)
		}
		if store.token == nil || store.token.IDToken != "id-token" {
			t.Error("expected token to be persisted")
		}
		if session.CurrentUser() == nil {
			t.Error("expected current user to be set")
		}
	})

	t.Run("wrong password maps to auth error", func(t *testing.T) {
		session := newTestSession(t, server, &memStore{})

		_, err := session.Login(context.Background(), "alice@example.com", "wrong")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected auth failure, got %v", err)
		}
		var authErr *shared.AuthError
		if !errors.As(err, &authErr) || authErr.Code != "INVALID_PASSWORD" {
			t.Errorf("expected INVALID_PASSWORD code, got %v", err)
		}
	})

	t.Run("empty credentials rejected locally", func(t *testing.T) {
		session := newTestSession(t, server, &memStore{})
		if _, err := session.Login(context.Background(), "   ", "secret"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected missing argument error, got %v", err)
		}
	})
}

func TestSessionRegister(t *testing.T) {
	server := fakeIdentity(t)
	defer server.Close()

	t.Run("registers and applies display name", func(t *testing.T) {
		session := newTestSession(t, server, &memStore{})

		user, err := session.Register(context.Background(), "new@example.com", "secret", "Newbie")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.DisplayName != "Newbie" {
			t.Errorf("expected display name applied, got %q", user.DisplayName)
		}
	})

	t.Run("duplicate email surfaces provider code", func(t *testing.T) {
		session := newTestSession(t, server, &memStore{})

		_, err := session.Register(context.Background(), "taken@example.com", "secret", "")
		var authErr *shared.AuthError
		if !errors.As(err, &authErr) || authErr.Code != "EMAIL_EXISTS" {
			t.Errorf("expected EMAIL_EXISTS, got %v", err)
		}
	})
}

func TestSessionLogout(t *testing.T) {
	server := fakeIdentity(t)
	defer server.Close()

	store := &memStore{}
	session := newTestSession(t, server, store)

	if _, err := session.Login(context.Background(), "alice@example.com", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := session.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if store.token != nil {
		t.Error("expected stored token to be cleared")
	}
	if session.CurrentUser() != nil {
		t.Error("expected user to be cleared")
	}
	if session.IDToken() != "" {
		t.Error("expected id token to be cleared")
	}
}

func TestSessionRefreshToken(t *testing.T) {
	t.Run("signed out returns ErrNotSignedIn", func(t *testing.T) {
		server := fakeIdentity(t)
		defer server.Close()

		session := newTestSession(t, server, &memStore{})
		if err := session.RefreshToken(context.Background()); !errors.Is(err, shared.ErrNotSignedIn) {
			t.Errorf("expected ErrNotSignedIn, got %v", err)
		}
	})

	t.Run("exchanges refresh token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "refresh_token" {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id_token": "fresh-token", "refresh_token": "fresh-refresh",
				"expires_in": "3600", "user_id": "uid-1",
			})
		}))
		defer server.Close()

		store := &memStore{token: &StoredToken{IDToken: "old", RefreshToken: "refresh-token"}}
		session := newTestSession(t, server, store)
		session.mu.Lock()
		session.token = store.token
		session.mu.Unlock()

		if err := session.RefreshToken(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.IDToken() != "fresh-token" {
			t.Errorf("expected fresh token, got %q", session.IDToken())
		}
		if store.token.RefreshToken != "fresh-refresh" {
			t.Error("expected refreshed token persisted")
		}
	})
}

func TestSessionStart(t *testing.T) {
	server := fakeIdentity(t)
	defer server.Close()

	t.Run("restores stored session", func(t *testing.T) {
		store := &memStore{token: &StoredToken{
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
			Expiry:       time.Now().Add(time.Hour),
		}}
		session := newTestSession(t, server, store)

		if !session.Initializing() {
			t.Error("expected session to start initializing")
		}
		if err := session.Start(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.Initializing() {
			t.Error("expected initializing to flip false")
		}
		user := session.CurrentUser()
		if user == nil || user.Email != "alice@example.com" {
			t.Errorf("expected restored user, got %+v", user)
		}
	})

	t.Run("rejected token clears the store", func(t *testing.T) {
		store := &memStore{token: &StoredToken{IDToken: "stale", Expiry: time.Now().Add(time.Hour)}}
		session := newTestSession(t, server, store)

		if err := session.Start(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.CurrentUser() != nil {
			t.Error("expected no user")
		}
		if store.token != nil {
			t.Error("expected stale token cleared")
		}
		if session.Initializing() {
			t.Error("expected initializing to flip false even on failure")
		}
	})

	t.Run("empty store leaves session signed out", func(t *testing.T) {
		session := newTestSession(t, server, &memStore{})
		if err := session.Start(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.CurrentUser() != nil {
			t.Error("expected no user")
		}
	})
}

func TestSessionSubscribe(t *testing.T) {
	server := fakeIdentity(t)
	defer server.Close()

	session := newTestSession(t, server, &memStore{})

	var calls int
	unsubscribe := session.Subscribe(func(user *models.User) { calls++ })

	if calls != 1 {
		t.Fatalf("expected immediate invocation, got %d calls", calls)
	}

	if _, err := session.Login(context.Background(), "alice@example.com", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected listener notified on login, got %d calls", calls)
	}

	unsubscribe()
	_ = session.Logout()
	if calls != 2 {
		t.Errorf("expected no notification after unsubscribe, got %d calls", calls)
	}
}

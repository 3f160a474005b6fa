// Package auth implements the email/password session: registration, sign-in,
// token persistence, and restoration of a previous session on startup.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

// Credentials is the token bundle issued by the identity provider on sign-up,
// sign-in, or refresh.
type Credentials struct {
	UID          string
	Email        string
	DisplayName  string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Provider is the identity backend the session talks to.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Credentials, error)
	SignIn(ctx context.Context, email, password string) (*Credentials, error)
	UpdateProfile(ctx context.Context, idToken, displayName string) error
	Refresh(ctx context.Context, refreshToken string) (*Credentials, error)
	Lookup(ctx context.Context, idToken string) (*models.User, error)
}

// StoredToken is the persisted session record.
type StoredToken struct {
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// TokenStore persists the session token between runs. Load returns
// (nil, nil) when no token is stored.
type TokenStore interface {
	Save(token *StoredToken) error
	Load() (*StoredToken, error)
	Clear() error
}

// Listener is notified whenever the signed-in user changes. The user is nil
// after sign-out.
type Listener func(user *models.User)

// Session tracks the signed-in user and the credentials backing API calls.
// All exported methods are safe for concurrent use.
type Session struct {
	provider Provider
	store    TokenStore
	logger   *log.Logger

	mu           sync.Mutex
	user         *models.User
	token        *StoredToken
	initializing bool
	loading      bool

	listeners map[int]Listener
	nextID    int
}

// NewSession builds a session backed by the given provider and token store.
// The session starts uninitialized; call [Session.Start] to restore any
// persisted sign-in.
func NewSession(provider Provider, store TokenStore, logger *log.Logger) *Session {
	return &Session{
		provider:     provider,
		store:        store,
		logger:       logger,
		initializing: true,
		listeners:    make(map[int]Listener),
	}
}

// Start restores a persisted session if one exists. A stored token whose user
// cannot be looked up is discarded rather than surfaced as an error. The
// initializing flag flips to false exactly once, whether or not restoration
// succeeds.
func (s *Session) Start(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.initializing = false
		s.mu.Unlock()
	}()

	token, err := s.store.Load()
	if err != nil {
		s.logger.Warn("failed to load stored token", "error", err)
		return nil
	}
	if token == nil {
		return nil
	}

	if !token.Expiry.IsZero() && time.Now().After(token.Expiry) && token.RefreshToken != "" {
		refreshed, err := s.provider.Refresh(ctx, token.RefreshToken)
		if err != nil {
			s.logger.Warn("stored token expired and refresh failed", "error", err)
			_ = s.store.Clear()
			return nil
		}
		token = credentialsToToken(refreshed)
		if err := s.store.Save(token); err != nil {
			s.logger.Warn("failed to persist refreshed token", "error", err)
		}
	}

	user, err := s.provider.Lookup(ctx, token.IDToken)
	if err != nil {
		s.logger.Warn("stored token rejected, clearing session", "error", err)
		_ = s.store.Clear()
		return nil
	}

	s.setUser(user, token)
	s.logger.Info("session restored", "email", user.Email)
	return nil
}

// Subscribe registers a listener for user changes and immediately invokes it
// with the current user. The returned function removes the listener.
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	user := s.user
	s.mu.Unlock()

	fn(user)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Register creates a new account and signs it in. The display name is applied
// best-effort: a profile update failure does not fail registration.
func (s *Session) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, shared.ErrMissingArgument
	}

	s.setLoading(true)
	defer s.setLoading(false)

	creds, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if displayName != "" {
		if err := s.provider.UpdateProfile(ctx, creds.IDToken, displayName); err != nil {
			s.logger.Warn("failed to set display name", "error", err)
		} else {
			creds.DisplayName = displayName
		}
	}

	return s.complete(creds)
}

// Login signs in with an existing account and persists the session token.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, shared.ErrMissingArgument
	}

	s.setLoading(true)
	defer s.setLoading(false)

	creds, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return s.complete(creds)
}

// Logout clears the persisted token before dropping the in-memory session, so
// a crash mid-logout cannot leave a stored token for a signed-out user.
func (s *Session) Logout() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.setUser(nil, nil)
	s.logger.Info("signed out")
	return nil
}

// RefreshToken forces a token refresh. Returns [shared.ErrNotSignedIn] when
// there is no active session.
func (s *Session) RefreshToken(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == nil || token.RefreshToken == "" {
		return shared.ErrNotSignedIn
	}

	creds, err := s.provider.Refresh(ctx, token.RefreshToken)
	if err != nil {
		return err
	}

	fresh := credentialsToToken(creds)
	if err := s.store.Save(fresh); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = fresh
	s.mu.Unlock()
	return nil
}

// CurrentUser returns the signed-in user, or nil.
func (s *Session) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Initializing reports whether startup restoration is still in progress.
func (s *Session) Initializing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializing
}

// Loading reports whether a sign-in or registration call is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// IDToken returns the current ID token, or the empty string when signed out.
func (s *Session) IDToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return ""
	}
	return s.token.IDToken
}

func (s *Session) complete(creds *Credentials) (*models.User, error) {
	token := credentialsToToken(creds)
	if err := s.store.Save(token); err != nil {
		s.logger.Warn("failed to persist session token", "error", err)
	}

	user := &models.User{UID: creds.UID, Email: creds.Email, DisplayName: creds.DisplayName}
	s.setUser(user, token)
	s.logger.Info("signed in", "email", user.Email)
	return user, nil
}

func (s *Session) setUser(user *models.User, token *StoredToken) {
	s.mu.Lock()
	s.user = user
	s.token = token
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func credentialsToToken(creds *Credentials) *StoredToken {
	token := &StoredToken{IDToken: creds.IDToken, RefreshToken: creds.RefreshToken}
	if creds.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(creds.ExpiresIn)
	}
	return token
}

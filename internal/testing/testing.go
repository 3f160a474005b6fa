// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/vdx/internal/auth"
	"github.com/desertthunder/vdx/internal/models"
)

// MockSource is a test double for [services.Source] serving scripted pages.
type MockSource struct {
	SourceName string
	ItemKind   models.ItemKind
	Page       *models.Page
	Err        error
	Calls      int
}

func (m *MockSource) Name() string { return m.SourceName }

func (m *MockSource) Kind() models.ItemKind { return m.ItemKind }

func (m *MockSource) Fetch(ctx context.Context, query models.Query) (*models.Page, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Page != nil {
		return m.Page, nil
	}
	return &models.Page{Source: m.SourceName}, nil
}

// MockTokenStore is an in-memory [auth.TokenStore].
type MockTokenStore struct {
	Token   *auth.StoredToken
	SaveErr error
}

func (m *MockTokenStore) Save(token *auth.StoredToken) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Token = token
	return nil
}

func (m *MockTokenStore) Load() (*auth.StoredToken, error) { return m.Token, nil }

func (m *MockTokenStore) Clear() error {
	m.Token = nil
	return nil
}

// MockProvider is a test double for [auth.Provider] that accepts any
// credentials.
type MockProvider struct {
	User *models.User
	Err  error
}

func (m *MockProvider) credentials(email string) *auth.Credentials {
	uid := "mock-uid"
	if m.User != nil {
		uid = m.User.UID
	}
	return &auth.Credentials{UID: uid, Email: email, IDToken: "mock-token", RefreshToken: "mock-refresh"}
}

func (m *MockProvider) SignUp(ctx context.Context, email, password string) (*auth.Credentials, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.credentials(email), nil
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*auth.Credentials, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.credentials(email), nil
}

func (m *MockProvider) UpdateProfile(ctx context.Context, idToken, displayName string) error {
	return m.Err
}

func (m *MockProvider) Refresh(ctx context.Context, refreshToken string) (*auth.Credentials, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.credentials(""), nil
}

func (m *MockProvider) Lookup(ctx context.Context, idToken string) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.User != nil {
		return m.User, nil
	}
	return &models.User{UID: "mock-uid", Email: "mock@example.com"}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

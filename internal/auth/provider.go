package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

// RESTProvider talks to an identity-toolkit style HTTP API: JSON POST
// endpoints keyed by an API key query parameter, with a separate token
// endpoint for refresh.
type RESTProvider struct {
	apiKey   string
	baseURL  string
	tokenURL string
	client   *http.Client
	logger   *log.Logger
}

// NewRESTProvider builds a provider from the identity section of the config.
func NewRESTProvider(conf shared.IdentityConfig, logger *log.Logger) *RESTProvider {
	return &RESTProvider{
		apiKey:   conf.APIKey,
		baseURL:  strings.TrimRight(conf.BaseURL, "/"),
		tokenURL: conf.TokenURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type credentialsResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (r credentialsResponse) credentials() *Credentials {
	creds := &Credentials{
		UID:          r.LocalID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
	}
	if secs, err := strconv.Atoi(r.ExpiresIn); err == nil {
		creds.ExpiresIn = time.Duration(secs) * time.Second
	}
	return creds
}

// SignUp creates a new account and returns its credentials.
func (p *RESTProvider) SignUp(ctx context.Context, email, password string) (*Credentials, error) {
	payload := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	var result credentialsResponse
	if err := p.doRequest(ctx, "accounts:signUp", payload, &result); err != nil {
		return nil, err
	}
	return result.credentials(), nil
}

// SignIn authenticates an existing account.
func (p *RESTProvider) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	payload := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	var result credentialsResponse
	if err := p.doRequest(ctx, "accounts:signInWithPassword", payload, &result); err != nil {
		return nil, err
	}
	return result.credentials(), nil
}

// UpdateProfile sets the display name on the account behind idToken.
func (p *RESTProvider) UpdateProfile(ctx context.Context, idToken, displayName string) error {
	payload := map[string]any{"idToken": idToken, "displayName": displayName, "returnSecureToken": false}
	return p.doRequest(ctx, "accounts:update", payload, nil)
}

// Lookup resolves an ID token to its account.
func (p *RESTProvider) Lookup(ctx context.Context, idToken string) (*models.User, error) {
	payload := map[string]any{"idToken": idToken}
	var result struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"users"`
	}
	if err := p.doRequest(ctx, "accounts:lookup", payload, &result); err != nil {
		return nil, err
	}
	if len(result.Users) == 0 {
		return nil, shared.ErrNotSignedIn
	}
	u := result.Users[0]
	return &models.User{UID: u.LocalID, Email: u.Email, DisplayName: u.DisplayName}, nil
}

// Refresh exchanges a refresh token for fresh credentials via the token
// endpoint, which takes form-encoded input rather than JSON.
func (p *RESTProvider) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := fmt.Sprintf("%s?key=%s", p.tokenURL, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAuthError(resp)
	}

	var result struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
		UserID       string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	creds := &Credentials{UID: result.UserID, IDToken: result.IDToken, RefreshToken: result.RefreshToken}
	if secs, err := strconv.Atoi(result.ExpiresIn); err == nil {
		creds.ExpiresIn = time.Duration(secs) * time.Second
	}
	return creds, nil
}

// doRequest posts JSON to an accounts endpoint and decodes the response into
// result when result is non-nil.
func (p *RESTProvider) doRequest(ctx context.Context, action string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", p.baseURL, action, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := decodeAuthError(resp)
		p.logger.Debug("identity request rejected", "action", action, "status", resp.StatusCode, "error", err)
		return err
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeAuthError extracts the provider error code from a rejection body.
// Codes sometimes carry a trailing detail ("WEAK_PASSWORD : ..."); only the
// leading token is the code.
func decodeAuthError(resp *http.Response) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Message == "" {
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	code, _, _ := strings.Cut(body.Error.Message, " ")
	return shared.NewAuthError(code)
}

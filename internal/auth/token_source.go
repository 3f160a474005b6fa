package auth

import (
	"context"
	"time"

	"github.com/desertthunder/vdx/internal/shared"
	"golang.org/x/oauth2"
)

// TokenSource adapts the session to [oauth2.TokenSource] so HTTP clients can
// attach bearer credentials the standard way. The source refreshes through
// the provider when the stored token has expired.
func (s *Session) TokenSource(ctx context.Context) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &sessionTokenSource{ctx: ctx, session: s})
}

type sessionTokenSource struct {
	ctx     context.Context
	session *Session
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	s := ts.session

	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == nil {
		return nil, shared.ErrNotSignedIn
	}

	if !token.Expiry.IsZero() && time.Now().After(token.Expiry) {
		if err := s.RefreshToken(ts.ctx); err != nil {
			return nil, err
		}
		s.mu.Lock()
		token = s.token
		s.mu.Unlock()
	}

	return &oauth2.Token{
		AccessToken: token.IDToken,
		TokenType:   "Bearer",
		Expiry:      token.Expiry,
	}, nil
}

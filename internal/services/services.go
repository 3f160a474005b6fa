package services

import (
	"context"
	"net/http"
	"time"

	"github.com/desertthunder/vdx/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// PlaceholderThumbnail is shown for items whose provider payload carries no
// usable image.
const PlaceholderThumbnail = "https://via.placeholder.com/480x270.png?text=No+Thumbnail"

// Source is a content gateway producing pages of normalized feed items.
type Source interface {
	// Name identifies the source in page results and logs.
	Name() string
	// Kind reports whether the source produces videos or documents.
	Kind() models.ItemKind
	// Fetch returns one page of items for the query. The query's PageToken
	// is the cursor returned by the previous page; an empty token requests
	// the first page.
	Fetch(ctx context.Context, query models.Query) (*models.Page, error)
}

// bearerTransport attaches bearer credentials from a token source when one is
// available and sends the request unauthenticated otherwise. Provider APIs
// here accept both; signed-in requests just carry the identity along.
type bearerTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.source != nil {
		if token, err := t.source.Token(); err == nil && token.AccessToken != "" {
			clone := req.Clone(req.Context())
			token.SetAuthHeader(clone)
			req = clone
		}
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewHTTPClient builds the client used by all gateways: a 30 second timeout
// plus optional bearer decoration from the session's token source.
func NewHTTPClient(ts oauth2.TokenSource) *http.Client {
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: &bearerTransport{source: ts},
	}
}

// newLimiter builds the per-source request limiter. Burst of one keeps calls
// evenly spaced the way the provider rate policies expect.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		perSecond = 5
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

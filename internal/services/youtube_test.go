package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

func newYouTubeTest(t *testing.T, handler http.HandlerFunc) (*YouTubeService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewYouTubeService(
		shared.YouTubeConfig{APIKey: "test-key", BaseURL: server.URL},
		shared.QuotaConfig{Status: 403, Match: "quotaexceeded"},
		server.Client(),
		shared.NewLogger(io.Discard),
	)
	return svc, server
}

func TestYouTubeFetch(t *testing.T) {
	t.Run("maps search results", func(t *testing.T) {
		svc, _ := newYouTubeTest(t, func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.URL.Path, "search") {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("q") != "go tutorials" {
				t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
			}
			json.NewEncoder(w).Encode(map[string]any{
				"nextPageToken": "TOKEN2",
				"items": []map[string]any{
					{
						"id": map[string]any{"videoId": "abc12345678"},
						"snippet": map[string]any{
							"title":        "First",
							"channelTitle": "Chan",
							"thumbnails": map[string]any{
								"high":    map[string]any{"url": "high.jpg"},
								"default": map[string]any{"url": "default.jpg"},
							},
						},
					},
					{
						// no videoId, dropped
						"id":      map[string]any{},
						"snippet": map[string]any{"title": "Skipped"},
					},
				},
			})
		})

		page, err := svc.Fetch(context.Background(), models.Query{Term: "go tutorials", PageSize: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Items) != 1 {
			t.Fatalf("expected 1 item after dropping id-less entry, got %d", len(page.Items))
		}

		item := page.Items[0]
		if item.ItemID != "abc12345678" {
			t.Errorf("unexpected id %q", item.ItemID)
		}
		if item.URL != "https://www.youtube.com/watch?v=abc12345678" {
			t.Errorf("unexpected watch url %q", item.URL)
		}
		if item.Thumbnail != "high.jpg" {
			t.Errorf("expected high thumbnail preferred, got %q", item.Thumbnail)
		}
		if !page.HasMore || page.NextPageToken != "TOKEN2" {
			t.Errorf("expected more pages with token, got hasMore=%v token=%q", page.HasMore, page.NextPageToken)
		}
	})

	t.Run("thumbnail priority falls through to placeholder", func(t *testing.T) {
		tests := []struct {
			name       string
			thumbnails map[string]any
			want       string
		}{
			{"medium when no high", map[string]any{"medium": map[string]any{"url": "medium.jpg"}}, "medium.jpg"},
			{"default when no high or medium", map[string]any{"default": map[string]any{"url": "default.jpg"}}, "default.jpg"},
			{"placeholder when none", map[string]any{}, PlaceholderThumbnail},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				svc, _ := newYouTubeTest(t, func(w http.ResponseWriter, r *http.Request) {
					json.NewEncoder(w).Encode(map[string]any{
						"items": []map[string]any{{
							"id":      map[string]any{"videoId": "abc12345678"},
							"snippet": map[string]any{"title": "T", "thumbnails": tc.thumbnails},
						}},
					})
				})

				page, err := svc.Fetch(context.Background(), models.Query{Term: "q", PageSize: 1})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if page.Items[0].Thumbnail != tc.want {
					t.Errorf("got %q, want %q", page.Items[0].Thumbnail, tc.want)
				}
			})
		}
	})

	t.Run("last page has no token", func(t *testing.T) {
		svc, _ := newYouTubeTest(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{}})
		})

		page, err := svc.Fetch(context.Background(), models.Query{Term: "q", PageSize: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.HasMore || page.NextPageToken != "" {
			t.Error("expected terminal page")
		}
	})

	t.Run("quota rejection maps to ErrQuotaExceeded", func(t *testing.T) {
		svc, _ := newYouTubeTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"errors":[{"reason":"quotaExceeded"}]}}`))
		})

		_, err := svc.Fetch(context.Background(), models.Query{Term: "q", PageSize: 10})
		if !errors.Is(err, shared.ErrQuotaExceeded) {
			t.Errorf("expected quota error, got %v", err)
		}
	})

	t.Run("403 without quota message is a plain API error", func(t *testing.T) {
		svc, _ := newYouTubeTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"message":"forbidden"}}`))
		})

		_, err := svc.Fetch(context.Background(), models.Query{Term: "q", PageSize: 10})
		if errors.Is(err, shared.ErrQuotaExceeded) {
			t.Error("plain 403 should not count as quota")
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected API request error, got %v", err)
		}
	})
}

func TestYouTubePopular(t *testing.T) {
	svc, _ := newYouTubeTest(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "videos") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("chart") != "mostPopular" {
			t.Errorf("expected mostPopular chart, got %q", r.URL.Query().Get("chart"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{
				"id":      "pop12345678",
				"snippet": map[string]any{"title": "Trending", "channelTitle": "Chan"},
			}},
		})
	})

	page, err := svc.Popular(context.Background(), models.Query{PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ItemID != "pop12345678" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
}

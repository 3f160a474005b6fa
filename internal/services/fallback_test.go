package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

func TestVideoFeedFallback(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	quota := shared.QuotaConfig{Status: 403, Match: "quotaexceeded"}

	t.Run("healthy search passes through", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{
					"id":      map[string]any{"videoId": "abc12345678"},
					"snippet": map[string]any{"title": "Hit"},
				}},
			})
		}))
		defer server.Close()

		youtube := NewYouTubeService(shared.YouTubeConfig{APIKey: "k", BaseURL: server.URL}, quota, server.Client(), logger)
		feed := NewVideoFeed(youtube, logger)

		page, err := feed.Fetch(context.Background(), models.Query{Term: "q", PageSize: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Reason != "" {
			t.Errorf("expected no reason annotation, got %q", page.Reason)
		}
		if page.Items[0].ItemID != "abc12345678" {
			t.Errorf("unexpected items: %+v", page.Items)
		}
	})

	t.Run("quota on search falls back to popular", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "search") {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":{"errors":[{"reason":"quotaExceeded"}]}}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{
					"id":      "pop12345678",
					"snippet": map[string]any{"title": "Trending"},
				}},
			})
		}))
		defer server.Close()

		youtube := NewYouTubeService(shared.YouTubeConfig{APIKey: "k", BaseURL: server.URL}, quota, server.Client(), logger)
		feed := NewVideoFeed(youtube, logger)

		page, err := feed.Fetch(context.Background(), models.Query{Term: "q", PageSize: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Reason != ReasonQuotaFallback {
			t.Errorf("expected quota fallback reason, got %q", page.Reason)
		}
		if page.Items[0].ItemID != "pop12345678" {
			t.Errorf("expected popular items, got %+v", page.Items)
		}
	})

	t.Run("transport failure serves sample items", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // every request now fails to connect

		youtube := NewYouTubeService(shared.YouTubeConfig{APIKey: "k", BaseURL: server.URL}, quota, http.DefaultClient, logger)
		feed := NewVideoFeed(youtube, logger)

		page, err := feed.Fetch(context.Background(), models.Query{Term: "q", PageSize: 10})
		if err != nil {
			t.Fatalf("fallback should not error: %v", err)
		}
		if page.Source != SourceSample {
			t.Errorf("expected sample source, got %q", page.Source)
		}
		if len(page.Items) == 0 {
			t.Fatal("expected sample items")
		}
		if page.Reason == "" {
			t.Error("expected failure reason annotation")
		}
		if page.HasMore {
			t.Error("sample page should be terminal")
		}
	})
}

package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

func newGitHubTest(t *testing.T, handler http.HandlerFunc) *GitHubService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGitHubService(
		shared.GitHubConfig{Owner: "octo", Repo: "docs", Path: "guides", Ref: "main", BaseURL: server.URL},
		server.Client(),
		shared.NewLogger(io.Discard),
	)
}

func TestGitHubFetch(t *testing.T) {
	t.Run("filters to files and maps fields", func(t *testing.T) {
		svc := newGitHubTest(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/repos/octo/docs/contents/guides" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("ref") != "main" {
				t.Errorf("expected ref param, got %q", r.URL.Query().Get("ref"))
			}
			json.NewEncoder(w).Encode([]map[string]any{
				{
					"name": "report.pdf", "path": "guides/report.pdf", "sha": "abc123",
					"size": 2048, "type": "file",
					"download_url": "https://raw.example.com/report.pdf",
				},
				{"name": "images", "type": "dir"},
				{
					"name": "README", "path": "guides/README", "sha": "",
					"size": 0, "type": "file", "html_url": "https://example.com/README",
				},
			})
		})

		page, err := svc.Fetch(context.Background(), models.Query{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Items) != 2 {
			t.Fatalf("expected directories filtered out, got %d items", len(page.Items))
		}

		report := page.Items[0]
		if report.ItemID != "abc123" || report.Extension != "pdf" || report.SizeLabel != "2 KB" {
			t.Errorf("unexpected mapping: %+v", report)
		}
		if report.URL != "https://raw.example.com/report.pdf" {
			t.Errorf("unexpected url %q", report.URL)
		}

		readme := page.Items[1]
		if readme.Extension != "file" {
			t.Errorf("expected default extension for dotless name, got %q", readme.Extension)
		}
		if readme.SizeLabel != "" {
			t.Errorf("expected empty size label for unknown size, got %q", readme.SizeLabel)
		}
		if readme.ItemID != "guides/README" {
			t.Errorf("expected path id fallback, got %q", readme.ItemID)
		}
		if readme.URL != "https://example.com/README" {
			t.Errorf("expected html url fallback, got %q", readme.URL)
		}
	})

	t.Run("listing is a single terminal page", func(t *testing.T) {
		svc := newGitHubTest(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]map[string]any{})
		})

		page, err := svc.Fetch(context.Background(), models.Query{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.HasMore || page.NextPageToken != "" {
			t.Error("contents listing should never page")
		}
	})
}

func TestGitHubMapEntry(t *testing.T) {
	svc := &GitHubService{}

	t.Run("extension lowercased", func(t *testing.T) {
		item := svc.mapEntry(githubEntry{Name: "Slides.PDF", SHA: "s1", Type: "file"})
		if item.Extension != "pdf" {
			t.Errorf("got %q", item.Extension)
		}
	})

	t.Run("generated id when sha and path missing", func(t *testing.T) {
		item := svc.mapEntry(githubEntry{Name: "x.txt", Type: "file"})
		if item.ItemID == "" {
			t.Error("expected generated id")
		}
	})
}

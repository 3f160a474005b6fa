package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

func newPexelsTest(t *testing.T, handler http.HandlerFunc) *PexelsService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewPexelsService(
		shared.PexelsConfig{APIKey: "px-key", BaseURL: server.URL},
		server.Client(),
		shared.NewLogger(io.Discard),
	)
}

func TestPexelsFetch(t *testing.T) {
	t.Run("maps videos and sends auth header", func(t *testing.T) {
		svc := newPexelsTest(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "px-key" {
				t.Errorf("expected raw api key header, got %q", r.Header.Get("Authorization"))
			}
			if r.URL.Query().Get("page") != "1" {
				t.Errorf("expected first page, got %q", r.URL.Query().Get("page"))
			}
			json.NewEncoder(w).Encode(map[string]any{
				"total_results": 100,
				"videos": []map[string]any{{
					"id":    1,
					"user":  map[string]any{"name": "Alice"},
					"image": "img1",
					"video_files": []map[string]any{
						{"file_type": "video/mp4", "quality": "hd", "width": 1920, "link": "hd-link"},
					},
				}},
			})
		})

		page, err := svc.Fetch(context.Background(), models.Query{Term: "nature", PageSize: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		item := page.Items[0]
		if item.ItemID != "1" || item.Title != "Video by Alice" || item.Thumbnail != "img1" || item.URL != "hd-link" {
			t.Errorf("unexpected mapping: %+v", item)
		}
		if !page.HasMore || page.NextPageToken != "2" {
			t.Errorf("expected next page 2, got hasMore=%v token=%q", page.HasMore, page.NextPageToken)
		}
	})

	t.Run("page token is the page number", func(t *testing.T) {
		svc := newPexelsTest(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") != "3" {
				t.Errorf("expected page 3, got %q", r.URL.Query().Get("page"))
			}
			json.NewEncoder(w).Encode(map[string]any{"total_results": 25, "videos": []map[string]any{}})
		})

		page, err := svc.Fetch(context.Background(), models.Query{Term: "q", PageSize: 10, PageToken: "3"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// page 3 of 10 covers result 30 > 25 total
		if page.HasMore {
			t.Error("expected no more pages past the total")
		}
	})

	t.Run("full page implies more when total is unknown", func(t *testing.T) {
		svc := newPexelsTest(t, func(w http.ResponseWriter, r *http.Request) {
			videos := make([]map[string]any, 2)
			for i := range videos {
				videos[i] = map[string]any{"id": i + 1}
			}
			json.NewEncoder(w).Encode(map[string]any{"videos": videos})
		})

		page, err := svc.Fetch(context.Background(), models.Query{Term: "q", PageSize: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !page.HasMore || page.NextPageToken != "2" {
			t.Errorf("expected heuristic hasMore, got %v token %q", page.HasMore, page.NextPageToken)
		}
	})

	t.Run("missing api key fails locally", func(t *testing.T) {
		svc := NewPexelsService(shared.PexelsConfig{}, http.DefaultClient, shared.NewLogger(io.Discard))
		if _, err := svc.Fetch(context.Background(), models.Query{Term: "q", PageSize: 10}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected missing credentials, got %v", err)
		}
	})
}

func TestPexelsMapItem(t *testing.T) {
	svc := &PexelsService{}

	t.Run("title falls back to video number then untitled", func(t *testing.T) {
		if got := svc.mapItem(pexelsVideo{ID: 7}).Title; got != "Video #7" {
			t.Errorf("got %q", got)
		}
		item := svc.mapItem(pexelsVideo{})
		if item.Title != "Untitled" {
			t.Errorf("got %q", item.Title)
		}
		if item.ItemID == "" {
			t.Error("expected generated id for id-less video")
		}
	})

	t.Run("thumbnail falls back to first picture then placeholder", func(t *testing.T) {
		v := pexelsVideo{ID: 1}
		v.VideoPictures = []struct {
			Picture string `json:"picture"`
		}{{Picture: "pic1"}}
		if got := svc.mapItem(v).Thumbnail; got != "pic1" {
			t.Errorf("got %q", got)
		}
		if got := svc.mapItem(pexelsVideo{ID: 1}).Thumbnail; got != PlaceholderThumbnail {
			t.Errorf("got %q", got)
		}
	})
}

func TestBestVideoFile(t *testing.T) {
	hd := pexelsVideoFile{FileType: "video/mp4", Quality: "hd", Width: 1920, Link: "hd"}
	wide := pexelsVideoFile{FileType: "video/mp4", Quality: "sd", Width: 1280, Link: "wide"}
	sd := pexelsVideoFile{FileType: "video/mp4", Quality: "sd", Width: 640, Link: "sd"}
	webm := pexelsVideoFile{FileType: "video/webm", Link: "webm"}

	tests := []struct {
		name  string
		files []pexelsVideoFile
		want  string
	}{
		{"hd mp4 preferred", []pexelsVideoFile{sd, hd}, "hd"},
		{"wide mp4 counts as hd", []pexelsVideoFile{sd, wide}, "wide"},
		{"any mp4 over other types", []pexelsVideoFile{webm, sd}, "sd"},
		{"first file as last resort", []pexelsVideoFile{webm}, "webm"},
		{"no files", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := bestVideoFile(tc.files); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

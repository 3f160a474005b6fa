package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
	"golang.org/x/time/rate"
)

// SourceYouTube is the name YouTube pages report.
const SourceYouTube = "youtube"

// YouTubeService queries the YouTube Data API search and videos endpoints.
// Search pages by opaque token; the popular listing backs the quota fallback.
type YouTubeService struct {
	apiKey  string
	baseURL string
	quota   shared.QuotaConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewYouTubeService creates a YouTube gateway from config.
func NewYouTubeService(conf shared.YouTubeConfig, quota shared.QuotaConfig, client *http.Client, logger *log.Logger) *YouTubeService {
	return &YouTubeService{
		apiKey:  conf.APIKey,
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		quota:   quota,
		client:  client,
		limiter: newLimiter(5),
		logger:  logger,
	}
}

func (y *YouTubeService) Name() string          { return SourceYouTube }
func (y *YouTubeService) Kind() models.ItemKind { return models.KindVideo }

type ytThumbnail struct {
	URL string `json:"url"`
}

type ytThumbnails struct {
	High    *ytThumbnail `json:"high"`
	Medium  *ytThumbnail `json:"medium"`
	Default *ytThumbnail `json:"default"`
}

// pick returns the highest-resolution thumbnail available, falling back to
// the placeholder.
func (t ytThumbnails) pick() string {
	for _, thumb := range []*ytThumbnail{t.High, t.Medium, t.Default} {
		if thumb != nil && thumb.URL != "" {
			return thumb.URL
		}
	}
	return PlaceholderThumbnail
}

type ytSnippet struct {
	Title        string       `json:"title"`
	ChannelTitle string       `json:"channelTitle"`
	Thumbnails   ytThumbnails `json:"thumbnails"`
}

type ytSearchResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet ytSnippet `json:"snippet"`
	} `json:"items"`
}

type ytVideosResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID      string    `json:"id"`
		Snippet ytSnippet `json:"snippet"`
	} `json:"items"`
}

// Fetch searches for videos matching the query term.
func (y *YouTubeService) Fetch(ctx context.Context, query models.Query) (*models.Page, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", query.Term)
	params.Set("maxResults", fmt.Sprint(query.PageSize))
	if query.PageToken != "" {
		params.Set("pageToken", query.PageToken)
	}

	var result ytSearchResponse
	if err := y.doRequest(ctx, "search", params, &result); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(result.Items))
	for _, entry := range result.Items {
		if entry.ID.VideoID == "" {
			continue
		}
		items = append(items, y.mapItem(entry.ID.VideoID, entry.Snippet))
	}

	return &models.Page{
		Items:         items,
		NextPageToken: result.NextPageToken,
		HasMore:       result.NextPageToken != "",
		Source:        SourceYouTube,
	}, nil
}

// Popular lists the most popular videos. Used as the fallback when search is
// rejected for quota.
func (y *YouTubeService) Popular(ctx context.Context, query models.Query) (*models.Page, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("chart", "mostPopular")
	params.Set("maxResults", fmt.Sprint(query.PageSize))
	if query.PageToken != "" {
		params.Set("pageToken", query.PageToken)
	}

	var result ytVideosResponse
	if err := y.doRequest(ctx, "videos", params, &result); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(result.Items))
	for _, entry := range result.Items {
		if entry.ID == "" {
			continue
		}
		items = append(items, y.mapItem(entry.ID, entry.Snippet))
	}

	return &models.Page{
		Items:         items,
		NextPageToken: result.NextPageToken,
		HasMore:       result.NextPageToken != "",
		Source:        SourceYouTube,
	}, nil
}

func (y *YouTubeService) mapItem(id string, snippet ytSnippet) models.Item {
	return models.Item{
		ItemID:    id,
		Kind:      models.KindVideo,
		Source:    SourceYouTube,
		Title:     snippet.Title,
		Channel:   snippet.ChannelTitle,
		Thumbnail: snippet.Thumbnails.pick(),
		URL:       "https://www.youtube.com/watch?v=" + id,
	}
}

func (y *YouTubeService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", y.apiKey)
	requestURL := fmt.Sprintf("%s/%s?%s", y.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if y.isQuotaExceeded(resp.StatusCode, body) {
			y.logger.Warn("quota exceeded", "endpoint", endpoint)
			return shared.ErrQuotaExceeded
		}
		return fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// isQuotaExceeded applies the configured quota heuristic: a matching status
// code plus a message substring. The substring check is case-insensitive.
func (y *YouTubeService) isQuotaExceeded(status int, body []byte) bool {
	if y.quota.Status == 0 || status != y.quota.Status {
		return false
	}
	if y.quota.Match == "" {
		return true
	}
	return strings.Contains(strings.ToLower(string(body)), strings.ToLower(y.quota.Match))
}

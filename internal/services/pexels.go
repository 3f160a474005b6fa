package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
	"golang.org/x/time/rate"
)

// SourcePexels is the name stock-footage pages report.
const SourcePexels = "pexels"

// PexelsService queries the Pexels video search API. Pages are numbered, so
// the page cursor is the next page number rendered as a string.
type PexelsService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewPexelsService creates a Pexels gateway from config.
func NewPexelsService(conf shared.PexelsConfig, client *http.Client, logger *log.Logger) *PexelsService {
	return &PexelsService{
		apiKey:  conf.APIKey,
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		client:  client,
		limiter: newLimiter(5),
		logger:  logger,
	}
}

func (p *PexelsService) Name() string          { return SourcePexels }
func (p *PexelsService) Kind() models.ItemKind { return models.KindVideo }

type pexelsVideoFile struct {
	FileType string `json:"file_type"`
	Quality  string `json:"quality"`
	Width    int    `json:"width"`
	Link     string `json:"link"`
}

type pexelsVideo struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Image string `json:"image"`
	User  struct {
		Name string `json:"name"`
	} `json:"user"`
	VideoFiles    []pexelsVideoFile `json:"video_files"`
	VideoPictures []struct {
		Picture string `json:"picture"`
	} `json:"video_pictures"`
}

type pexelsSearchResponse struct {
	TotalResults *int          `json:"total_results"`
	Videos       []pexelsVideo `json:"videos"`
}

// Fetch returns one page of stock footage for the query term.
func (p *PexelsService) Fetch(ctx context.Context, query models.Query) (*models.Page, error) {
	if p.apiKey == "" {
		return nil, shared.ErrMissingCredentials
	}

	page := 1
	if query.PageToken != "" {
		if n, err := strconv.Atoi(query.PageToken); err == nil && n > 1 {
			page = n
		} else {
			page = 2
		}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query.Term)
	params.Set("per_page", strconv.Itoa(query.PageSize))
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/search?%s", p.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: search returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var result pexelsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]models.Item, 0, len(result.Videos))
	for _, video := range result.Videos {
		items = append(items, p.mapItem(video))
	}

	// A reported total gives an exact answer; otherwise assume more pages
	// exist whenever this page came back full.
	var hasMore bool
	if result.TotalResults != nil {
		hasMore = page*query.PageSize < *result.TotalResults
	} else {
		hasMore = len(items) == query.PageSize
	}

	pageResult := &models.Page{Items: items, HasMore: hasMore, Source: SourcePexels}
	if hasMore {
		pageResult.NextPageToken = strconv.Itoa(page + 1)
	}
	return pageResult, nil
}

func (p *PexelsService) mapItem(video pexelsVideo) models.Item {
	id := strconv.Itoa(video.ID)
	if video.ID == 0 {
		id = shared.GenerateID()
	}

	title := "Untitled"
	switch {
	case video.User.Name != "":
		title = "Video by " + video.User.Name
	case video.ID != 0:
		title = fmt.Sprintf("Video #%d", video.ID)
	}

	thumbnail := video.Image
	if thumbnail == "" && len(video.VideoPictures) > 0 {
		thumbnail = video.VideoPictures[0].Picture
	}
	if thumbnail == "" {
		thumbnail = PlaceholderThumbnail
	}

	link := bestVideoFile(video.VideoFiles)
	if link == "" {
		link = video.URL
	}

	return models.Item{
		ItemID:    id,
		Kind:      models.KindVideo,
		Source:    SourcePexels,
		Title:     title,
		Thumbnail: thumbnail,
		URL:       link,
	}
}

// bestVideoFile picks the playable file: an HD-or-wide MP4 first, then any
// MP4, then whatever is listed first.
func bestVideoFile(files []pexelsVideoFile) string {
	for _, f := range files {
		if f.FileType == "video/mp4" && (f.Quality == "hd" || f.Width >= 1280) {
			return f.Link
		}
	}
	for _, f := range files {
		if f.FileType == "video/mp4" {
			return f.Link
		}
	}
	if len(files) > 0 {
		return files[0].Link
	}
	return ""
}

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

// SourceOpenAlex is the name scholarly-work pages report.
const SourceOpenAlex = "openalex"

// OpenAlexService searches open-access scholarly works and keeps only those
// with a resolvable PDF. Pages are numbered.
type OpenAlexService struct {
	mailto  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewOpenAlexService creates an OpenAlex gateway from config.
func NewOpenAlexService(conf shared.OpenAlexConfig, client *http.Client, logger *log.Logger) *OpenAlexService {
	return &OpenAlexService{
		mailto:  conf.Mailto,
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		client:  client,
		limiter: newLimiter(5),
		logger:  logger,
	}
}

func (o *OpenAlexService) Name() string          { return SourceOpenAlex }
func (o *OpenAlexService) Kind() models.ItemKind { return models.KindDocument }

type openAlexLocation struct {
	PDFURL         string `json:"pdf_url"`
	LandingPageURL string `json:"landing_page_url"`
}

type openAlexWork struct {
	ID              string             `json:"id"`
	DisplayName     string             `json:"display_name"`
	PrimaryLocation *openAlexLocation  `json:"primary_location"`
	Locations       []openAlexLocation `json:"locations"`
}

type openAlexResponse struct {
	Meta struct {
		NextPage *int `json:"next_page"`
	} `json:"meta"`
	Results []openAlexWork `json:"results"`
}

// Fetch returns one page of PDF-bearing works for the query term.
func (o *OpenAlexService) Fetch(ctx context.Context, query models.Query) (*models.Page, error) {
	page := 1
	if query.PageToken != "" {
		if n, err := strconv.Atoi(query.PageToken); err == nil && n > 1 {
			page = n
		}
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("search", query.Term)
	params.Set("filter", "open_access.is_oa:true,has_fulltext:true")
	params.Set("page", strconv.Itoa(page))
	params.Set("per-page", strconv.Itoa(query.PageSize))
	if o.mailto != "" {
		params.Set("mailto", o.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/works?%s", o.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: works returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var result openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]models.Item, 0, len(result.Results))
	for _, work := range result.Results {
		item, ok := o.mapWork(work)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	hasMore := result.Meta.NextPage != nil && *result.Meta.NextPage > page
	pageResult := &models.Page{Items: items, HasMore: hasMore, Source: SourceOpenAlex}
	if hasMore {
		pageResult.NextPageToken = strconv.Itoa(page + 1)
	}
	return pageResult, nil
}

// mapWork normalizes a work, reporting ok=false when no PDF URL can be
// derived. The primary location is preferred over the alternates; a landing
// page counts only when the URL itself ends in ".pdf".
func (o *OpenAlexService) mapWork(work openAlexWork) (models.Item, bool) {
	locations := make([]openAlexLocation, 0, len(work.Locations)+1)
	if work.PrimaryLocation != nil {
		locations = append(locations, *work.PrimaryLocation)
	}
	locations = append(locations, work.Locations...)

	var pdfURL string
	for _, loc := range locations {
		if loc.PDFURL != "" {
			pdfURL = loc.PDFURL
			break
		}
	}
	if pdfURL == "" {
		for _, loc := range locations {
			if strings.HasSuffix(strings.ToLower(loc.LandingPageURL), ".pdf") {
				pdfURL = loc.LandingPageURL
				break
			}
		}
	}
	if !strings.HasSuffix(strings.ToLower(pdfURL), ".pdf") {
		return models.Item{}, false
	}

	name := work.DisplayName
	if name == "" {
		name = "Untitled"
	}
	if !strings.HasSuffix(name, ".pdf") {
		name += ".pdf"
	}

	id := work.ID
	if id == "" {
		id = shared.GenerateID()
	}

	return models.Item{
		ItemID:    id,
		Kind:      models.KindDocument,
		Source:    SourceOpenAlex,
		Title:     name,
		Extension: "pdf",
		URL:       pdfURL,
	}, true
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
	"golang.org/x/time/rate"
)

// SourceGitHub is the name repository file listings report.
const SourceGitHub = "github"

// GitHubService lists the files of a repository directory via the contents
// API. The listing is not paged upstream; one fetch returns the whole
// directory and downstream paging is done locally.
type GitHubService struct {
	conf    shared.GitHubConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewGitHubService creates a repository contents gateway from config.
func NewGitHubService(conf shared.GitHubConfig, client *http.Client, logger *log.Logger) *GitHubService {
	conf.BaseURL = strings.TrimRight(conf.BaseURL, "/")
	return &GitHubService{
		conf:    conf,
		client:  client,
		limiter: newLimiter(5),
		logger:  logger,
	}
}

func (g *GitHubService) Name() string          { return SourceGitHub }
func (g *GitHubService) Kind() models.ItemKind { return models.KindDocument }

type githubEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int64  `json:"size"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
	HTMLURL     string `json:"html_url"`
}

// Fetch lists the configured directory. The query's term and cursor are
// ignored; the contents endpoint has neither.
func (g *GitHubService) Fetch(ctx context.Context, query models.Query) (*models.Page, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		g.conf.BaseURL, g.conf.Owner, g.conf.Repo, g.conf.Path)
	if g.conf.Ref != "" {
		endpoint += "?ref=" + url.QueryEscape(g.conf.Ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: contents returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var entries []githubEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]models.Item, 0, len(entries))
	for _, entry := range entries {
		if entry.Type != "file" {
			continue
		}
		items = append(items, g.mapEntry(entry))
	}

	return &models.Page{Items: items, HasMore: false, Source: SourceGitHub}, nil
}

func (g *GitHubService) mapEntry(entry githubEntry) models.Item {
	name := entry.Name
	if name == "" {
		name = "Untitled"
	}

	ext := "file"
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		ext = strings.ToLower(name[idx+1:])
	}

	id := entry.SHA
	if id == "" {
		id = entry.Path
	}
	if id == "" {
		id = shared.GenerateID()
	}

	link := entry.DownloadURL
	if link == "" {
		link = entry.HTMLURL
	}

	return models.Item{
		ItemID:    id,
		Kind:      models.KindDocument,
		Source:    SourceGitHub,
		Title:     name,
		Extension: ext,
		SizeLabel: shared.FormatKB(entry.Size),
		URL:       link,
	}
}

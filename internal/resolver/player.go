package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

// defaultPlayerURL is the public player endpoint queried for stream data.
const defaultPlayerURL = "https://www.youtube.com/youtubei/v1/player"

// PlayerClient fetches stream formats from the player endpoint. It implements
// [FormatFetcher].
type PlayerClient struct {
	playerURL string
	client    *http.Client
	logger    *log.Logger
}

// NewPlayerClient builds a format fetcher. An empty playerURL selects the
// default endpoint.
func NewPlayerClient(playerURL string, client *http.Client, logger *log.Logger) *PlayerClient {
	if playerURL == "" {
		playerURL = defaultPlayerURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PlayerClient{playerURL: playerURL, client: client, logger: logger}
}

type playerFormat struct {
	Itag          int    `json:"itag"`
	URL           string `json:"url"`
	MIMEType      string `json:"mimeType"`
	QualityLabel  string `json:"qualityLabel"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	AudioChannels int    `json:"audioChannels"`
	AudioQuality  string `json:"audioQuality"`
}

type playerResponse struct {
	StreamingData struct {
		Formats         []playerFormat `json:"formats"`
		AdaptiveFormats []playerFormat `json:"adaptiveFormats"`
		HLSManifestURL  string         `json:"hlsManifestUrl"`
	} `json:"streamingData"`
}

// Formats lists every stream variant the player reports for a video,
// including a synthetic entry for the HLS manifest when one is offered.
func (p *PlayerClient) Formats(ctx context.Context, videoID string) ([]models.Format, error) {
	payload := map[string]any{
		"videoId": videoID,
		"context": map[string]any{
			"client": map[string]any{
				"clientName":    "ANDROID",
				"clientVersion": "19.09.37",
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.playerURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: player returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var result playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	data := result.StreamingData
	formats := make([]models.Format, 0, len(data.Formats)+len(data.AdaptiveFormats)+1)
	for _, f := range data.Formats {
		formats = append(formats, mapFormat(f))
	}
	for _, f := range data.AdaptiveFormats {
		formats = append(formats, mapFormat(f))
	}
	if data.HLSManifestURL != "" {
		formats = append(formats, models.Format{
			URL:      data.HLSManifestURL,
			MIMEType: "application/x-mpegURL",
			IsHLS:    true,
			HasAudio: true,
			HasVideo: true,
		})
	}

	p.logger.Debug("fetched formats", "video", videoID, "count", len(formats))
	return formats, nil
}

func mapFormat(f playerFormat) models.Format {
	return models.Format{
		Itag:          f.Itag,
		URL:           f.URL,
		MIMEType:      f.MIMEType,
		QualityLabel:  f.QualityLabel,
		Width:         f.Width,
		Height:        f.Height,
		AudioChannels: f.AudioChannels,
		AudioQuality:  f.AudioQuality,
	}
}

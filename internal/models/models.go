package models

import (
	"fmt"
	"time"
)

// ItemKind distinguishes the two feed item shapes.
type ItemKind string

const (
	KindVideo    ItemKind = "video"
	KindDocument ItemKind = "document"
)

// Item is a single feed entry normalized from a provider response. Video
// entries populate Channel and Thumbnail; document entries populate Extension
// and SizeLabel. URL is the watch page for videos and the download target for
// documents.
type Item struct {
	ItemID    string   `json:"id"`
	Kind      ItemKind `json:"kind"`
	Source    string   `json:"source"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Channel   string   `json:"channel,omitempty"`
	Extension string   `json:"extension,omitempty"`
	SizeLabel string   `json:"size_label,omitempty"`

	Sequence int       `json:"-"`
	Created  time.Time `json:"-"`
	Updated  time.Time `json:"-"`
}

func (i *Item) ID() string           { return i.ItemID }
func (i *Item) CreatedAt() time.Time { return i.Created }
func (i *Item) UpdatedAt() time.Time { return i.Updated }

func (i *Item) Validate() error {
	if i.ItemID == "" {
		return fmt.Errorf("item id is required")
	}
	if i.Kind != KindVideo && i.Kind != KindDocument {
		return fmt.Errorf("unknown item kind %q", i.Kind)
	}
	if i.Title == "" {
		return fmt.Errorf("item title is required")
	}
	return nil
}

// Page is one fetched page of feed items plus the cursor state needed to
// request the next one.
type Page struct {
	Items         []Item `json:"items"`
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
	Source        string `json:"source"`
	Reason        string `json:"reason,omitempty"`
}

// Query carries the request parameters a source needs to produce a page.
// PageToken is the cursor returned by the previous page; sources that page by
// number encode the page number as the token.
type Query struct {
	Term      string
	PageSize  int
	PageToken string
}

// User is the authenticated account as reported by the identity provider.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Format is a single playable stream variant reported by the player endpoint.
// Provider payloads are sparse, so most fields may be zero; the resolver's
// predicates derive audio/video presence and height from whatever is present.
type Format struct {
	Itag          int    `json:"itag,omitempty"`
	URL           string `json:"url"`
	MIMEType      string `json:"mime_type,omitempty"`
	QualityLabel  string `json:"quality_label,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	AudioChannels int    `json:"audio_channels,omitempty"`
	AudioQuality  string `json:"audio_quality,omitempty"`
	HasAudio      bool   `json:"has_audio,omitempty"`
	HasVideo      bool   `json:"has_video,omitempty"`
	IsHLS         bool   `json:"is_hls,omitempty"`
}

// StreamInfo is the resolved playback target for a video id.
type StreamInfo struct {
	VideoID  string `json:"video_id"`
	URL      string `json:"url"`
	MIMEType string `json:"mime_type,omitempty"`
	Height   int    `json:"height,omitempty"`
	Itag     int    `json:"itag,omitempty"`
	IsHLS    bool   `json:"is_hls"`
}

// Model is the base interface for persisted records.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository defines data access operations for a model type.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

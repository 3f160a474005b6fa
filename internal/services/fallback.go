package services

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

// ReasonQuotaFallback annotates pages served by the popular listing after a
// quota rejection on search.
const ReasonQuotaFallback = "quota_exceeded_fallback_to_popular"

// VideoFeed wraps the video gateway with the feed recovery policy: a quota
// rejection on search falls back to the popular listing, and any remaining
// failure falls back to the sample set. Feed loads therefore never surface a
// hard error to the caller.
type VideoFeed struct {
	youtube *YouTubeService
	sample  SampleSource
	logger  *log.Logger
}

// NewVideoFeed builds the recovering video source.
func NewVideoFeed(youtube *YouTubeService, logger *log.Logger) *VideoFeed {
	return &VideoFeed{youtube: youtube, logger: logger}
}

func (f *VideoFeed) Name() string          { return f.youtube.Name() }
func (f *VideoFeed) Kind() models.ItemKind { return models.KindVideo }

// Fetch searches, applying the fallback chain on failure.
func (f *VideoFeed) Fetch(ctx context.Context, query models.Query) (*models.Page, error) {
	page, err := f.youtube.Fetch(ctx, query)
	if err == nil {
		return page, nil
	}

	if errors.Is(err, shared.ErrQuotaExceeded) {
		f.logger.Warn("search quota exceeded, serving popular listing")
		popular, popErr := f.youtube.Popular(ctx, query)
		if popErr == nil {
			popular.Reason = ReasonQuotaFallback
			return popular, nil
		}
		err = popErr
	}

	// Context cancellation is the caller's doing, not an outage.
	if ctx.Err() != nil {
		return nil, err
	}

	f.logger.Warn("video feed unavailable, serving sample items", "error", err)
	page, _ = f.sample.Fetch(ctx, query)
	page.Reason = err.Error()
	return page, nil
}

package services

import (
	"context"

	"github.com/desertthunder/vdx/internal/models"
)

// SourceSample is the name offline fallback pages report.
const SourceSample = "sample"

// sampleItems is the canned result set served when every network source has
// failed, so a feed never renders empty because of an outage.
var sampleItems = []models.Item{
	{
		ItemID:    "f8Z9JyB2EIE",
		Kind:      models.KindVideo,
		Source:    SourceSample,
		Title:     "React Native Course for Beginners in 2025 | Build a Full Stack React Native App",
		Thumbnail: "https://i.ytimg.com/vi/f8Z9JyB2EIE/hqdefault.jpg",
		URL:       "https://www.youtube.com/watch?v=f8Z9JyB2EIE",
	},
}

// SampleSource serves the canned items. It never fails and never has more
// pages.
type SampleSource struct{}

func (SampleSource) Name() string          { return SourceSample }
func (SampleSource) Kind() models.ItemKind { return models.KindVideo }

func (SampleSource) Fetch(ctx context.Context, query models.Query) (*models.Page, error) {
	items := make([]models.Item, len(sampleItems))
	copy(items, sampleItems)
	return &models.Page{Items: items, HasMore: false, Source: SourceSample}, nil
}

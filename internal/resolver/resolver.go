// Package resolver turns a video URL or raw ID into a directly playable
// stream by fetching the available formats and choosing the best muxed one.
package resolver

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
)

var (
	idPattern       = regexp.MustCompile(`^[\w-]{11}$`)
	queryParamRe    = regexp.MustCompile(`[?&]v=([^&]+)`)
	shortLinkRe     = regexp.MustCompile(`youtu\.be/([^?]+)`)
	qualityHeightRe = regexp.MustCompile(`(\d+)p`)
)

// ExtractID pulls the 11-character video ID out of a URL or returns a raw ID
// unchanged. Fails with [shared.ErrInvalidID] when nothing matches.
func ExtractID(idOrURL string) (string, error) {
	s := strings.TrimSpace(idOrURL)
	if s == "" {
		return "", shared.ErrInvalidID
	}
	if idPattern.MatchString(s) {
		return s, nil
	}
	if m := queryParamRe.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	if m := shortLinkRe.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	return "", shared.ErrInvalidID
}

// isHLS reports whether the format is an HLS stream, by flag, MIME type, or a
// manifest URL.
func isHLS(f models.Format) bool {
	return f.IsHLS ||
		strings.Contains(f.MIMEType, "application/x-mpegURL") ||
		strings.Contains(f.URL, ".m3u8")
}

func isMP4(f models.Format) bool {
	return strings.Contains(f.MIMEType, "video/mp4")
}

// hasAudio is satisfied by any audio signal: channel count, a quality field,
// or an explicit flag. Adaptive formats may be video-only.
func hasAudio(f models.Format) bool {
	return f.AudioChannels > 0 || f.AudioQuality != "" || f.HasAudio
}

func hasVideo(f models.Format) bool {
	return f.QualityLabel != "" || f.Width > 0 || f.Height > 0 || f.HasVideo
}

// formatHeight reads the explicit height or parses it from a "720p" style
// quality label. Unparseable labels yield 0.
func formatHeight(f models.Format) int {
	if f.Height > 0 {
		return f.Height
	}
	if m := qualityHeightRe.FindStringSubmatch(f.QualityLabel); m != nil {
		if h, err := strconv.Atoi(m[1]); err == nil {
			return h
		}
	}
	return 0
}

// chooseBestPlayable picks the best muxed format:
//  1. an HLS stream at or above minHeight, when HLS is preferred
//  2. the tallest progressive MP4
//  3. the tallest muxed format of any type
//
// Returns nil when nothing is muxed.
func chooseBestPlayable(formats []models.Format, preferHLS bool, minHeight int) *models.Format {
	var muxed []models.Format
	for _, f := range formats {
		if hasAudio(f) && hasVideo(f) {
			muxed = append(muxed, f)
		}
	}
	sort.SliceStable(muxed, func(i, j int) bool {
		return formatHeight(muxed[i]) > formatHeight(muxed[j])
	})

	if preferHLS {
		for _, f := range muxed {
			if isHLS(f) && formatHeight(f) >= minHeight {
				candidate := f
				return &candidate
			}
		}
	}

	for _, f := range muxed {
		if isMP4(f) {
			candidate := f
			return &candidate
		}
	}

	if len(muxed) > 0 {
		candidate := muxed[0]
		return &candidate
	}
	return nil
}

// FormatFetcher lists the stream formats available for a video ID.
type FormatFetcher interface {
	Formats(ctx context.Context, videoID string) ([]models.Format, error)
}

// Resolver resolves playable streams through a format fetcher.
type Resolver struct {
	fetcher   FormatFetcher
	preferHLS bool
	minHeight int
	logger    *log.Logger
}

// New builds a resolver with the given preferences.
func New(fetcher FormatFetcher, conf shared.ResolverConfig, logger *log.Logger) *Resolver {
	minHeight := conf.MinHeight
	if minHeight <= 0 {
		minHeight = 360
	}
	return &Resolver{fetcher: fetcher, preferHLS: conf.PreferHLS, minHeight: minHeight, logger: logger}
}

// Resolve returns the playback target for a video URL or raw ID.
//
// When the first selection pass yields no usable URL, a second pass runs with
// inverted HLS preference and a floor of 144p before giving up with
// [shared.ErrNoPlayableFormat].
func (r *Resolver) Resolve(ctx context.Context, idOrURL string) (*models.StreamInfo, error) {
	id, err := ExtractID(idOrURL)
	if err != nil {
		return nil, err
	}

	formats, err := r.fetcher.Formats(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(formats) == 0 {
		return nil, shared.ErrNoFormats
	}

	chosen := chooseBestPlayable(formats, r.preferHLS, r.minHeight)
	if chosen == nil || chosen.URL == "" {
		r.logger.Debug("first selection pass failed, relaxing preferences", "video", id)
		chosen = chooseBestPlayable(formats, !r.preferHLS, 144)
	}
	if chosen == nil || chosen.URL == "" {
		return nil, shared.ErrNoPlayableFormat
	}

	return &models.StreamInfo{
		VideoID:  id,
		URL:      chosen.URL,
		IsHLS:    isHLS(*chosen),
		Height:   formatHeight(*chosen),
		MIMEType: chosen.MIMEType,
		Itag:     chosen.Itag,
	}, nil
}

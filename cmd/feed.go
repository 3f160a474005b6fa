package main

import (
	"context"

	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/services"
	"github.com/urfave/cli/v3"
)

// FeedVideos searches the video feed.
func (r *Runner) FeedVideos(ctx context.Context, cmd *cli.Command) error {
	return r.fetchAndPrint(ctx, cmd, r.ensureVideos(ctx), cmd.StringArg("query"))
}

// FeedPopular lists the popular video chart directly, bypassing search.
func (r *Runner) FeedPopular(ctx context.Context, cmd *cli.Command) error {
	page, err := r.ensureYouTube(ctx).Popular(ctx, r.buildQuery(cmd, ""))
	if err != nil {
		return err
	}
	return r.printPage(cmd, page)
}

// FeedPexels searches the stock video catalog.
func (r *Runner) FeedPexels(ctx context.Context, cmd *cli.Command) error {
	return r.fetchAndPrint(ctx, cmd, r.ensurePexels(ctx), cmd.StringArg("query"))
}

// FeedDocs searches open-access papers.
func (r *Runner) FeedDocs(ctx context.Context, cmd *cli.Command) error {
	return r.fetchAndPrint(ctx, cmd, r.ensureDocs(ctx), cmd.StringArg("query"))
}

// FeedFiles lists the configured repository directory.
func (r *Runner) FeedFiles(ctx context.Context, cmd *cli.Command) error {
	return r.fetchAndPrint(ctx, cmd, r.ensureFiles(ctx), "")
}

func (r *Runner) buildQuery(cmd *cli.Command, term string) models.Query {
	if term == "" {
		term = r.config.Feed.DefaultQuery
	}
	size := cmd.Int("limit")
	if size <= 0 {
		size = r.config.Feed.VideoPageSize
	}
	return models.Query{Term: term, PageSize: size, PageToken: cmd.String("page")}
}

func (r *Runner) fetchAndPrint(ctx context.Context, cmd *cli.Command, source services.Source, term string) error {
	page, err := source.Fetch(ctx, r.buildQuery(cmd, term))
	if err != nil {
		return err
	}
	return r.printPage(cmd, page)
}

func (r *Runner) printPage(cmd *cli.Command, page *models.Page) error {
	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlainHeader(page.Source)
	if page.Reason != "" {
		r.writePlain("⚠ degraded: %s\n", page.Reason)
	}

	for i, item := range page.Items {
		r.writePlain("%2d. %s\n", i+1, item.Title)
		switch {
		case item.Kind == models.KindDocument && item.SizeLabel != "":
			r.writePlain("    %s (%s, %s)\n", item.URL, item.Extension, item.SizeLabel)
		case item.Kind == models.KindDocument:
			r.writePlain("    %s (%s)\n", item.URL, item.Extension)
		case item.Channel != "":
			r.writePlain("    %s (%s)\n", item.URL, item.Channel)
		default:
			r.writePlain("    %s\n", item.URL)
		}
	}

	if len(page.Items) == 0 {
		r.writePlain("no results\n")
	}
	if page.HasMore && page.NextPageToken != "" {
		r.writePlain("\nnext page: --page %s\n", page.NextPageToken)
	}
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vdx/internal/formatter"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export fetches a feed (or reads the local cache) and writes it to a file in
// the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	source := cmd.String("source")

	var title string
	var items []models.Item
	var err error

	switch source {
	case "videos":
		title = "Video Feed"
		items, err = r.fetchExportItems(ctx, cmd, r.ensureVideos(ctx).Fetch)
	case "popular":
		title = "Popular Videos"
		items, err = r.fetchExportItems(ctx, cmd, r.ensureYouTube(ctx).Popular)
	case "pexels":
		title = "Stock Videos"
		items, err = r.fetchExportItems(ctx, cmd, r.ensurePexels(ctx).Fetch)
	case "docs":
		title = "Open Access Papers"
		items, err = r.fetchExportItems(ctx, cmd, r.ensureDocs(ctx).Fetch)
	case "files":
		title = "Repository Files"
		items, err = r.fetchExportItems(ctx, cmd, r.ensureFiles(ctx).Fetch)
	case "cache":
		title = "Cached Items"
		items, err = r.cachedExportItems()
	default:
		return fmt.Errorf("%w: unknown source %q", shared.ErrInvalidArgument, source)
	}
	if err != nil {
		return err
	}

	export := &formatter.Export{Title: title, Items: items}
	path, err := formatter.WriteExport(export, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("export written", "path", path, "items", len(items))
	r.writePlain("✓ Exported %d item(s) to %s\n", len(items), path)
	return nil
}

type fetchFunc func(ctx context.Context, query models.Query) (*models.Page, error)

func (r *Runner) fetchExportItems(ctx context.Context, cmd *cli.Command, fetch fetchFunc) ([]models.Item, error) {
	query := models.Query{Term: cmd.String("query"), PageSize: cmd.Int("limit")}
	if query.Term == "" {
		query.Term = r.config.Feed.DefaultQuery
	}
	if query.PageSize <= 0 {
		query.PageSize = r.config.Feed.VideoPageSize
	}

	page, err := fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (r *Runner) cachedExportItems() ([]models.Item, error) {
	repo, err := r.ensureItems()
	if err != nil {
		return nil, err
	}

	cached, err := repo.List(nil)
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(cached))
	for _, item := range cached {
		items = append(items, *item)
	}
	return items, nil
}

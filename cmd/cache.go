package main

import (
	"context"

	"github.com/desertthunder/vdx/internal/feed"
	"github.com/desertthunder/vdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CacheList prints locally cached feed items, optionally filtered by kind or
// source.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.ensureItems()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if kind := cmd.String("kind"); kind != "" {
		criteria["kind"] = kind
	}
	if source := cmd.String("source"); source != "" {
		criteria["source"] = source
	}

	items, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}

	r.writePlainHeader("Cached Items")
	for _, item := range items {
		r.writePlain("%3d. [%s/%s] %s\n", item.Sequence, item.Kind, item.Source, item.Title)
	}
	if len(items) == 0 {
		r.writePlain("cache is empty\n")
	}
	return nil
}

// CacheRefresh refreshes every feed concurrently and caches the results.
func (r *Runner) CacheRefresh(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return err
	}

	term := cmd.String("query")
	if term == "" {
		term = r.config.Feed.DefaultQuery
	}

	feeds := map[string]tasks.Feed{
		"videos":    feed.NewPager(r.ensureVideos(ctx), term, r.config.Feed.VideoPageSize, r.logger),
		"documents": feed.NewPager(r.ensureDocs(ctx), term, r.config.Feed.DocPageSize, r.logger),
		"files":     feed.NewLocalPager(r.ensureFiles(ctx), term, r.config.Feed.DocPageSize, r.logger),
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
		}
	}()

	results := engine.RefreshAll(ctx, progress, feeds)
	close(progress)
	<-done

	r.writePlainHeader("Feed Refresh")
	for _, result := range results {
		if result.Error != nil {
			r.writePlain("✗ %s: %v\n", result.Name, result.Error)
		} else {
			r.writePlain("✓ %s: %d item(s) cached\n", result.Name, result.Count)
		}
	}
	return nil
}

// CacheClear deletes all cached items and resets the feed ordering.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.ensureItems()
	if err != nil {
		return err
	}

	if err := repo.Clear(); err != nil {
		return err
	}

	r.writePlain("✓ Cache cleared\n")
	return nil
}

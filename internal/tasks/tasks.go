package tasks

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/resolver"
)

// Feed is the subset of a pagination controller the engine drives.
type Feed interface {
	Refresh(ctx context.Context) error
	Items() []models.Item
}

// ItemCacher persists fetched items for offline listing.
type ItemCacher interface {
	SaveAll(items []models.Item) error
}

// FeedEngine orchestrates multi-feed refreshes and bulk stream resolution.
type FeedEngine struct {
	resolver *resolver.Resolver
	cache    ItemCacher
	logger   *log.Logger
}

// NewFeedEngine creates an engine. The cache may be nil, in which case
// refreshed items are not persisted.
func NewFeedEngine(r *resolver.Resolver, cache ItemCacher, logger *log.Logger) *FeedEngine {
	return &FeedEngine{resolver: r, cache: cache, logger: logger}
}

// RefreshResult reports one feed's refresh outcome.
type RefreshResult struct {
	Name  string
	Count int
	Error error
}

// RefreshAll refreshes every named feed concurrently and waits for all of
// them to settle. Feeds own disjoint state, so they are safe to refresh in
// parallel. When a cache is configured, each refreshed feed's items are
// persisted after its refresh completes.
func (e *FeedEngine) RefreshAll(ctx context.Context, prog chan<- ProgressUpdate, feeds map[string]Feed) []RefreshResult {
	total := len(feeds)
	results := make([]RefreshResult, 0, total)

	var wg sync.WaitGroup
	resultCh := make(chan RefreshResult, total)

	step := 0
	for name, feed := range feeds {
		step++
		e.sendProgress(prog, refreshFeedUpdate(step, total, name))

		wg.Add(1)
		go func(name string, feed Feed) {
			defer wg.Done()

			err := feed.Refresh(ctx)
			result := RefreshResult{Name: name, Error: err}
			if err == nil {
				items := feed.Items()
				result.Count = len(items)
				if e.cache != nil {
					if cacheErr := e.cache.SaveAll(items); cacheErr != nil {
						e.logger.Warn("failed to cache refreshed items", "feed", name, "error", cacheErr)
					} else {
						e.sendProgress(prog, cacheItemsUpdate(len(items), name))
					}
				}
			}
			resultCh <- result
		}(name, feed)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	step = 0
	for result := range resultCh {
		step++
		e.sendProgress(prog, refreshDoneUpdate(step, total, result.Name, result.Error))
		results = append(results, result)
	}
	return results
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *FeedEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

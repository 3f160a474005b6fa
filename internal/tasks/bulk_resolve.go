package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/vdx/internal/formatter"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkResolveOpts contains configuration for bulk stream resolution.
type BulkResolveOpts struct {
	NumWorkers int     // Concurrent workers (default: 5, capped at 10)
	RateLimit  float64 // Requests per second (default: 5)
	Format     string  // Optional manifest format: json, csv, markdown, txt
	OutputFile string  // Manifest base path (default: resolved_streams)
}

// ResolveResult is the outcome for a single video.
type ResolveResult struct {
	VideoID string
	Stream  *models.StreamInfo
	Success bool
	Error   error
}

// BulkResolveResult aggregates a bulk resolution run.
type BulkResolveResult struct {
	Total        int
	SuccessCount int
	FailedCount  int
	Results      []ResolveResult
	OutputFile   string
}

// BulkResolve resolves playable streams for multiple videos concurrently with
// rate limiting and progress tracking.
//
// A worker pool drains the ID list while a shared limiter spaces out player
// requests. Partial failures are collected per video rather than aborting the
// run; when a format is configured the successful streams are written out as
// a manifest afterwards.
func (e *FeedEngine) BulkResolve(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkResolveOpts) (*BulkResolveResult, error) {
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: resolver not configured", shared.ErrSourceUnavailable)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no video ids given", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan string, len(ids))
	resultCh := make(chan ResolveResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					resultCh <- ResolveResult{VideoID: id, Error: err}
					continue
				}
				stream, err := e.resolver.Resolve(ctx, id)
				resultCh <- ResolveResult{VideoID: id, Stream: stream, Success: err == nil, Error: err}
			}
		}()
	}

	for i, id := range ids {
		e.sendProgress(prog, resolvingUpdate(i+1, len(ids), id))
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	result := &BulkResolveResult{Total: len(ids), Results: make([]ResolveResult, 0, len(ids))}
	step := 0
	for res := range resultCh {
		step++
		if res.Success {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
		e.sendProgress(prog, resolveDoneUpdate(step, len(ids), res))
		result.Results = append(result.Results, res)
	}

	if opts.Format != "" {
		filename, err := e.writeManifest(result, opts)
		if err != nil {
			return result, err
		}
		result.OutputFile = filename
		e.sendProgress(prog, exportListingUpdate(filename))
	}

	return result, nil
}

// writeManifest renders the successfully resolved streams as a listing.
func (e *FeedEngine) writeManifest(result *BulkResolveResult, opts BulkResolveOpts) (string, error) {
	base := opts.OutputFile
	if base == "" {
		base = "resolved_streams"
	}

	items := make([]models.Item, 0, result.SuccessCount)
	for _, res := range result.Results {
		if !res.Success {
			continue
		}
		items = append(items, models.Item{
			ItemID: res.VideoID,
			Kind:   models.KindVideo,
			Source: "resolved",
			Title:  fmt.Sprintf("%s (%dp)", res.VideoID, res.Stream.Height),
			URL:    res.Stream.URL,
		})
	}

	export := &formatter.Export{Title: "Resolved Streams", Items: items}
	return formatter.WriteExport(export, opts.Format, base)
}

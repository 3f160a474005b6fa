package feed

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/services"
)

// LocalPager pages over a source that returns its whole result set in one
// fetch, such as a repository file listing. Fetch-more re-slices the
// in-memory set with a larger window instead of issuing a network call.
type LocalPager struct {
	source services.Source
	term   string
	size   int
	logger *log.Logger

	mu         sync.Mutex
	all        []models.Item
	multiplier int
	loading    bool
	closed     bool
}

// NewLocalPager builds a locally-sliced controller over the source.
func NewLocalPager(source services.Source, term string, size int, logger *log.Logger) *LocalPager {
	return &LocalPager{source: source, term: term, size: size, logger: logger}
}

// FetchFirst loads the full set and resets the window to one page.
func (p *LocalPager) FetchFirst(ctx context.Context) error {
	p.mu.Lock()
	if p.loading || p.closed {
		p.mu.Unlock()
		return nil
	}
	p.loading = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
	}()

	page, err := p.source.Fetch(ctx, models.Query{Term: p.term, PageSize: p.size})
	if err != nil {
		p.logger.Warn("fetch failed", "source", p.source.Name(), "error", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.all = page.Items
	p.multiplier = 1
	return nil
}

// FetchMore widens the visible window by one page. No network call is made.
func (p *LocalPager) FetchMore(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.loading || !p.hasMoreLocked() {
		return nil
	}
	p.multiplier++
	return nil
}

// Refresh re-fetches the full set.
func (p *LocalPager) Refresh(ctx context.Context) error {
	return p.FetchFirst(ctx)
}

// Close marks the pager dead.
func (p *LocalPager) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Items returns the visible slice of the fetched set.
func (p *LocalPager) Items() []models.Item {
	p.mu.Lock()
	defer p.mu.Unlock()

	window := p.multiplier * p.size
	if window > len(p.all) {
		window = len(p.all)
	}
	items := make([]models.Item, window)
	copy(items, p.all[:window])
	return items
}

// HasMore reports whether the window has not yet covered the whole set.
func (p *LocalPager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMoreLocked()
}

func (p *LocalPager) hasMoreLocked() bool {
	return p.multiplier > 0 && p.multiplier*p.size < len(p.all)
}

// Reason always returns the empty string; local pagers never degrade.
func (p *LocalPager) Reason() string {
	return ""
}

// Loading reports whether a fetch is in flight.
func (p *LocalPager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Package feed implements the pagination controllers that accumulate pages
// from a content source into an ordered item list. A [Pager] pages through
// the source itself; a [LocalPager] fetches the whole set once and pages
// locally. Neither is driven by more than one goroutine at a time per
// operation, but all exported methods are safe for concurrent use and an
// in-flight guard collapses overlapping fetch-more calls into one request.
package feed

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vdx/internal/models"
	"github.com/desertthunder/vdx/internal/services"
)

// Pager accumulates pages from a token- or number-cursored source.
type Pager struct {
	source services.Source
	term   string
	size   int
	logger *log.Logger

	mu           sync.Mutex
	items        []models.Item
	cursor       string
	hasMore      bool
	reason       string
	loadingFirst bool
	loadingMore  bool
	refreshing   bool
	closed       bool
}

// NewPager builds a controller over the source for a fixed query term and
// page size.
func NewPager(source services.Source, term string, size int, logger *log.Logger) *Pager {
	return &Pager{source: source, term: term, size: size, logger: logger}
}

// FetchFirst loads the first page, replacing any accumulated items. Calling
// it again replaces rather than appends. Concurrent calls collapse into one
// request.
func (p *Pager) FetchFirst(ctx context.Context) error {
	p.mu.Lock()
	if p.loadingFirst || p.closed {
		p.mu.Unlock()
		return nil
	}
	p.loadingFirst = true
	p.mu.Unlock()

	defer p.clearFlag(&p.loadingFirst)

	page, err := p.source.Fetch(ctx, models.Query{Term: p.term, PageSize: p.size})
	if err != nil {
		p.logger.Warn("first page failed", "source", p.source.Name(), "error", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.items = page.Items
	p.cursor = page.NextPageToken
	p.hasMore = page.HasMore
	p.reason = page.Reason
	return nil
}

// FetchMore appends the next page. It is a no-op when there is nothing more
// to load or another fetch is already in flight, so issuing it twice before
// the first resolves produces exactly one request. A failed fetch leaves the
// cursor and hasMore unchanged for a later retry.
func (p *Pager) FetchMore(ctx context.Context) error {
	p.mu.Lock()
	if !p.hasMore || p.loadingFirst || p.loadingMore || p.refreshing || p.closed {
		p.mu.Unlock()
		return nil
	}
	p.loadingMore = true
	cursor := p.cursor
	p.mu.Unlock()

	defer p.clearFlag(&p.loadingMore)

	page, err := p.source.Fetch(ctx, models.Query{Term: p.term, PageSize: p.size, PageToken: cursor})
	if err != nil {
		p.logger.Warn("next page failed", "source", p.source.Name(), "error", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.items = append(p.items, page.Items...)
	p.cursor = page.NextPageToken
	p.hasMore = page.HasMore
	p.reason = page.Reason
	return nil
}

// Refresh resets the cursor before reloading the first page, guaranteeing a
// full replace rather than an append.
func (p *Pager) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if p.refreshing || p.closed {
		p.mu.Unlock()
		return nil
	}
	p.refreshing = true
	p.cursor = ""
	p.hasMore = false
	p.mu.Unlock()

	defer p.clearFlag(&p.refreshing)
	return p.FetchFirst(ctx)
}

// Close marks the pager dead. Results from requests still in flight are
// discarded and further fetch calls become no-ops.
func (p *Pager) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Items returns a copy of the accumulated items.
func (p *Pager) Items() []models.Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]models.Item, len(p.items))
	copy(items, p.items)
	return items
}

// HasMore reports whether another page can be fetched.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Reason returns the diagnostic annotation from the most recent page, if any.
func (p *Pager) Reason() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

// Loading reports whether any fetch is in flight.
func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadingFirst || p.loadingMore || p.refreshing
}

func (p *Pager) clearFlag(flag *bool) {
	p.mu.Lock()
	*flag = false
	p.mu.Unlock()
}

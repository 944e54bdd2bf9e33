// Package pagination drives backward history loading. Pages count
// backward from the newest: page 1 is the most recent window, and the
// controller walks toward totalPages as the user scrolls up.
package pagination

import (
	"context"

	"go-chat-client/internal/model"
)

// Fetcher loads one history page and returns its messages together
// with the server's current totalPages.
type Fetcher func(ctx context.Context, page, limit int) ([]model.Message, int, error)

// Controller is a two-state machine, Idle <-> Loading. The single
// loading flag coalesces rapid scroll events into at most one in-flight
// fetch. A failed fetch returns to Idle without advancing the cursor
// and without touching hasMore, so the next scroll-to-top retries; the
// error is kept in LastErr for the caller.
type Controller struct {
	page       int
	totalPages int
	hasMore    bool
	loading    bool
	limit      int
	lastErr    error
}

func New(limit int) *Controller {
	return &Controller{limit: limit, page: 1}
}

// Start primes the cursor after the initial (page 1) fetch.
func (c *Controller) Start(totalPages int) {
	c.page = 1
	c.totalPages = totalPages
	c.hasMore = totalPages > 1
	c.loading = false
	c.lastErr = nil
}

func (c *Controller) Page() int       { return c.page }
func (c *Controller) TotalPages() int { return c.totalPages }
func (c *Controller) HasMore() bool   { return c.hasMore }
func (c *Controller) Loading() bool   { return c.loading }
func (c *Controller) LastErr() error  { return c.lastErr }
func (c *Controller) Limit() int      { return c.limit }

// LoadOlder fetches the next older page when the gate passes: the
// viewport must be at the top, more pages must remain and no load may
// be in flight. It returns the fetched messages for the caller to
// prepend, or nil when nothing was loaded. Reaching totalPages turns
// hasMore off for the rest of the session.
func (c *Controller) LoadOlder(ctx context.Context, atTop bool, fetch Fetcher) ([]model.Message, error) {
	if !atTop || !c.hasMore || c.loading {
		return nil, nil
	}

	c.loading = true
	msgs, totalPages, err := fetch(ctx, c.page+1, c.limit)
	c.loading = false

	if err != nil {
		c.lastErr = err
		return nil, err
	}

	c.lastErr = nil
	c.page++
	if totalPages > 0 {
		c.totalPages = totalPages
	}
	if c.page >= c.totalPages {
		c.hasMore = false
	}
	return msgs, nil
}

// Reset returns the controller to its pre-seed state; used when the
// conversation is reopened.
func (c *Controller) Reset() {
	c.page = 1
	c.totalPages = 0
	c.hasMore = false
	c.loading = false
	c.lastErr = nil
}

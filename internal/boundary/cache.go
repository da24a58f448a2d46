// Package boundary caches city boundary polygons for the reader map.
//
// Every distinct (city, country) pair is fetched from the geocoder at most
// once per process. Concurrent lookups of a pair that is still being fetched
// share the single outstanding request. Batch lookups run one request at a
// time with a fixed pause between network calls so a public geocoder's
// one-request-per-second limit is never exceeded by a single batch.
package boundary

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/travel-journal/internal/domain"
	"github.com/couchcryptid/travel-journal/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// DefaultDelay is the pause between network lookups in a batch.
const DefaultDelay = 1100 * time.Millisecond

// Cache resolves and remembers city boundaries. It implements domain.BoundaryLookup.
type Cache struct {
	fetcher domain.BoundaryFetcher
	clock   clockwork.Clock
	delay   time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	results map[string]domain.BoundaryResult
	// inFlight coalesces concurrent fetches of one key.
	inFlight singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the real clock, mainly so tests can drive the batch delay.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithDelay sets the pause between network lookups in LookupAll.
func WithDelay(d time.Duration) Option {
	return func(c *Cache) {
		c.delay = d
	}
}

// New creates an empty cache in front of fetcher.
func New(fetcher domain.BoundaryFetcher, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		clock:   clockwork.NewRealClock(),
		delay:   DefaultDelay,
		metrics: metrics,
		logger:  logger,
		results: make(map[string]domain.BoundaryResult),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the boundary for req, fetching it if this process has never
// resolved it. It never fails: lookup errors resolve to not found. A caller
// whose context ends early gets not found right away, while the fetch keeps
// running for other waiters and still fills the cache.
func (c *Cache) Lookup(ctx context.Context, req domain.BoundaryRequest) domain.BoundaryResult {
	if req.City == "" || req.Country == "" {
		return domain.NotFound()
	}

	key := req.Key()
	if result, ok := c.cached(key); ok {
		c.metrics.BoundaryLookups.WithLabelValues("hit").Inc()
		return result
	}

	c.metrics.BoundaryLookupsPending.Inc()
	defer c.metrics.BoundaryLookupsPending.Dec()

	fetchCtx := context.WithoutCancel(ctx)
	leader := false
	ch := c.inFlight.DoChan(key, func() (any, error) {
		// A fetch for this key may have completed between the check above and
		// joining the group.
		if result, ok := c.cached(key); ok {
			return result, nil
		}
		leader = true
		result := c.fetch(fetchCtx, req)
		c.store(key, result)
		return result, nil
	})

	select {
	case res := <-ch:
		if leader {
			c.metrics.BoundaryLookups.WithLabelValues("miss").Inc()
		} else {
			c.metrics.BoundaryLookups.WithLabelValues("coalesced").Inc()
		}
		return res.Val.(domain.BoundaryResult)
	case <-ctx.Done():
		return domain.NotFound()
	}
}

// LookupAll resolves reqs one at a time, in order, and returns the boundaries
// that were found. Not-found entries are dropped rather than left as gaps.
// Cached entries cost nothing; every network lookup after the first one in
// the batch is preceded by the configured delay.
//
// The batch always runs to completion and fills the cache. If ctx ends first,
// LookupAll returns an empty slice and the remaining lookups continue in the
// background for later callers.
func (c *Cache) LookupAll(ctx context.Context, reqs []domain.BoundaryRequest) []domain.Boundary {
	done := make(chan []domain.Boundary, 1)
	go func() {
		done <- c.runBatch(context.WithoutCancel(ctx), reqs)
	}()

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		c.logger.Debug("boundary batch caller left, finishing in background", "requests", len(reqs))
		return []domain.Boundary{}
	}
}

func (c *Cache) runBatch(ctx context.Context, reqs []domain.BoundaryRequest) []domain.Boundary {
	out := make([]domain.Boundary, 0, len(reqs))
	fetched := false

	for _, req := range reqs {
		result, ok := c.peek(req)
		if !ok {
			if fetched {
				c.pause()
			}
			result = c.Lookup(ctx, req)
			fetched = true
		} else {
			c.metrics.BoundaryLookups.WithLabelValues("hit").Inc()
		}

		if result.Found {
			out = append(out, result.Boundary)
		}
	}
	return out
}

// Len reports how many keys have been resolved.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// Reset forgets every resolved boundary. Fetches already in flight still
// complete and store their result.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[string]domain.BoundaryResult)
	c.metrics.BoundaryCacheEntries.Set(0)
}

// peek reports whether req can be answered without the network.
func (c *Cache) peek(req domain.BoundaryRequest) (domain.BoundaryResult, bool) {
	if req.City == "" || req.Country == "" {
		return domain.NotFound(), true
	}
	return c.cached(req.Key())
}

func (c *Cache) cached(key string) (domain.BoundaryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.results[key]
	return result, ok
}

func (c *Cache) store(key string, result domain.BoundaryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[key] = result
	c.metrics.BoundaryCacheEntries.Set(float64(len(c.results)))
}

func (c *Cache) fetch(ctx context.Context, req domain.BoundaryRequest) domain.BoundaryResult {
	result, err := c.fetcher.FetchBoundary(ctx, req)
	if err != nil {
		c.logger.Warn("boundary lookup failed",
			"city", req.City,
			"country", req.Country,
			"error", err,
		)
		return domain.NotFound()
	}
	if !result.Found {
		c.logger.Debug("no boundary for city", "city", req.City, "country", req.Country)
	}
	return result
}

// pause waits out the batch delay.
func (c *Cache) pause() {
	if c.delay <= 0 {
		return
	}
	<-c.clock.After(c.delay)
}

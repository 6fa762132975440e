package sheets

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultCacheTTL bounds how long a table snapshot is served without refetching.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	rows      []Row
	fetchedAt time.Time
}

// Cache serves tables from memory while they are younger than the TTL.
//
// Entries are keyed by table name only and shared by every caller. Rows returned
// from the cache must be treated as read-only. Concurrent misses for the same
// table may fetch twice; the last completed fetch wins.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// CacheOption customizes a Cache.
type CacheOption func(*Cache)

// WithClock replaces the time source used for TTL checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache wraps fetcher with a TTL cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache(fetcher Fetcher, ttl time.Duration, logger *zap.Logger, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetTable returns the rows of the named table, fetching them when the cached
// snapshot is missing, expired, or forceRefresh is set. A failed fetch leaves
// the previous snapshot in place.
func (c *Cache) GetTable(ctx context.Context, name string, forceRefresh bool) ([]Row, error) {
	if !forceRefresh {
		if rows, ok := c.lookup(name); ok {
			c.logger.Debug("table served from cache", zap.String("table", name), zap.Int("rows", len(rows)))
			return rows, nil
		}
	}

	rows, err := c.fetcher.FetchTable(ctx, name)
	if err != nil {
		var dsErr *DataSourceError
		if errors.As(err, &dsErr) {
			return nil, err
		}
		return nil, &DataSourceError{Table: name, Err: err}
	}

	c.mu.Lock()
	c.entries[name] = cacheEntry{rows: rows, fetchedAt: c.now()}
	c.mu.Unlock()

	c.logger.Debug("table cached",
		zap.String("table", name),
		zap.Int("rows", len(rows)),
		zap.Bool("forced", forceRefresh),
	)

	return rows, nil
}

// Invalidate drops the cached snapshot of the named table.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

func (c *Cache) lookup(name string) ([]Row, bool) {
	c.mu.RLock()
	entry, ok := c.entries[name]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}

	return entry.rows, true
}

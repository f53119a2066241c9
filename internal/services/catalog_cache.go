package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/venuequote/api/internal/domain"
)

// CachedCatalog memoises catalog snapshots for a fixed TTL. When a refresh fails and a
// previous snapshot exists, the stale snapshot keeps being served until the next refresh
// succeeds.
type CachedCatalog struct {
	source CatalogProvider
	ttl    time.Duration
	now    func() time.Time
	logger func(context.Context, string, map[string]any)

	mu       sync.RWMutex
	snapshot domain.CatalogSnapshot
	loaded   bool
	expires  time.Time
}

// CachedCatalogDeps configures NewCachedCatalog. A non-positive TTL disables caching.
type CachedCatalogDeps struct {
	Source CatalogProvider
	TTL    time.Duration
	Now    func() time.Time
	Logger func(context.Context, string, map[string]any)
}

// NewCachedCatalog wraps source with a TTL cache.
func NewCachedCatalog(deps CachedCatalogDeps) (*CachedCatalog, error) {
	if deps.Source == nil {
		return nil, errors.New("catalog cache: source is required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &CachedCatalog{source: deps.Source, ttl: deps.TTL, now: now, logger: logger}, nil
}

// Snapshot returns the cached snapshot or loads a fresh one from the source.
func (c *CachedCatalog) Snapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	if c.ttl > 0 {
		c.mu.RLock()
		snap, fresh := c.snapshot, c.loaded && c.now().Before(c.expires)
		c.mu.RUnlock()
		if fresh {
			return snap, nil
		}
	}

	snap, err := c.source.Snapshot(ctx)
	if err != nil {
		c.mu.RLock()
		stale, loaded := c.snapshot, c.loaded
		c.mu.RUnlock()
		if loaded {
			c.logger(ctx, "catalog.refresh_failed", map[string]any{"error": err.Error(), "servingStale": true})
			return stale, nil
		}
		return domain.CatalogSnapshot{}, err
	}

	c.mu.Lock()
	c.snapshot = snap
	c.loaded = true
	c.expires = c.now().Add(c.ttl)
	c.mu.Unlock()
	return snap, nil
}

// Invalidate drops the cached snapshot so the next call reloads from the source.
func (c *CachedCatalog) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.snapshot = domain.CatalogSnapshot{}
	c.mu.Unlock()
}

// Ready loads a snapshot to prove the catalog source is reachable.
func (c *CachedCatalog) Ready(ctx context.Context) error {
	_, err := c.Snapshot(ctx)
	return err
}

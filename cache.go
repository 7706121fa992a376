package tripengine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/tripengine/content"
)

// CatalogCache keeps the loaded catalog for ttl so the preview server picks
// up edited post files without a restart.
type CatalogCache struct {
	mu      sync.RWMutex
	catalog *content.Catalog
	fetched time.Time
	ttl     time.Duration
	src     content.Source
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewCatalogCache creates a CatalogCache backed by src.
func NewCatalogCache(src content.Source, ttl time.Duration, log *zap.SugaredLogger) *CatalogCache {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CatalogCache{src: src, ttl: ttl, log: log, now: time.Now}
}

func (c *CatalogCache) valid() bool {
	return c.catalog != nil && c.now().Sub(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.catalog = nil
	c.mu.Unlock()
}

// Catalog returns the cached catalog, reloading it when stale. A source
// failure yields an empty catalog; it is cached like any other result.
func (c *CatalogCache) Catalog() *content.Catalog {
	c.mu.RLock()
	if c.valid() {
		cat := c.catalog
		c.mu.RUnlock()
		return cat
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.catalog
	}
	c.catalog = content.LoadCatalogOrEmpty(c.src, c.log)
	c.fetched = c.now()
	return c.catalog
}

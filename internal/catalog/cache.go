// Package catalog provides the per-language catalog cache.
//
// Each language entry is built lazily by a full scan of the record store and
// is never patched in place: Invalidate drops every entry and the next Get
// rebuilds from disk.
package catalog

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/waajacu/minerals/internal/metrics"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/logging"
	"github.com/waajacu/minerals/pkg/minerals"
)

// Scanner builds the records for one language.
type Scanner interface {
	Scan(ctx context.Context, lang i18n.Code) (store.ScanResult, error)
}

// Cache maps language codes to built catalogs. Entries never expire.
type Cache struct {
	scanner Scanner
	items   *gocache.Cache

	// mu orders inserts against Invalidate. gen changes on every invalidation
	// so a scan that started before one is not cached after it.
	mu  sync.RWMutex
	gen uint64
}

// New creates a cache that builds entries with scanner.
func New(scanner Scanner) *Cache {
	return &Cache{
		scanner: scanner,
		items:   gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the catalog for lang. Catalogs are immutable; callers share them.
// On a miss the store is scanned without holding any lock. When two misses
// race, the first insert wins and the later caller returns that entry.
func (c *Cache) Get(ctx context.Context, lang i18n.Code) (*minerals.Catalog, error) {
	if v, ok := c.items.Get(string(lang)); ok {
		metrics.CatalogLookups.WithLabelValues(string(lang), "hit").Inc()
		return v.(*minerals.Catalog), nil
	}
	metrics.CatalogLookups.WithLabelValues(string(lang), "miss").Inc()

	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	start := time.Now()
	result, err := c.scanner.Scan(ctx, lang)
	if err != nil {
		return nil, err
	}
	metrics.CatalogScanSeconds.Observe(time.Since(start).Seconds())
	built := minerals.NewCatalog(result.Minerals)

	logging.FromContext(ctx).Debug().
		Str("lang", string(lang)).
		Int("records", built.Len()).
		Int("skipped", len(result.Skipped)).
		Dur("took", time.Since(start)).
		Msg("Catalog built")

	c.mu.RLock()
	defer c.mu.RUnlock()
	if gen != c.gen {
		// Invalidated mid-scan; the result may predate a publish.
		return built, nil
	}
	if err := c.items.Add(string(lang), built, gocache.NoExpiration); err != nil {
		if v, ok := c.items.Get(string(lang)); ok {
			return v.(*minerals.Catalog), nil
		}
	}
	return built, nil
}

// Invalidate discards every cached language.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.items.Flush()
	c.mu.Unlock()
	metrics.CatalogInvalidations.Inc()
}

// Stats reports cached languages.
type Stats struct {
	Languages  []i18n.Code `json:"languages"`
	Generation uint64      `json:"generation"`
}

// Stats returns the languages currently cached, in table order.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	cached := c.items.Items()
	langs := make([]i18n.Code, 0, len(cached))
	for _, code := range i18n.Codes() {
		if _, ok := cached[string(code)]; ok {
			langs = append(langs, code)
		}
	}
	return Stats{Languages: langs, Generation: gen}
}

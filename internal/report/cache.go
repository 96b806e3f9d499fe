package report

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/minerals"
)

// Cache memoizes reports per language, mineral and request.
type Cache struct {
	entries *lru.Cache[string, Report]
	now     func() time.Time
}

// NewCache creates a cache holding at most size reports.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[string, Report](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries, now: time.Now}, nil
}

func cacheKey(lang i18n.Code, id string, req Request) string {
	return strings.Join([]string{string(lang), id, req.Audience, req.Purpose, req.SiteContext}, "\x00")
}

// Get returns the cached report for m or generates and stores a new one.
func (c *Cache) Get(lang i18n.Code, m minerals.Mineral, req Request) Report {
	req = req.Normalize()
	key := cacheKey(lang, m.ID, req)
	if r, ok := c.entries.Get(key); ok {
		return r
	}
	r := Generate(m, req, c.now())
	c.entries.Add(key, r)
	return r
}

// Invalidate drops every cached report.
func (c *Cache) Invalidate() {
	c.entries.Purge()
}

// Len returns the number of cached reports.
func (c *Cache) Len() int {
	return c.entries.Len()
}

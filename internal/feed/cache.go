package feed

import (
	"fmt"
	"sync"
	"time"

	"verdict/internal/resolver"
	"verdict/internal/window"
)

// Cache provides a TTL-based in-memory cache of fetch results so questions
// sharing a source and window reuse one upstream call within a run. Only
// usable results are cached; failures are always retried on the next ask.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	result    resolver.FetchResult
	fetchedAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Key derives the cache key for one logical lookup. The cached value is the
// parsed result, not the raw body, so the key must also identify what the
// parser selects out of the payload: selector carries that identity (the
// team pair for games-by-date lookups, empty when the endpoint parameters
// already pin down the result).
func Key(src resolver.SourceConfig, win window.TimeWindow, selector string) string {
	return fmt.Sprintf("%s?%s@%d-%d#%s", src.PrimaryURL, src.Query.Encode(), win.StartMS, win.EndMS, selector)
}

func (c *Cache) Get(key string) (resolver.FetchResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		return resolver.FetchResult{}, false
	}
	return entry.result, true
}

func (c *Cache) Set(key string, res resolver.FetchResult) {
	if !res.Usable() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result:    res,
		fetchedAt: time.Now(),
	}
}

package news

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"astro-forecast-bot/internal/config"
	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

// searchClient is the provider seam, satisfied by *Client.
type searchClient interface {
	Search(ctx context.Context, query string, limit int) (json.RawMessage, error)
}

// fallbackScraper is the optional scraping seam, satisfied by *Scraper.
type fallbackScraper interface {
	Scrape(ctx context.Context, query string, maxItems int) ([]types.NewsItem, error)
}

// Service aggregates recent news about a company with caching. It never
// fails the pipeline: every failure path resolves to an empty item list with
// the Degraded flag set.
type Service struct {
	client  searchClient
	scraper fallbackScraper
	cache   *newsCache
	cfg     *config.Config
}

// NewService creates the aggregator. scraper may be nil to disable the
// scraping fallback.
func NewService(cfg *config.Config, client searchClient, scraper fallbackScraper) *Service {
	return &Service{
		client:  client,
		scraper: scraper,
		cache:   newNewsCache(cfg.News.CacheTTL),
		cfg:     cfg,
	}
}

// Fetch returns up to limit normalized items for the query. Provider errors
// and malformed payloads both resolve to an empty list plus Degraded.
func (s *Service) Fetch(ctx context.Context, query string, limit int) types.NewsResult {
	if items, ok := s.cache.get(query); ok {
		logger.Debug(ctx, "News cache hit", "query", query, "items", len(items))
		return types.NewsResult{Items: capItems(items, limit)}
	}

	items, degraded := s.fetch(ctx, query, limit)
	if !degraded {
		s.cache.set(query, items)
	}
	return types.NewsResult{Items: capItems(items, limit), Degraded: degraded}
}

func (s *Service) fetch(ctx context.Context, query string, limit int) (items []types.NewsItem, degraded bool) {
	raw, err := s.client.Search(ctx, query, limit)
	if err == nil {
		items, err = Normalize(raw)
		if err == nil && len(items) > 0 {
			return items, false
		}
	}
	if err != nil {
		logger.Degraded(ctx, string(types.SourceNews), string(types.KindOf(err)), "query", query)
	}

	if s.scraper != nil && s.cfg.News.ScraperFallback {
		scraped, serr := s.scraper.Scrape(ctx, query, limit)
		if serr == nil && len(scraped) > 0 {
			logger.Info(ctx, "News recovered via scraper fallback", "query", query, "items", len(scraped))
			return scraped, false
		}
	}

	if err != nil {
		return []types.NewsItem{}, true
	}
	// the provider answered with a valid but empty result set
	return []types.NewsItem{}, false
}

func capItems(items []types.NewsItem, limit int) []types.NewsItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// newsCache stores normalized items per query for a TTL.
type newsCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	items     []types.NewsItem
	timestamp time.Time
}

func newNewsCache(ttl time.Duration) *newsCache {
	cache := &newsCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
	go cache.cleanupLoop()
	return cache
}

func (c *newsCache) get(query string) ([]types.NewsItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[query]
	if !exists {
		return nil, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.items, true
}

func (c *newsCache) set(query string, items []types.NewsItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[query] = &cacheEntry{
		items:     items,
		timestamp: time.Now(),
	}
}

func (c *newsCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *newsCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for query, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, query)
		}
	}
}

package news

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

// Scraper is the fallback news source used when the API provider fails or
// returns nothing. It scrapes business-press search pages directly.
type Scraper struct {
	sources []scrapeSource
	timeout time.Duration
}

type scrapeSource struct {
	Name      string
	BaseURL   string
	QueryPath string // "{query}" is replaced with the escaped search term
	Selectors articleSelectors
	RateLimit time.Duration
}

type articleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	PublishedAt      string
}

// scrapedArticle keeps the article URL alongside the item so publish times
// can be backfilled from the article page.
type scrapedArticle struct {
	item types.NewsItem
	url  string
}

// NewScraper creates a scraper over the default business-press sources.
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources: defaultSources(),
		timeout: timeout,
	}
}

func defaultSources() []scrapeSource {
	return []scrapeSource{
		{
			Name:      "RBC",
			BaseURL:   "https://www.rbc.ru",
			QueryPath: "/search/?query={query}",
			Selectors: articleSelectors{
				ArticleContainer: "div.search-item",
				Title:            "span.search-item__title",
				URL:              "a.search-item__link",
				PublishedAt:      "span.search-item__category",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:      "Kommersant",
			BaseURL:   "https://www.kommersant.ru",
			QueryPath: "/search/results?search_query={query}",
			Selectors: articleSelectors{
				ArticleContainer: "article.uho",
				Title:            "h2.uho__name a",
				URL:              "h2.uho__name a",
				PublishedAt:      "p.uho__tag",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// Scrape fetches up to maxItems articles about the query across all sources.
func (s *Scraper) Scrape(ctx context.Context, query string, maxItems int) ([]types.NewsItem, error) {
	logger.Info(ctx, "Starting news scraping", "query", query, "sources", len(s.sources))

	items := []types.NewsItem{}
	perSource := maxItems / len(s.sources)
	if perSource < 1 {
		perSource = 1
	}

	var lastErr error
	for _, source := range s.sources {
		got, err := s.scrapeSource(ctx, source, query, perSource)
		if err != nil {
			lastErr = err
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name, "query", query)
			continue
		}
		items = append(items, got...)
		if len(items) >= maxItems {
			items = items[:maxItems]
			break
		}
		time.Sleep(source.RateLimit)
	}

	if len(items) == 0 && lastErr != nil {
		return nil, types.NewProviderError(providerName, types.KindUnavailable, lastErr)
	}

	logger.Info(ctx, "News scraping completed", "query", query, "items", len(items))
	return items, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, source scrapeSource, query string, maxItems int) ([]types.NewsItem, error) {
	articles := []scrapedArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains(hostOf(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnHTML(source.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(articles) >= maxItems {
			return
		}
		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}
		articleURL := e.ChildAttr(source.Selectors.URL, "href")
		if articleURL != "" && !strings.HasPrefix(articleURL, "http") {
			articleURL = source.BaseURL + articleURL
		}
		articles = append(articles, scrapedArticle{
			item: types.NewsItem{
				Title:       title,
				PublishedAt: parsePubDate(strings.TrimSpace(e.ChildText(source.Selectors.PublishedAt))),
				Source:      source.Name,
			},
			url: articleURL,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.QueryPath, "{query}", url.QueryEscape(query))
	if err := c.Visit(searchURL); err != nil {
		return nil, err
	}
	c.Wait()

	return s.backfillPublishedAt(ctx, articles), nil
}

// backfillPublishedAt fills missing publish times from each article page's
// OpenGraph metadata, with rate limiting between fetches.
func (s *Scraper) backfillPublishedAt(ctx context.Context, articles []scrapedArticle) []types.NewsItem {
	items := make([]types.NewsItem, 0, len(articles))
	for _, a := range articles {
		if a.item.PublishedAt.IsZero() && a.url != "" {
			if t := s.fetchPublishedMeta(ctx, a.url); !t.IsZero() {
				a.item.PublishedAt = t
			}
			time.Sleep(500 * time.Millisecond)
		}
		items = append(items, a.item)
	}
	return items
}

// fetchPublishedMeta fetches the article page and reads
// <meta property="article:published_time"> via goquery.
func (s *Scraper) fetchPublishedMeta(ctx context.Context, articleURL string) time.Time {
	var published time.Time

	c := colly.NewCollector()
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(r.Body)))
		if err != nil {
			return
		}
		content, _ := doc.Find(`meta[property="article:published_time"]`).Attr("content")
		if content == "" {
			return
		}
		if t, err := time.Parse(time.RFC3339, content); err == nil {
			published = t
		}
	})

	if err := c.Visit(articleURL); err != nil {
		logger.Debug(ctx, "Failed to fetch article metadata", "url", articleURL, "error", err)
	}
	return published
}

func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"astro-forecast-bot/internal/config"
	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

const providerName = "news"

// Client is the HTTP client for the news search service. It returns the raw
// payload untouched; shape discrimination happens in Normalize because the
// provider answers either with a bare array or with {"results": [...]}.
type Client struct {
	baseURL  string
	language string
	country  string
	httpc    *http.Client
}

// NewClient builds a news client from config. The API key comes from the
// NEWSDATA_API_KEY environment variable.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:  cfg.News.BaseURL,
		language: cfg.News.Language,
		country:  cfg.News.Country,
		httpc:    &http.Client{Timeout: cfg.News.Timeout},
	}
}

// Search runs one provider query and returns the raw JSON payload.
func (c *Client) Search(ctx context.Context, query string, limit int) (json.RawMessage, error) {
	ctx, span := logger.StartSpan(ctx, "news-api-call")
	defer span.End()

	apiKey := os.Getenv("NEWSDATA_API_KEY")
	if apiKey == "" {
		return nil, types.NewProviderError(providerName, types.KindUnavailable, errors.New("NEWSDATA_API_KEY missing"))
	}

	q := url.Values{}
	q.Set("apikey", apiKey)
	q.Set("q", query)
	q.Set("size", fmt.Sprintf("%d", limit))
	if c.language != "" {
		q.Set("language", c.language)
	}
	if c.country != "" {
		q.Set("country", c.country)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/1/news?"+q.Encode(), nil)
	if err != nil {
		return nil, types.NewProviderError(providerName, types.KindUnavailable, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, types.NewProviderError(providerName, types.KindTimeout, ctx.Err())
		}
		return nil, types.NewProviderError(providerName, types.KindUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, types.NewProviderError(providerName, types.KindUnavailable, fmt.Errorf("news http %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewProviderError(providerName, types.KindUnavailable, err)
	}
	return raw, nil
}

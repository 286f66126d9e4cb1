package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"astro-forecast-bot/internal/config"
	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

const providerName = "vector-store"

// Client talks to the vector-store search endpoint.
type Client struct {
	baseURL    string
	collection string
	httpc      *http.Client
}

// NewClient builds a vector-store client from config. An empty base URL
// means retrieval is not configured; Query then reports unavailable and the
// retriever degrades silently.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    cfg.Vector.BaseURL,
		collection: cfg.Vector.Collection,
		httpc:      &http.Client{Timeout: cfg.Vector.Timeout},
	}
}

type scoredPoint struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Query searches the collection for texts similar to the query.
func (c *Client) Query(ctx context.Context, query string, topK int) ([]types.RetrievedContext, error) {
	ctx, span := logger.StartSpan(ctx, "vector-store-query")
	defer span.End()

	if c.baseURL == "" {
		return nil, types.NewProviderError(providerName, types.KindUnavailable, fmt.Errorf("vector store not configured"))
	}

	body, _ := json.Marshal(map[string]any{
		"query": query,
		"top_k": topK,
	})

	url := fmt.Sprintf("%s/collections/%s/query", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, types.NewProviderError(providerName, types.KindUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, types.NewProviderError(providerName, types.KindTimeout, ctx.Err())
		}
		return nil, types.NewProviderError(providerName, types.KindUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// a missing collection is the store's way of saying "nothing
		// indexed yet"; the caller treats it like any other degraded case
		var apiErr struct {
			Status struct {
				Error string `json:"error"`
			} `json:"status"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if resp.StatusCode == http.StatusNotFound || strings.Contains(strings.ToLower(apiErr.Status.Error), "not found") {
			return nil, types.NewProviderError(providerName, types.KindUnavailable, fmt.Errorf("collection %s not found", c.collection))
		}
		return nil, types.NewProviderError(providerName, types.KindUnavailable, fmt.Errorf("vector store http %d", resp.StatusCode))
	}

	var out struct {
		Result []scoredPoint `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, types.NewProviderError(providerName, types.KindMalformed, err)
	}

	contexts := make([]types.RetrievedContext, 0, len(out.Result))
	for _, p := range out.Result {
		contexts = append(contexts, types.RetrievedContext{Text: p.Text, Similarity: p.Score})
	}
	return contexts, nil
}

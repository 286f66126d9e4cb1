package retrieval

import (
	"context"
	"sort"
	"strings"

	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

// vectorClient is the provider seam, satisfied by *Client.
type vectorClient interface {
	Query(ctx context.Context, query string, topK int) ([]types.RetrievedContext, error)
}

// Retriever enriches prompts with semantically similar prior analyses.
// Retrieval is optional: every failure resolves to an empty result with
// Degraded set, never an error.
type Retriever struct {
	client vectorClient
}

// NewRetriever wires the retriever to a vector-store client.
func NewRetriever(client vectorClient) *Retriever {
	return &Retriever{client: client}
}

// Retrieve returns up to topK deduplicated contexts sorted by descending
// similarity.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) types.RetrievalResult {
	contexts, err := r.client.Query(ctx, query, topK)
	if err != nil {
		logger.Degraded(ctx, string(types.SourceRetrieval), string(types.KindOf(err)), "query", query)
		return types.RetrievalResult{Contexts: []types.RetrievedContext{}, Degraded: true}
	}

	deduped := dedupe(contexts)
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Similarity > deduped[j].Similarity
	})
	if len(deduped) > topK {
		deduped = deduped[:topK]
	}

	logger.Debug(ctx, "Retrieval completed", "query", query, "contexts", len(deduped))
	return types.RetrievalResult{Contexts: deduped}
}

// dedupe drops later occurrences of an identical text.
func dedupe(contexts []types.RetrievedContext) []types.RetrievedContext {
	seen := make(map[string]bool, len(contexts))
	out := make([]types.RetrievedContext, 0, len(contexts))
	for _, c := range contexts {
		key := strings.TrimSpace(c.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

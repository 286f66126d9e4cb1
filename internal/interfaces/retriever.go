package interfaces

import (
	"context"

	"astro-forecast-bot/internal/types"
)

// ContextRetriever looks up semantically similar prior analyses. Retrieval is
// purely additive: any failure, including a missing collection, resolves to an
// empty result with Degraded set.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) types.RetrievalResult
}

package interfaces

import (
	"context"

	"astro-forecast-bot/internal/types"
)

// NewsAggregator fetches recent articles about a company or sector. It never
// fails the pipeline: provider errors and malformed payloads resolve to an
// empty item list with Degraded set.
type NewsAggregator interface {
	Fetch(ctx context.Context, query string, limit int) types.NewsResult
}

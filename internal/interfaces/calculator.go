package interfaces

import (
	"context"

	"astro-forecast-bot/internal/types"
)

// ChartCalculator produces the symbolic chart for a registration date and
// place. Implementations return a typed *types.ProviderError when the remote
// provider is unusable; they never panic on malformed payloads.
type ChartCalculator interface {
	Calculate(ctx context.Context, req types.ChartRequest) (types.ChartResult, error)
}

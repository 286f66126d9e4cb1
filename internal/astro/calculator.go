package astro

import (
	"context"

	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

// chartProvider is the provider-facing seam, satisfied by *Client.
type chartProvider interface {
	ComputeChart(ctx context.Context, req types.ChartRequest) (map[string]any, error)
}

// Calculator turns a chart request into a ChartResult. The sun sign and its
// business profile are computed locally; the provider payload is merged on
// top when the call succeeds.
type Calculator struct {
	provider chartProvider
}

// NewCalculator wires the calculator to a provider client.
func NewCalculator(provider chartProvider) *Calculator {
	return &Calculator{provider: provider}
}

// Calculate performs one provider call. On provider failure it returns the
// zero ChartResult and the typed error; the orchestrator decides what a
// missing chart means downstream.
func (c *Calculator) Calculate(ctx context.Context, req types.ChartRequest) (types.ChartResult, error) {
	timer := logger.StartOperation(ctx, "chart.Calculate", "place", req.Location.Name)

	raw, err := c.provider.ComputeChart(timer.GetContext(), req)
	if err != nil {
		timer.EndWithError(err)
		return types.ChartResult{}, err
	}

	signs := basicSigns(req.Date)
	// provider-reported signs win over the local table
	if remote, ok := raw["signs"].(map[string]any); ok {
		for k, v := range remote {
			if s, ok := v.(string); ok {
				signs[k] = s
			}
		}
	}

	timer.End("signs", len(signs))
	return types.ChartResult{Signs: signs, Raw: raw}, nil
}

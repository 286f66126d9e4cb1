package astro

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"astro-forecast-bot/internal/config"
	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

const providerName = "astrology"

// Client is the HTTP client for the external astrology calculation service.
type Client struct {
	baseURL string
	httpc   *http.Client
	retry   config.RetryConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient builds a client with retry and circuit-breaker protection.
func NewClient(cfg *config.Config) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "astrology-provider",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		baseURL: cfg.Astro.BaseURL,
		httpc:   &http.Client{Timeout: cfg.Astro.Timeout},
		retry:   cfg.Astro.Retry,
		circuit: cb,
	}
}

// ComputeChart posts the chart request and returns the raw provider payload.
// Transient failures are retried with exponential backoff; exhaustion yields a
// typed *types.ProviderError.
func (c *Client) ComputeChart(ctx context.Context, req types.ChartRequest) (map[string]any, error) {
	ctx, span := logger.StartSpan(ctx, "astrology-api-call")
	defer span.End()

	body := map[string]any{
		"date":      req.Date.Format("2006-01-02"),
		"latitude":  req.Location.Latitude,
		"longitude": req.Location.Longitude,
	}
	if req.Time != "" {
		body["time"] = req.Time
	}
	bb, _ := json.Marshal(body)

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.retry.BackoffBase * time.Duration(1<<(attempt-2))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, types.NewProviderError(providerName, types.KindTimeout, ctx.Err())
			}
		}

		payload, err := c.attempt(ctx, bb)
		if err == nil {
			return payload, nil
		}

		var pe *types.ProviderError
		if errors.As(err, &pe) && pe.Kind == types.KindMalformed {
			// a broken payload will not fix itself on retry
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, types.NewProviderError(providerName, types.KindTimeout, ctx.Err())
		}

		lastErr = err
		logger.Debug(ctx, "Astrology call failed, retrying", "attempt", attempt, "error", err)
	}

	return nil, types.NewProviderError(providerName, types.KindUnavailable, lastErr)
}

func (c *Client) attempt(ctx context.Context, body []byte) (map[string]any, error) {
	result, err := c.circuit.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chart", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("astrology http %d", resp.StatusCode)
		}

		var payload map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, types.NewProviderError(providerName, types.KindMalformed, err)
		}
		return payload, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, types.NewProviderError(providerName, types.KindUnavailable, err)
		}
		return nil, err
	}
	return result.(map[string]any), nil
}

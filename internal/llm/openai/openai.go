package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"astro-forecast-bot/internal/config"
	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

const providerName = "completion"

const defaultSystem = "Ты — бизнес-астролог. Составляй деловые астрологические прогнозы для компаний на основе переданных данных. Отвечай на русском языке, связным текстом."

// Completer generates forecast narratives through the OpenAI
// chat-completions API.
type Completer struct {
	cfg      *config.Config
	endpoint string
	httpc    *http.Client
}

// NewCompleter creates a completer. The endpoint can be overridden with
// OPENAI_API_ENDPOINT for proxies.
func NewCompleter(cfg *config.Config) *Completer {
	endpoint := "https://api.openai.com/v1/chat/completions"
	if ep := os.Getenv("OPENAI_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Completer{
		cfg:      cfg,
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: cfg.LLM.Timeout},
	}
}

// Complete sends the composed prompt and returns the narrative. Transient
// failures are retried with exponential backoff; exhaustion yields a typed
// *types.ProviderError. Fallback text is the orchestrator's decision, not
// this client's.
func (c *Completer) Complete(ctx context.Context, prompt types.ComposedPrompt) (string, error) {
	ctx, span := logger.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", types.NewProviderError(providerName, types.KindUnavailable, errors.New("OPENAI_API_KEY missing"))
	}

	system := c.cfg.LLM.System
	if system == "" {
		system = defaultSystem
	}

	body := map[string]any{
		"model": c.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": renderPrompt(prompt)},
		},
		"temperature": c.cfg.LLM.Temperature,
		"max_tokens":  c.cfg.LLM.MaxTokens,
	}
	bb, _ := json.Marshal(body)

	retry := c.cfg.LLM.Retry
	var lastErr error
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := retry.BackoffBase * time.Duration(1<<(attempt-2))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", types.NewProviderError(providerName, types.KindTimeout, ctx.Err())
			}
		}

		text, err := c.attempt(ctx, apiKey, bb)
		if err == nil {
			return text, nil
		}

		var pe *types.ProviderError
		if errors.As(err, &pe) && pe.Kind == types.KindMalformed {
			return "", err
		}
		if ctx.Err() != nil {
			return "", types.NewProviderError(providerName, types.KindTimeout, ctx.Err())
		}

		lastErr = err
		logger.Debug(ctx, "Completion call failed, retrying", "attempt", attempt, "error", err)
	}

	return "", types.NewProviderError(providerName, types.KindUnavailable, lastErr)
}

func (c *Completer) attempt(ctx context.Context, apiKey string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", types.NewProviderError(providerName, types.KindMalformed, err)
	}
	if len(r.Choices) == 0 {
		return "", types.NewProviderError(providerName, types.KindMalformed, errors.New("no choices"))
	}

	text := strings.TrimSpace(r.Choices[0].Message.Content)
	if text == "" {
		return "", types.NewProviderError(providerName, types.KindMalformed, errors.New("empty completion"))
	}
	return text, nil
}

// renderPrompt serializes the composed prompt in its fixed section order.
func renderPrompt(p types.ComposedPrompt) string {
	var b strings.Builder
	b.WriteString("Натальная карта компании:\n")
	b.WriteString(p.ChartSummary)
	b.WriteString("\n\nНовостной фон:\n")
	b.WriteString(p.NewsSummary)
	if p.RetrievedSummary != "" {
		b.WriteString("\n\nПохожие прошлые анализы:\n")
		b.WriteString(p.RetrievedSummary)
	}
	b.WriteString("\n\n")
	b.WriteString(p.Instructions)
	return b.String()
}

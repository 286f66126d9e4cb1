package noop

import (
	"context"

	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

// Narrative is the deterministic text produced when no completion provider
// is configured.
const Narrative = "Период требует взвешенных решений: опирайтесь на проверенных партнеров, планируйте финансы консервативно и откладывайте рискованные инициативы до более ясной картины."

// Completer is the fallback generator used when no LLM is configured. It
// always succeeds with a fixed narrative, which keeps the pipeline
// exercisable without API keys.
type Completer struct{}

// NewCompleter returns a completer that always produces Narrative.
func NewCompleter() *Completer {
	return &Completer{}
}

// Complete implements the Completer interface with a canned answer.
func (c *Completer) Complete(ctx context.Context, prompt types.ComposedPrompt) (string, error) {
	logger.Debug(ctx, "Noop completer called - returning canned narrative")
	return Narrative, nil
}

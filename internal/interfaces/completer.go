package interfaces

import (
	"context"

	"astro-forecast-bot/internal/types"
)

// Completer turns a composed prompt into a narrative. It is mechanism only:
// the orchestrator, not the completer, decides whether to substitute the
// canned fallback text on failure.
type Completer interface {
	Complete(ctx context.Context, prompt types.ComposedPrompt) (string, error)
}

package llmobs

import (
	"context"

	"astro-forecast-bot/internal/interfaces"
	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

// observableCompleter wraps a Completer with logging and tracing
type observableCompleter struct {
	completer interfaces.Completer
}

// Compile-time interface check
var _ interfaces.Completer = (*observableCompleter)(nil)

// Wrap wraps a completer with observability middleware
func Wrap(completer interfaces.Completer) interfaces.Completer {
	return &observableCompleter{
		completer: completer,
	}
}

// Complete generates a narrative with observability
func (oc *observableCompleter) Complete(ctx context.Context, prompt types.ComposedPrompt) (string, error) {
	ctx, span := logger.StartSpan(ctx, "llm.Complete")
	defer span.End()

	logger.Debug(ctx, "Requesting narrative generation",
		"chart_len", len(prompt.ChartSummary),
		"news_len", len(prompt.NewsSummary),
		"retrieved_len", len(prompt.RetrievedSummary),
	)

	narrative, err := oc.completer.Complete(ctx, prompt)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to generate narrative", err)
		return "", err
	}

	logger.Info(ctx, "Narrative generated", "narrative_len", len(narrative))
	return narrative, nil
}

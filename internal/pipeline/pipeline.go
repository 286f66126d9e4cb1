package pipeline

import (
	"context"
	"strings"
	"sync"

	"astro-forecast-bot/internal/compose"
	"astro-forecast-bot/internal/config"
	"astro-forecast-bot/internal/forecastlog"
	"astro-forecast-bot/internal/geo"
	"astro-forecast-bot/internal/interfaces"
	"astro-forecast-bot/internal/logger"
	"astro-forecast-bot/internal/types"
)

// State names the orchestrator's position in a request.
type State string

const (
	StateResolving   State = "resolving"
	StateCalculating State = "calculating"
	StateGathering   State = "gathering"
	StateComposing   State = "composing"
	StateGenerating  State = "generating"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// FallbackNarrative is substituted when the completion provider is
// exhausted. The pipeline guarantees a non-empty answer even under total
// external unavailability.
const FallbackNarrative = "Звезды сегодня немногословны: внешние источники недоступны. Общая рекомендация для компании — придерживаться консервативной финансовой стратегии, укреплять существующие партнерства и отложить крупные рискованные решения до следующего благоприятного периода."

// sourceOrder fixes the order of degraded sources in the result so
// identical runs produce identical output.
var sourceOrder = []types.Source{
	types.SourceChart,
	types.SourceNews,
	types.SourceRetrieval,
	types.SourceGeneration,
}

// Pipeline sequences resolving, calculating, gathering, composing and
// generating for one forecast request. It owns the degradation policy: stage
// components report failures, the pipeline decides what they mean.
type Pipeline struct {
	cfg       *config.Config
	calc      interfaces.ChartCalculator
	news      interfaces.NewsAggregator
	retriever interfaces.ContextRetriever
	completer interfaces.Completer
	composer  *compose.Composer
}

// New wires the pipeline to its stage components. Collaborators are
// injected so tests can substitute doubles.
func New(cfg *config.Config, calc interfaces.ChartCalculator, news interfaces.NewsAggregator, retriever interfaces.ContextRetriever, completer interfaces.Completer) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		calc:      calc,
		news:      news,
		retriever: retriever,
		completer: completer,
		composer:  compose.NewComposer(cfg.Prompt.MaxNewsItems, cfg.Prompt.NewsCharBudget, cfg.Prompt.MaxRetrievedItems),
	}
}

// Run executes the pipeline for one request. Provider outages never fail a
// request; the only returned errors are internal invariant violations, which
// are defects, not business failures.
func (p *Pipeline) Run(ctx context.Context, req types.ForecastRequest) (types.PipelineResult, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return types.PipelineResult{}, types.Invariantf("empty company name reached the pipeline")
	}
	if req.RegistrationDate.IsZero() {
		return types.PipelineResult{}, types.Invariantf("zero registration date reached the pipeline")
	}

	timer := logger.StartOperation(ctx, "pipeline.Run", "company", req.CompanyName)
	ctx = timer.GetContext()

	degraded := map[types.Source]bool{}
	state := StateResolving
	advance := func(next State) {
		state = next
		logger.Debug(ctx, "Pipeline state", "state", string(next), "company", req.CompanyName)
	}

	// Resolving: never fails, a miss falls back to the default location.
	location := geo.Resolve(req.Place)
	logger.Debug(ctx, "Place resolved", "place", req.Place, "location", location.Name)

	// Calculating: a failed chart becomes a missing chart, not an abort.
	advance(StateCalculating)
	var chart *types.ChartResult
	chartResult, err := p.calc.Calculate(ctx, types.ChartRequest{
		Date:     req.RegistrationDate,
		Location: location,
	})
	if err != nil {
		degraded[types.SourceChart] = true
		logger.Degraded(ctx, string(types.SourceChart), string(types.KindOf(err)), "company", req.CompanyName)
	} else {
		chart = &chartResult
	}

	// Gathering: news and retrieval are independent; fan out with a
	// per-call timeout so one slow provider cannot stall the request.
	advance(StateGathering)
	newsRes, retrievalRes := p.gather(ctx, req.CompanyName)
	if newsRes.Degraded {
		degraded[types.SourceNews] = true
	}
	if retrievalRes.Degraded {
		degraded[types.SourceRetrieval] = true
	}

	// Composing: pure, cannot fail.
	advance(StateComposing)
	prompt := p.composer.Compose(chart, newsRes.Items, retrievalRes.Contexts)

	// Generating: exhaustion substitutes the fixed fallback narrative.
	advance(StateGenerating)
	narrative, err := p.completer.Complete(ctx, prompt)
	fallback := false
	if err != nil {
		degraded[types.SourceGeneration] = true
		narrative = FallbackNarrative
		fallback = true
		logger.Degraded(ctx, string(types.SourceGeneration), string(types.KindOf(err)), "company", req.CompanyName)
	}

	advance(StateDone)
	result := types.PipelineResult{
		Narrative:       narrative,
		DegradedSources: orderedDegraded(degraded),
	}

	p.report(ctx, req, state, result, fallback)
	timer.End("degraded", len(result.DegradedSources))
	return result, nil
}

// gather runs the news aggregator and the context retriever concurrently
// and joins both before advancing. This stage cannot fail the request.
func (p *Pipeline) gather(ctx context.Context, company string) (types.NewsResult, types.RetrievalResult) {
	var (
		wg           sync.WaitGroup
		newsRes      types.NewsResult
		retrievalRes types.RetrievalResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.Gather.Timeout)
		defer cancel()
		newsRes = p.news.Fetch(callCtx, company, p.cfg.News.MaxItems)
	}()
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.Gather.Timeout)
		defer cancel()
		retrievalRes = p.retriever.Retrieve(callCtx, company, p.cfg.Vector.TopK)
	}()
	wg.Wait()

	return newsRes, retrievalRes
}

// report logs the structured degradation report and appends the forecast
// log entry. Both are best-effort and never block the response.
func (p *Pipeline) report(ctx context.Context, req types.ForecastRequest, state State, result types.PipelineResult, fallback bool) {
	names := make([]string, 0, len(result.DegradedSources))
	for _, s := range result.DegradedSources {
		names = append(names, string(s))
	}

	logger.Forecast(ctx, req.CompanyName, len(result.Narrative), names, "state", string(state))

	if err := forecastlog.Append(forecastlog.Entry{
		Company:         req.CompanyName,
		Place:           req.Place,
		State:           string(state),
		NarrativeLen:    len(result.Narrative),
		DegradedSources: names,
		Fallback:        fallback,
	}); err != nil {
		logger.Warn(ctx, "Failed to append forecast log", "error", err)
	}
}

func orderedDegraded(degraded map[types.Source]bool) []types.Source {
	out := []types.Source{}
	for _, s := range sourceOrder {
		if degraded[s] {
			out = append(out, s)
		}
	}
	return out
}

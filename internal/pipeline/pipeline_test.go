package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"astro-forecast-bot/internal/compose"
	"astro-forecast-bot/internal/config"
	"astro-forecast-bot/internal/llm/noop"
	"astro-forecast-bot/internal/types"
)

type stubCalculator struct {
	result types.ChartResult
	err    error
}

func (s *stubCalculator) Calculate(ctx context.Context, req types.ChartRequest) (types.ChartResult, error) {
	return s.result, s.err
}

type stubAggregator struct {
	result types.NewsResult
}

func (s *stubAggregator) Fetch(ctx context.Context, query string, limit int) types.NewsResult {
	return s.result
}

type stubRetriever struct {
	result types.RetrievalResult
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, topK int) types.RetrievalResult {
	return s.result
}

type stubCompleter struct {
	err      error
	prompts  []types.ComposedPrompt
	response string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt types.ComposedPrompt) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testRequest() types.ForecastRequest {
	date, _ := time.Parse("2006-01-02", "2015-06-10")
	return types.ForecastRequest{
		CompanyName:      "ООО Ромашка",
		RegistrationDate: date,
		Place:            "Казань",
	}
}

func healthyChart() types.ChartResult {
	return types.ChartResult{Signs: map[string]string{
		"sun_sign": "Близнецы ♊",
		"element":  "Воздух",
	}}
}

func fiveNews() types.NewsResult {
	return types.NewsResult{Items: []types.NewsItem{
		{Title: "Первая"}, {Title: "Вторая"}, {Title: "Третья"}, {Title: "Четвертая"}, {Title: "Пятая"},
	}}
}

func twoContexts() types.RetrievalResult {
	return types.RetrievalResult{Contexts: []types.RetrievedContext{
		{Text: "прошлый прогноз", Similarity: 0.9},
		{Text: "еще один анализ", Similarity: 0.8},
	}}
}

func newTestPipeline(t *testing.T, calc *stubCalculator, news *stubAggregator, retr *stubRetriever, completer *stubCompleter) *Pipeline {
	t.Setenv("ASTROBOT_LOG_DIR", t.TempDir())
	return New(config.Default(), calc, news, retr, completer)
}

func TestRunAllSourcesHealthy(t *testing.T) {
	completer := &stubCompleter{response: "Подробный прогноз."}
	p := newTestPipeline(t,
		&stubCalculator{result: healthyChart()},
		&stubAggregator{result: fiveNews()},
		&stubRetriever{result: twoContexts()},
		completer,
	)

	res, err := p.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Narrative != "Подробный прогноз." {
		t.Errorf("expected model narrative, got %q", res.Narrative)
	}
	if len(res.DegradedSources) != 0 {
		t.Errorf("expected no degraded sources, got %v", res.DegradedSources)
	}

	if len(completer.prompts) != 1 {
		t.Fatalf("expected one completion call, got %d", len(completer.prompts))
	}
	prompt := completer.prompts[0]
	if lines := strings.Split(prompt.NewsSummary, "\n"); len(lines) != 3 {
		t.Errorf("expected exactly 3 news lines from 5 items, got %d", len(lines))
	}
	if parts := strings.Split(prompt.RetrievedSummary, "\n---\n"); len(parts) != 2 {
		t.Errorf("expected both retrieved contexts, got %d", len(parts))
	}
	if !strings.Contains(prompt.ChartSummary, "Близнецы") {
		t.Errorf("expected chart summary from calculated signs, got %q", prompt.ChartSummary)
	}
}

func TestRunChartTimeoutDegradesOnlyChart(t *testing.T) {
	completer := &stubCompleter{response: "Нейтральный прогноз."}
	p := newTestPipeline(t,
		&stubCalculator{err: types.NewProviderError("astrology", types.KindTimeout, errors.New("deadline"))},
		&stubAggregator{result: fiveNews()},
		&stubRetriever{result: twoContexts()},
		completer,
	)

	res, err := p.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []types.Source{types.SourceChart}
	if !reflect.DeepEqual(res.DegradedSources, want) {
		t.Errorf("expected degraded = {chart}, got %v", res.DegradedSources)
	}
	if res.Narrative != "Нейтральный прогноз." {
		t.Errorf("generation succeeded, expected its output, got %q", res.Narrative)
	}
	if completer.prompts[0].ChartSummary != compose.NeutralChartSummary {
		t.Errorf("expected neutral chart placeholder in prompt, got %q", completer.prompts[0].ChartSummary)
	}
}

func TestRunTotalOutageStillAnswers(t *testing.T) {
	p := newTestPipeline(t,
		&stubCalculator{err: types.NewProviderError("astrology", types.KindUnavailable, errors.New("down"))},
		&stubAggregator{result: types.NewsResult{Items: []types.NewsItem{}, Degraded: true}},
		&stubRetriever{result: types.RetrievalResult{Contexts: []types.RetrievedContext{}, Degraded: true}},
		&stubCompleter{err: types.NewProviderError("completion", types.KindUnavailable, errors.New("down"))},
	)

	res, err := p.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Narrative != FallbackNarrative {
		t.Errorf("expected fixed fallback narrative, got %q", res.Narrative)
	}
	want := []types.Source{types.SourceChart, types.SourceNews, types.SourceRetrieval, types.SourceGeneration}
	if !reflect.DeepEqual(res.DegradedSources, want) {
		t.Errorf("expected all four sources degraded in order, got %v", res.DegradedSources)
	}
}

func TestRunRetrievalFailureKeepsNarrative(t *testing.T) {
	p := newTestPipeline(t,
		&stubCalculator{result: healthyChart()},
		&stubAggregator{result: fiveNews()},
		&stubRetriever{result: types.RetrievalResult{Degraded: true}},
		&stubCompleter{response: "Прогноз без контекста."},
	)

	res, err := p.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Degraded(types.SourceRetrieval) {
		t.Error("expected retrieval in degraded sources")
	}
	if res.Narrative == "" {
		t.Error("narrative must be non-empty")
	}
}

// blockingAggregator hangs until its context is cancelled, simulating a
// provider that never answers.
type blockingAggregator struct{}

func (b *blockingAggregator) Fetch(ctx context.Context, query string, limit int) types.NewsResult {
	<-ctx.Done()
	return types.NewsResult{Items: []types.NewsItem{}, Degraded: true}
}

func TestRunGatherTimeoutDegradesSlowProvider(t *testing.T) {
	t.Setenv("ASTROBOT_LOG_DIR", t.TempDir())
	cfg := config.Default()
	cfg.Gather.Timeout = 20 * time.Millisecond
	p := New(cfg,
		&stubCalculator{result: healthyChart()},
		&blockingAggregator{},
		&stubRetriever{result: twoContexts()},
		&stubCompleter{response: "Прогноз без новостей."},
	)

	start := time.Now()
	res, err := p.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("slow provider stalled the request for %v", elapsed)
	}
	if !res.Degraded(types.SourceNews) {
		t.Error("expected the timed-out news source to be degraded")
	}
	if res.Degraded(types.SourceRetrieval) {
		t.Error("the fast retriever must not be degraded")
	}
	if res.Narrative == "" {
		t.Error("narrative must be non-empty")
	}
}

func TestRunIsIdempotentWithDeterministicStubs(t *testing.T) {
	p := newTestPipeline(t,
		&stubCalculator{result: healthyChart()},
		&stubAggregator{result: fiveNews()},
		&stubRetriever{result: twoContexts()},
		&stubCompleter{response: "Один и тот же прогноз."},
	)

	first, err := p.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs must yield identical results: %+v vs %+v", first, second)
	}
}

func TestRunNoopCompleterNeverDegrades(t *testing.T) {
	p := newTestPipeline(t,
		&stubCalculator{result: healthyChart()},
		&stubAggregator{result: types.NewsResult{Items: []types.NewsItem{}}},
		&stubRetriever{result: types.RetrievalResult{}},
		nil,
	)
	p.completer = noop.NewCompleter()

	res, err := p.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Narrative != noop.Narrative {
		t.Errorf("expected canned noop narrative, got %q", res.Narrative)
	}
	if res.Degraded(types.SourceGeneration) {
		t.Error("a configured noop completer is not a degradation")
	}
}

func TestRunRejectsInvalidRequests(t *testing.T) {
	p := newTestPipeline(t,
		&stubCalculator{result: healthyChart()},
		&stubAggregator{},
		&stubRetriever{},
		&stubCompleter{response: "x"},
	)

	_, err := p.Run(context.Background(), types.ForecastRequest{Place: "Москва"})
	if !errors.Is(err, types.ErrInvariant) {
		t.Errorf("expected invariant violation for empty company, got %v", err)
	}

	_, err = p.Run(context.Background(), types.ForecastRequest{CompanyName: "ООО Ромашка"})
	if !errors.Is(err, types.ErrInvariant) {
		t.Errorf("expected invariant violation for zero date, got %v", err)
	}
}

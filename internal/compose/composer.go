package compose

import (
	"fmt"
	"strings"

	"astro-forecast-bot/internal/types"
)

// NeutralChartSummary replaces the chart section when the calculation
// provider is unavailable. Never an empty string: the model needs an explicit
// neutral premise to write against.
const NeutralChartSummary = "Астрологические данные временно недоступны. Используй нейтральные, сбалансированные предпосылки без привязки к знаку зодиака."

// NoNewsSummary is the explicit sentence used when no recent articles were
// found.
const NoNewsSummary = "Свежих новостей по компании не найдено."

// Instructions is the fixed final section of every composed prompt.
const Instructions = "Составь деловой астрологический прогноз для компании: общий характер периода, финансовые перспективы, рекомендации руководству. Пиши уверенно, конкретно и без оговорок о достоверности астрологии."

// chartKeys fixes the order in which sign categories appear in the summary,
// so identical charts always compose identically.
var chartKeys = []struct{ key, label string }{
	{"sun_sign", "Знак"},
	{"moon_sign", "Луна"},
	{"element", "Стихия"},
	{"quality", "Качество"},
	{"ruler", "Управитель"},
	{"business_traits", "Деловые качества"},
	{"strengths", "Сильные стороны"},
	{"challenges", "Вызовы"},
}

// Composer merges chart, news and retrieved context into one prompt. It is a
// pure function of its inputs: no I/O, no clock, no randomness.
type Composer struct {
	maxNewsItems      int
	newsCharBudget    int
	maxRetrievedItems int
}

// NewComposer fixes the size limits. Limits bound the serialized prompt so
// model-call cost stays predictable.
func NewComposer(maxNewsItems, newsCharBudget, maxRetrievedItems int) *Composer {
	return &Composer{
		maxNewsItems:      maxNewsItems,
		newsCharBudget:    newsCharBudget,
		maxRetrievedItems: maxRetrievedItems,
	}
}

// Compose builds the prompt payload. chart may be nil when the calculation
// failed; news and retrieved may be empty. Section order is fixed: chart,
// news, retrieved, instructions.
func (c *Composer) Compose(chart *types.ChartResult, news []types.NewsItem, retrieved []types.RetrievedContext) types.ComposedPrompt {
	return types.ComposedPrompt{
		ChartSummary:     c.chartSummary(chart),
		NewsSummary:      c.newsSummary(news),
		RetrievedSummary: c.retrievedSummary(retrieved),
		Instructions:     Instructions,
	}
}

func (c *Composer) chartSummary(chart *types.ChartResult) string {
	if chart == nil || len(chart.Signs) == 0 {
		return NeutralChartSummary
	}

	parts := make([]string, 0, len(chartKeys))
	for _, k := range chartKeys {
		if v, ok := chart.Signs[k.key]; ok && v != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", k.label, v))
		}
	}
	if len(parts) == 0 {
		return NeutralChartSummary
	}
	return strings.Join(parts, ". ") + "."
}

func (c *Composer) newsSummary(news []types.NewsItem) string {
	if len(news) == 0 {
		return NoNewsSummary
	}

	n := len(news)
	if n > c.maxNewsItems {
		n = c.maxNewsItems
	}

	lines := make([]string, 0, n)
	for _, item := range news[:n] {
		lines = append(lines, "- "+truncate(item.Title, c.newsCharBudget))
	}
	return strings.Join(lines, "\n")
}

func (c *Composer) retrievedSummary(retrieved []types.RetrievedContext) string {
	// retrieval is purely additive: no placeholder when empty
	if len(retrieved) == 0 {
		return ""
	}

	n := len(retrieved)
	if n > c.maxRetrievedItems {
		n = c.maxRetrievedItems
	}

	texts := make([]string, 0, n)
	for _, r := range retrieved[:n] {
		texts = append(texts, r.Text)
	}
	return strings.Join(texts, "\n---\n")
}

// truncate cuts s to at most budget runes, appending an ellipsis when
// something was dropped.
func truncate(s string, budget int) string {
	if budget <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	if budget == 1 {
		return string(runes[:1])
	}
	return string(runes[:budget-1]) + "…"
}

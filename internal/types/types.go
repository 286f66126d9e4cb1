package types

import "time"

// Location is a resolved registration place. Unresolved place names map to
// DefaultLocation, never to an error.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ChartRequest describes a single natal-chart calculation for a company.
type ChartRequest struct {
	Date     time.Time `json:"date"`
	Time     string    `json:"time,omitempty"` // "15:04", empty when registration time unknown
	Location Location  `json:"location"`
}

// ChartResult is the symbolic chart for a registration date. Signs always
// carries at least the locally computed sun sign; Raw is the provider payload
// when the remote call succeeded.
type ChartResult struct {
	Signs map[string]string `json:"signs"`
	Raw   map[string]any    `json:"raw,omitempty"`
}

// NewsItem is a normalized article regardless of the provider payload shape.
type NewsItem struct {
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Source      string    `json:"source,omitempty"`
}

// NewsResult wraps aggregated news. Degraded means the provider failed or
// returned an unusable payload; Items is then empty but valid.
type NewsResult struct {
	Items    []NewsItem `json:"items"`
	Degraded bool       `json:"degraded"`
}

// RetrievedContext is one prior analysis pulled from the vector store.
type RetrievedContext struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// RetrievalResult wraps retrieved contexts, sorted by descending similarity.
type RetrievalResult struct {
	Contexts []RetrievedContext `json:"contexts"`
	Degraded bool               `json:"degraded"`
}

// ComposedPrompt is the structured payload sent to the completion provider.
// Section order is fixed: chart, news, retrieved, instructions.
type ComposedPrompt struct {
	ChartSummary     string `json:"chart_summary"`
	NewsSummary      string `json:"news_summary"`
	RetrievedSummary string `json:"retrieved_summary,omitempty"`
	Instructions     string `json:"instructions"`
}

// Source identifies an external dependency for degradation reporting.
type Source string

const (
	SourceChart      Source = "chart"
	SourceNews       Source = "news"
	SourceRetrieval  Source = "retrieval"
	SourceGeneration Source = "generation"
)

// PipelineResult is the single value returned to the transport layer.
// Narrative is always non-empty; DegradedSources tells the caller which parts
// of the answer are best-effort.
type PipelineResult struct {
	Narrative       string   `json:"narrative"`
	DegradedSources []Source `json:"degraded_sources"`
}

// Degraded reports whether the given source was marked degraded.
func (r PipelineResult) Degraded(s Source) bool {
	for _, d := range r.DegradedSources {
		if d == s {
			return true
		}
	}
	return false
}

// ForecastRequest is the validated input to the pipeline.
type ForecastRequest struct {
	CompanyName      string    `json:"company_name"`
	RegistrationDate time.Time `json:"registration_date"`
	Place            string    `json:"place"`
}

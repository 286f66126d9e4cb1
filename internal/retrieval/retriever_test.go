package retrieval

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"astro-forecast-bot/internal/config"
	"astro-forecast-bot/internal/types"
)

type stubVector struct {
	contexts []types.RetrievedContext
	err      error
}

func (s *stubVector) Query(ctx context.Context, query string, topK int) ([]types.RetrievedContext, error) {
	return s.contexts, s.err
}

func TestRetrieveSortsAndCaps(t *testing.T) {
	r := NewRetriever(&stubVector{contexts: []types.RetrievedContext{
		{Text: "средний", Similarity: 0.5},
		{Text: "лучший", Similarity: 0.9},
		{Text: "хороший", Similarity: 0.7},
		{Text: "слабый", Similarity: 0.2},
	}})

	res := r.Retrieve(context.Background(), "прогноз", 3)

	if res.Degraded {
		t.Error("expected non-degraded result")
	}
	if len(res.Contexts) != 3 {
		t.Fatalf("expected 3 contexts, got %d", len(res.Contexts))
	}
	if res.Contexts[0].Text != "лучший" || res.Contexts[2].Text != "средний" {
		t.Errorf("expected descending similarity order, got %+v", res.Contexts)
	}
}

func TestRetrieveDeduplicatesByText(t *testing.T) {
	r := NewRetriever(&stubVector{contexts: []types.RetrievedContext{
		{Text: "повтор", Similarity: 0.9},
		{Text: "повтор", Similarity: 0.8},
		{Text: "уникальный", Similarity: 0.7},
	}})

	res := r.Retrieve(context.Background(), "прогноз", 5)

	if len(res.Contexts) != 2 {
		t.Fatalf("expected 2 contexts after dedupe, got %d", len(res.Contexts))
	}
	if res.Contexts[0].Similarity != 0.9 {
		t.Errorf("first occurrence must win, got %f", res.Contexts[0].Similarity)
	}
}

func TestRetrieveErrorDegradesSilently(t *testing.T) {
	r := NewRetriever(&stubVector{err: errors.New("connection refused")})

	res := r.Retrieve(context.Background(), "прогноз", 3)

	if !res.Degraded {
		t.Error("expected degraded result")
	}
	if len(res.Contexts) != 0 {
		t.Errorf("expected no contexts, got %d", len(res.Contexts))
	}
}

func TestRetrieveEmptyIsValid(t *testing.T) {
	r := NewRetriever(&stubVector{contexts: []types.RetrievedContext{}})

	res := r.Retrieve(context.Background(), "прогноз", 3)

	if res.Degraded {
		t.Error("an empty result is valid, not degraded")
	}
}

func newTestClient(url string) *Client {
	cfg := config.Default()
	cfg.Vector.BaseURL = url
	return NewClient(cfg)
}

func TestClientQueryParsesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/astrobot-results/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"result": [{"text": "прошлый анализ", "score": 0.83}]}`))
	}))
	defer srv.Close()

	contexts, err := newTestClient(srv.URL).Query(context.Background(), "прогноз", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contexts) != 1 || contexts[0].Similarity != 0.83 {
		t.Errorf("unexpected contexts %+v", contexts)
	}
}

func TestClientQueryCollectionNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status": {"error": "Collection astrobot-results not found"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Query(context.Background(), "прогноз", 3)

	var pe *types.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected typed provider error, got %v", err)
	}
	if pe.Kind != types.KindUnavailable {
		t.Errorf("a missing collection is a normal degraded case, got %s", pe.Kind)
	}
}

func TestClientQueryUnconfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Vector.BaseURL = ""
	_, err := NewClient(cfg).Query(context.Background(), "прогноз", 3)
	if err == nil {
		t.Fatal("expected error when vector store is not configured")
	}
}

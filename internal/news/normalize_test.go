package news

import (
	"encoding/json"
	"errors"
	"testing"

	"astro-forecast-bot/internal/types"
)

func TestNormalizeBareArrayAndKeyedMapAgree(t *testing.T) {
	articles := `[
		{"title": "Компания расширяет производство", "pubDate": "2024-05-01 10:30:00", "source_id": "rbc"},
		{"title": "Новый контракт подписан", "pubDate": "2024-05-02 09:00:00", "source_id": "kommersant"}
	]`
	bare := json.RawMessage(articles)
	keyed := json.RawMessage(`{"status": "success", "results": ` + articles + `}`)

	fromBare, err := Normalize(bare)
	if err != nil {
		t.Fatalf("bare array: unexpected error %v", err)
	}
	fromKeyed, err := Normalize(keyed)
	if err != nil {
		t.Fatalf("keyed map: unexpected error %v", err)
	}

	if len(fromBare) != 2 || len(fromKeyed) != 2 {
		t.Fatalf("expected 2 items from both shapes, got %d and %d", len(fromBare), len(fromKeyed))
	}
	for i := range fromBare {
		if fromBare[i] != fromKeyed[i] {
			t.Errorf("item %d differs between shapes: %+v vs %+v", i, fromBare[i], fromKeyed[i])
		}
	}
	if fromBare[0].Title != "Компания расширяет производство" {
		t.Errorf("unexpected title %q", fromBare[0].Title)
	}
	if fromBare[0].PublishedAt.IsZero() {
		t.Error("expected parsed publish time")
	}
	if fromBare[0].Source != "rbc" {
		t.Errorf("unexpected source %q", fromBare[0].Source)
	}
}

func TestNormalizeMalformedShapes(t *testing.T) {
	cases := []string{
		`42`,
		`"just a string"`,
		`{"status": "error"}`,
		`{"results": "not an array"}`,
	}

	for _, c := range cases {
		_, err := Normalize(json.RawMessage(c))
		if err == nil {
			t.Errorf("Normalize(%s): expected error", c)
			continue
		}
		var pe *types.ProviderError
		if !errors.As(err, &pe) || pe.Kind != types.KindMalformed {
			t.Errorf("Normalize(%s): expected malformed provider error, got %v", c, err)
		}
	}
}

func TestNormalizeSkipsUntitledArticles(t *testing.T) {
	raw := json.RawMessage(`[{"title": "  "}, {"title": "Настоящая новость"}]`)

	items, err := Normalize(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Title != "Настоящая новость" {
		t.Errorf("unexpected title %q", items[0].Title)
	}
}

func TestNormalizeEmptyArrayIsValid(t *testing.T) {
	items, err := Normalize(json.RawMessage(`[]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

func TestParsePubDateFormats(t *testing.T) {
	if parsePubDate("2024-05-01 10:30:00").IsZero() {
		t.Error("provider format should parse")
	}
	if parsePubDate("2024-05-01T10:30:00Z").IsZero() {
		t.Error("RFC3339 should parse")
	}
	if !parsePubDate("yesterday").IsZero() {
		t.Error("unknown format should yield zero time")
	}
}

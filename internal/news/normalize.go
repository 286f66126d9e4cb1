package news

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"astro-forecast-bot/internal/types"
)

// rawArticle covers the article fields of both known payload shapes.
type rawArticle struct {
	Title    string `json:"title"`
	PubDate  string `json:"pubDate"`
	SourceID string `json:"source_id"`
	Source   string `json:"source"`
}

var errUnusableShape = errors.New("news payload has no recognizable shape")

// Normalize turns a raw provider payload into NewsItems. The payload is
// either a bare array of articles or an object with a "results" array; the
// shape is checked before any field access. Any other shape is an error, and
// the caller treats it as "no items", never as a crash.
func Normalize(raw json.RawMessage) ([]types.NewsItem, error) {
	var articles []rawArticle

	// a bare array first: treating it as a keyed map was the historical
	// failure mode here
	if err := json.Unmarshal(raw, &articles); err != nil {
		var keyed struct {
			Results []rawArticle `json:"results"`
		}
		if err := json.Unmarshal(raw, &keyed); err != nil || keyed.Results == nil {
			return nil, types.NewProviderError(providerName, types.KindMalformed, errUnusableShape)
		}
		articles = keyed.Results
	}

	items := make([]types.NewsItem, 0, len(articles))
	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		source := a.SourceID
		if source == "" {
			source = a.Source
		}
		items = append(items, types.NewsItem{
			Title:       title,
			PublishedAt: parsePubDate(a.PubDate),
			Source:      source,
		})
	}
	return items, nil
}

// parsePubDate accepts the provider's "2006-01-02 15:04:05" format and
// RFC3339; anything else yields a zero time.
func parsePubDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	edlib "github.com/hbollon/go-edlib"

	"github.com/vmunix/recgo/internal/cache"
	"github.com/vmunix/recgo/pkg/tmdb"
	"github.com/vmunix/recgo/pkg/textnorm"
)

// Confidence buckets a match score.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// Match is one ranked result of a title resolution.
type Match struct {
	Identity   Identity
	Title      string
	Year       int
	Score      float64
	Confidence Confidence
}

// Resolve searches the provider for a title and ranks results by
// Jaro-Winkler similarity against the query. Jaro-Winkler favors prefix
// matches, which suits media titles. Search responses are cached briefly.
func (s *Service) Resolve(ctx context.Context, query string) ([]Match, error) {
	items, err := s.search(ctx, query)
	if err != nil {
		return nil, err
	}

	cleanQuery := textnorm.CleanTitle(query)

	matches := make([]Match, 0, len(items))
	for _, item := range items {
		t, err := ParseMediaType(item.MediaType)
		if err != nil {
			continue
		}
		score := float64(edlib.JaroWinklerSimilarity(cleanQuery, textnorm.CleanTitle(item.DisplayTitle())))
		matches = append(matches, Match{
			Identity:   Identity{Type: t, ID: item.ID},
			Title:      item.DisplayTitle(),
			Year:       item.Year(),
			Score:      score,
			Confidence: confidenceFor(score),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

func confidenceFor(score float64) Confidence {
	switch {
	case score >= 0.95:
		return ConfidenceHigh
	case score >= 0.85:
		return ConfidenceMedium
	case score >= 0.70:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

func (s *Service) search(ctx context.Context, query string) ([]tmdb.ListItem, error) {
	key := cache.SearchKey(query)

	if data, ok := s.cache.Get(ctx, key); ok {
		var items []tmdb.ListItem
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
	}

	items, err := s.client.SearchMulti(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	if data, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, key, data, cache.SearchTTL); err != nil && s.log != nil {
			s.log.Warn("failed to cache search results", "query", query, "error", err)
		}
	}
	return items, nil
}

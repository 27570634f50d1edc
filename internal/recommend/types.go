// Package recommend aggregates, scores and ranks recommendation candidates
// for one or more seed titles.
package recommend

import (
	"strings"

	"github.com/vmunix/recgo/internal/metadata"
)

// Source records which provider list surfaced a candidate.
type Source string

const (
	// SourceDirect marks candidates from the provider's dedicated
	// recommendation endpoint.
	SourceDirect Source = "direct"
	// SourceSimilar marks candidates from the content-similarity endpoint.
	SourceSimilar Source = "similar"
)

// Candidate is one ranked recommendation.
type Candidate struct {
	Identity   metadata.Identity  `json:"identity"`
	Source     Source             `json:"source"` // first source encountered
	Score      float64            `json:"score"`
	MatchCount int                `json:"match_count"` // independent paths that surfaced it
	ViaTitle   string             `json:"via_title,omitempty"`
	Metadata   *metadata.Metadata `json:"metadata"`
	Patterns   []string           `json:"patterns,omitempty"`
	Breakdown  Breakdown          `json:"breakdown"`
}

// Seed describes one resolved input title, kept for display alongside the
// results.
type Seed struct {
	Identity metadata.Identity  `json:"identity"`
	Title    string             `json:"title"`
	Genres   []metadata.Genre   `json:"genres,omitempty"`
	Keywords []metadata.Keyword `json:"keywords,omitempty"`
	Patterns []string           `json:"patterns,omitempty"`
}

// Result is the final ranked, deduplicated recommendation list.
type Result struct {
	Seeds      []Seed      `json:"seeds"`
	Candidates []Candidate `json:"candidates"`
}

// Filters are caller-supplied post-filters, applied after ranking so the
// cap reflects the best matches under the filter.
type Filters struct {
	// MinRating drops candidates with a vote average below it (0 disables).
	MinRating float64
	// YearFrom / YearTo bound the candidate's year (0 disables each bound).
	YearFrom int
	YearTo   int
	// ExcludedGenres drops candidates carrying any of these genre names
	// (case-insensitive).
	ExcludedGenres []string
	// ContentRatings, when non-empty, is an allow-list of certification
	// codes; candidates without a listed rating are dropped.
	ContentRatings []string
}

func (f Filters) empty() bool {
	return f.MinRating == 0 && f.YearFrom == 0 && f.YearTo == 0 &&
		len(f.ExcludedGenres) == 0 && len(f.ContentRatings) == 0
}

func (f Filters) allows(c Candidate) bool {
	m := c.Metadata
	if f.MinRating > 0 && m.VoteAverage < f.MinRating {
		return false
	}
	if year := m.Year(); year > 0 {
		if f.YearFrom > 0 && year < f.YearFrom {
			return false
		}
		if f.YearTo > 0 && year > f.YearTo {
			return false
		}
	}
	for _, excluded := range f.ExcludedGenres {
		for _, g := range m.Genres {
			if strings.EqualFold(g.Name, excluded) {
				return false
			}
		}
	}
	if len(f.ContentRatings) > 0 {
		allowed := false
		for _, r := range f.ContentRatings {
			if strings.EqualFold(m.ContentRating, r) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return true
}

// Options control one aggregation call.
type Options struct {
	// Limit caps the result list below the fixed cap of 20; 0 or anything
	// above the cap means the cap.
	Limit int
	// SkipCache bypasses the result cache read and write for this call
	// without invalidating existing entries.
	SkipCache bool
	// Expand widens the pool one hop by fetching the recommendation lists
	// of the top direct candidates.
	Expand bool
	// Filters are applied after ranking.
	Filters Filters
}

func (o Options) limit() int {
	if o.Limit > 0 && o.Limit < resultCap {
		return o.Limit
	}
	return resultCap
}

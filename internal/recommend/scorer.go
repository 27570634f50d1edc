package recommend

import (
	"fmt"
	"math"

	"github.com/vmunix/recgo/internal/metadata"
	"github.com/vmunix/recgo/internal/pattern"
)

// Canonical scoring weights. Provenance of the candidate dominates; the
// provider's dedicated recommendation list is a far stronger signal than
// anything recomputable from metadata overlap.
const (
	WeightSource     = 0.60
	WeightGenre      = 0.20
	WeightKeyword    = 0.10
	WeightPattern    = 0.05
	WeightRating     = 0.03
	WeightPopularity = 0.01
	WeightYear       = 0.01
)

// Component values for the source signal.
const (
	sourceValueDirect  = 1.0
	sourceValueSimilar = 0.75
)

// Bayesian shrinkage constants for the rating component: small vote counts
// are pulled towards a 7.0/10 prior so statistical flukes don't outrank
// credible ratings.
const (
	ratingPriorMean  = 0.7
	ratingPriorCount = 1000
)

// keywordDenomCap caps the keyword-overlap denominator so richly tagged
// seeds are not penalized.
const keywordDenomCap = 20

// yearWindow is the proximity window in years; titles further apart score
// zero on the year axis, never negative.
const yearWindow = 10

// Weights is the immutable scoring configuration, built once at startup
// and threaded through the scorer.
type Weights struct {
	Source     float64
	Genre      float64
	Keyword    float64
	Pattern    float64
	Rating     float64
	Popularity float64
	Year       float64
}

// DefaultWeights returns the canonical weighting scheme.
func DefaultWeights() Weights {
	return Weights{
		Source:     WeightSource,
		Genre:      WeightGenre,
		Keyword:    WeightKeyword,
		Pattern:    WeightPattern,
		Rating:     WeightRating,
		Popularity: WeightPopularity,
		Year:       WeightYear,
	}
}

// Validate fails unless the weights sum to 1.0. A wrong total would skew
// every score silently, so this is a hard error, not a warning.
func (w Weights) Validate() error {
	sum := w.Source + w.Genre + w.Keyword + w.Pattern + w.Rating + w.Popularity + w.Year
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights sum to %v, want 1.0", sum)
	}
	return nil
}

// Breakdown holds the raw per-component values that went into a score.
// A value of -1 marks a component that did not apply (missing data).
type Breakdown struct {
	Source     float64 `json:"source"`
	Genre      float64 `json:"genre"`
	Keyword    float64 `json:"keyword"`
	Pattern    float64 `json:"pattern"`
	Rating     float64 `json:"rating"`
	Popularity float64 `json:"popularity"`
	Year       float64 `json:"year"`
}

// Scored pairs a title's metadata with its thematic patterns for scoring.
type Scored struct {
	Meta     *metadata.Metadata
	Patterns []string
}

// Scorer computes seed/candidate similarity as a weighted combination of
// signal components.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer, rejecting weight tables that do not sum to 1.
func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

// Score returns a similarity in [0,1] between seed and candidate, plus the
// component breakdown. Components with missing data on either side drop
// their weight from the normalization instead of zeroing the score.
func (s *Scorer) Score(seed, cand Scored, source Source) (float64, Breakdown) {
	br := Breakdown{Source: -1, Genre: -1, Keyword: -1, Pattern: -1, Rating: -1, Popularity: -1, Year: -1}

	var sum, applied float64
	add := func(weight, value float64) {
		sum += weight * value
		applied += weight
	}

	// Source provenance always applies.
	br.Source = sourceValueSimilar
	if source == SourceDirect {
		br.Source = sourceValueDirect
	}
	add(s.weights.Source, br.Source)

	if len(seed.Meta.Genres) > 0 && len(cand.Meta.Genres) > 0 {
		br.Genre = genreOverlap(seed.Meta.Genres, cand.Meta.Genres)
		add(s.weights.Genre, br.Genre)
	}

	if len(seed.Meta.Keywords) > 0 && len(cand.Meta.Keywords) > 0 {
		br.Keyword = keywordOverlap(seed.Meta.Keywords, cand.Meta.Keywords)
		add(s.weights.Keyword, br.Keyword)
	}

	if len(seed.Patterns) > 0 && len(cand.Patterns) > 0 {
		shared := pattern.Overlap(seed.Patterns, cand.Patterns)
		br.Pattern = float64(shared) / float64(max(len(seed.Patterns), len(cand.Patterns)))
		add(s.weights.Pattern, br.Pattern)
	}

	if cand.Meta.VoteCount > 0 {
		br.Rating = shrunkRating(cand.Meta.VoteAverage, cand.Meta.VoteCount)
		add(s.weights.Rating, br.Rating)

		if cand.Meta.Popularity > 0 {
			br.Popularity = popularityAdjustment(cand.Meta, br.Rating)
			add(s.weights.Popularity, br.Popularity)
		}
	}

	if seed.Meta.Year() > 0 && cand.Meta.Year() > 0 {
		br.Year = yearProximity(seed.Meta.Year(), cand.Meta.Year())
		add(s.weights.Year, br.Year)
	}

	if applied == 0 {
		return 0, br
	}
	return clamp01(sum / applied), br
}

// genreOverlap is |intersection| / max(|seed|, |cand|), by genre ID.
func genreOverlap(seed, cand []metadata.Genre) float64 {
	set := make(map[int64]struct{}, len(seed))
	for _, g := range seed {
		set[g.ID] = struct{}{}
	}
	shared := 0
	for _, g := range cand {
		if _, ok := set[g.ID]; ok {
			shared++
		}
	}
	return float64(shared) / float64(max(len(seed), len(cand)))
}

// keywordOverlap is |intersection| / max(1, min(|seed keywords|, 20)).
// The capped denominator keeps richly tagged seeds from diluting every
// candidate's overlap.
func keywordOverlap(seed, cand []metadata.Keyword) float64 {
	set := make(map[int64]struct{}, len(seed))
	for _, k := range seed {
		set[k.ID] = struct{}{}
	}
	shared := 0
	for _, k := range cand {
		if _, ok := set[k.ID]; ok {
			shared++
		}
	}
	denom := max(1, min(len(seed), keywordDenomCap))
	return clamp01(float64(shared) / float64(denom))
}

// shrunkRating is the Bayesian-shrunk vote average on a 0-1 scale.
func shrunkRating(voteAverage float64, voteCount int) float64 {
	n := float64(voteCount)
	return (n*(voteAverage/10) + ratingPriorCount*ratingPriorMean) / (n + ratingPriorCount)
}

// popularityAdjustment dampens very popular candidates so less mainstream
// matches can surface.
func popularityAdjustment(m *metadata.Metadata, quality float64) float64 {
	credibility := math.Min(float64(m.VoteCount)/1000, 1)
	dampener := 1 - math.Min(m.Popularity/1000, 0.9)
	return credibility * quality * dampener
}

// yearProximity is max(0, 1 - |dy| / window).
func yearProximity(seedYear, candYear int) float64 {
	dy := math.Abs(float64(seedYear - candYear))
	return math.Max(0, 1-dy/yearWindow)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

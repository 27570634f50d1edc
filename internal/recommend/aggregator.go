package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/recgo/internal/cache"
	"github.com/vmunix/recgo/internal/metadata"
	"github.com/vmunix/recgo/internal/pattern"
)

// resultCap is the fixed cap on returned candidates.
const resultCap = 20

// expandTop bounds the branching factor of chain expansion; together with
// the single-hop depth it bounds external call fan-out.
const expandTop = 3

// maxConcurrentFetches bounds the fan-out of candidate metadata fetches.
const maxConcurrentFetches = 8

//go:generate mockgen -destination mocks/fetcher.go -package mocks github.com/vmunix/recgo/internal/recommend Fetcher

// Fetcher resolves identities to normalized metadata.
// metadata.Service satisfies it.
type Fetcher interface {
	Get(ctx context.Context, id metadata.Identity) (*metadata.Metadata, error)
	GetFresh(ctx context.Context, id metadata.Identity) (*metadata.Metadata, error)
}

// Aggregator gathers, scores, deduplicates and ranks recommendation
// candidates for one or more seeds.
type Aggregator struct {
	fetcher Fetcher
	scorer  *Scorer
	cache   cache.Store
	log     *slog.Logger
}

// New creates an Aggregator.
func New(fetcher Fetcher, scorer *Scorer, store cache.Store, log *slog.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		scorer:  scorer,
		cache:   store,
		log:     log,
	}
}

// occurrence is one sighting of a candidate identity via some path.
type occurrence struct {
	id      metadata.Identity
	source  Source
	seedIdx int // index into the resolved seeds
	via     string
}

// accumulator merges repeated sightings of one identity. Scores are kept
// as (sum, count) and averaged at read time, so the mean does not depend
// on merge order.
type accumulator struct {
	scoreSum  float64
	count     int
	source    Source
	via       string
	breakdown Breakdown
}

// Recommend aggregates ranked recommendations for the given seeds.
// Per-candidate failures are logged and dropped; the call fails only when
// no seed at all could be resolved.
func (a *Aggregator) Recommend(ctx context.Context, seedIDs []metadata.Identity, opts Options) (*Result, error) {
	if len(seedIDs) == 0 {
		return nil, ErrNoSeeds
	}
	for _, id := range seedIDs {
		if !id.Type.Valid() {
			return nil, fmt.Errorf("%w: %q", metadata.ErrInvalidMediaType, id.Type)
		}
	}

	// The result cache holds the full ranked list for single-seed,
	// non-expanded calls; multi-seed key space is unbounded and expansion
	// changes the pool, so neither is cached.
	cacheable := len(seedIDs) == 1 && !opts.Expand
	if cacheable && !opts.SkipCache {
		if result, ok := a.cachedResult(ctx, seedIDs[0]); ok {
			return finalize(result, opts), nil
		}
	}

	seeds, err := a.resolveSeeds(ctx, seedIDs, opts.SkipCache)
	if err != nil {
		return nil, err
	}

	occs := gather(seeds)
	if opts.Expand {
		occs = append(occs, a.expand(ctx, seedIDs, occs, opts.SkipCache)...)
	}

	resolved := a.resolveCandidates(ctx, seedIDs, occs, opts.SkipCache)

	candidates := a.scoreAndMerge(seeds, occs, resolved)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].MatchCount != candidates[j].MatchCount {
			return candidates[i].MatchCount > candidates[j].MatchCount
		}
		return candidates[i].Identity.ID < candidates[j].Identity.ID
	})

	result := &Result{
		Seeds:      seedInfos(seeds),
		Candidates: candidates,
	}

	if cacheable && !opts.SkipCache {
		a.storeResult(ctx, seedIDs[0], result)
	}

	return finalize(result, opts), nil
}

// resolveSeeds fetches all seed metadata concurrently. Individual failures
// are tolerated and logged; total failure is fatal.
func (a *Aggregator) resolveSeeds(ctx context.Context, ids []metadata.Identity, skipCache bool) ([]Scored, error) {
	metas := make([]*metadata.Metadata, len(ids))
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, id := range ids {
		g.Go(func() error {
			metas[i], errs[i] = a.fetch(gctx, id, skipCache)
			return nil
		})
	}
	_ = g.Wait()

	var seeds []Scored
	var lastErr error
	for i, meta := range metas {
		if errs[i] != nil {
			lastErr = errs[i]
			if a.log != nil {
				a.log.Warn("failed to resolve seed", "identity", ids[i].String(), "error", errs[i])
			}
			continue
		}
		seeds = append(seeds, Scored{
			Meta:     meta,
			Patterns: pattern.Classify(meta.Text()),
		})
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrSeedsUnresolved, lastErr)
	}
	return seeds, nil
}

// gather collects the raw candidate lists of every resolved seed, tagged
// with source and originating seed.
func gather(seeds []Scored) []occurrence {
	var occs []occurrence
	for i, seed := range seeds {
		for _, id := range seed.Meta.Recommendations {
			occs = append(occs, occurrence{id: id, source: SourceDirect, seedIdx: i})
		}
		for _, id := range seed.Meta.Similar {
			occs = append(occs, occurrence{id: id, source: SourceSimilar, seedIdx: i})
		}
	}
	return occs
}

// expand performs the single-hop chain expansion: the first expandTop
// unique direct candidates have their own recommendation lists fetched,
// and newly discovered identities carry a via-reference to the
// intermediate title. Depth is fixed at one extra hop; this is a bounded
// frontier walk, never recursion.
func (a *Aggregator) expand(ctx context.Context, seedIDs []metadata.Identity, occs []occurrence, skipCache bool) []occurrence {
	visited := make(map[metadata.Identity]struct{}, len(occs)+len(seedIDs))
	for _, id := range seedIDs {
		visited[id] = struct{}{}
	}
	for _, occ := range occs {
		visited[occ.id] = struct{}{}
	}

	// Frontier: first N unique direct candidates in discovery order.
	type hop struct {
		id      metadata.Identity
		seedIdx int
	}
	var frontier []hop
	picked := make(map[metadata.Identity]struct{}, expandTop)
	for _, occ := range occs {
		if occ.source != SourceDirect {
			continue
		}
		if _, ok := picked[occ.id]; ok {
			continue
		}
		picked[occ.id] = struct{}{}
		frontier = append(frontier, hop{id: occ.id, seedIdx: occ.seedIdx})
		if len(frontier) == expandTop {
			break
		}
	}

	metas := make([]*metadata.Metadata, len(frontier))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, h := range frontier {
		g.Go(func() error {
			meta, err := a.fetch(gctx, h.id, skipCache)
			if err != nil {
				if a.log != nil {
					a.log.Debug("skipping expansion hop", "identity", h.id.String(), "error", err)
				}
				return nil
			}
			metas[i] = meta
			return nil
		})
	}
	_ = g.Wait()

	var extra []occurrence
	for i, meta := range metas {
		if meta == nil {
			continue
		}
		for _, id := range meta.Recommendations {
			if _, ok := visited[id]; ok {
				continue
			}
			visited[id] = struct{}{}
			extra = append(extra, occurrence{
				id:      id,
				source:  SourceDirect,
				seedIdx: frontier[i].seedIdx,
				via:     meta.Title,
			})
		}
	}
	if a.log != nil && len(extra) > 0 {
		a.log.Debug("chain expansion added candidates", "hops", len(frontier), "added", len(extra))
	}
	return extra
}

// resolveCandidates fetches metadata for every unique candidate identity
// concurrently, excluding seed identities. Failures drop the single
// candidate, never the batch; the merge that follows is serialized after
// the join, so no locking is needed here beyond slot-per-goroutine writes.
func (a *Aggregator) resolveCandidates(ctx context.Context, seedIDs []metadata.Identity, occs []occurrence, skipCache bool) map[metadata.Identity]Scored {
	seedSet := make(map[metadata.Identity]struct{}, len(seedIDs))
	for _, id := range seedIDs {
		seedSet[id] = struct{}{}
	}

	var unique []metadata.Identity
	seen := make(map[metadata.Identity]struct{}, len(occs))
	for _, occ := range occs {
		if _, isSeed := seedSet[occ.id]; isSeed {
			continue // never recommend an input back to itself
		}
		if _, ok := seen[occ.id]; ok {
			continue
		}
		seen[occ.id] = struct{}{}
		unique = append(unique, occ.id)
	}

	metas := make([]*metadata.Metadata, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, id := range unique {
		g.Go(func() error {
			meta, err := a.fetch(gctx, id, skipCache)
			if err != nil {
				if a.log != nil {
					if errors.Is(err, metadata.ErrNotFound) {
						a.log.Debug("candidate not found, skipping", "identity", id.String())
					} else {
						a.log.Warn("failed to resolve candidate, skipping", "identity", id.String(), "error", err)
					}
				}
				return nil
			}
			metas[i] = meta
			return nil
		})
	}
	_ = g.Wait()

	resolved := make(map[metadata.Identity]Scored, len(unique))
	for i, meta := range metas {
		if meta == nil {
			continue
		}
		resolved[unique[i]] = Scored{
			Meta:     meta,
			Patterns: pattern.Classify(meta.Text()),
		}
	}
	return resolved
}

// scoreAndMerge scores every occurrence against its originating seed and
// merges repeated sightings of one identity into a single candidate with
// an order-independent running mean and a match count.
func (a *Aggregator) scoreAndMerge(seeds []Scored, occs []occurrence, resolved map[metadata.Identity]Scored) []Candidate {
	accs := make(map[metadata.Identity]*accumulator, len(resolved))
	var order []metadata.Identity

	for _, occ := range occs {
		cand, ok := resolved[occ.id]
		if !ok {
			continue
		}
		score, breakdown := a.scorer.Score(seeds[occ.seedIdx], cand, occ.source)

		acc, ok := accs[occ.id]
		if !ok {
			accs[occ.id] = &accumulator{
				scoreSum:  score,
				count:     1,
				source:    occ.source,
				via:       occ.via,
				breakdown: breakdown,
			}
			order = append(order, occ.id)
			continue
		}
		acc.scoreSum += score
		acc.count++
	}

	candidates := make([]Candidate, 0, len(order))
	for _, id := range order {
		acc := accs[id]
		cand := resolved[id]
		candidates = append(candidates, Candidate{
			Identity:   id,
			Source:     acc.source,
			Score:      acc.scoreSum / float64(acc.count),
			MatchCount: acc.count,
			ViaTitle:   acc.via,
			Metadata:   cand.Meta,
			Patterns:   cand.Patterns,
			Breakdown:  acc.breakdown,
		})
	}
	return candidates
}

func (a *Aggregator) fetch(ctx context.Context, id metadata.Identity, skipCache bool) (*metadata.Metadata, error) {
	if skipCache {
		return a.fetcher.GetFresh(ctx, id)
	}
	return a.fetcher.Get(ctx, id)
}

func seedInfos(seeds []Scored) []Seed {
	out := make([]Seed, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, Seed{
			Identity: s.Meta.Identity,
			Title:    s.Meta.Title,
			Genres:   s.Meta.Genres,
			Keywords: s.Meta.Keywords,
			Patterns: s.Patterns,
		})
	}
	return out
}

// finalize applies post-filters and the cap to a ranked result. Filters
// run after ranking so the cap reflects the best matches under the filter.
func finalize(result *Result, opts Options) *Result {
	out := &Result{Seeds: result.Seeds}
	limit := opts.limit()
	for _, cand := range result.Candidates {
		if !opts.Filters.empty() && !opts.Filters.allows(cand) {
			continue
		}
		out.Candidates = append(out.Candidates, cand)
		if len(out.Candidates) == limit {
			break
		}
	}
	return out
}

func (a *Aggregator) cachedResult(ctx context.Context, seed metadata.Identity) (*Result, bool) {
	key := cache.RecommendationsKey(string(seed.Type), seed.ID)
	data, ok := a.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		if a.log != nil {
			a.log.Warn("failed to unmarshal cached result", "key", key)
		}
		return nil, false
	}
	if a.log != nil {
		a.log.Debug("cache hit for recommendations", "identity", seed.String(), "candidates", len(result.Candidates))
	}
	return &result, true
}

func (a *Aggregator) storeResult(ctx context.Context, seed metadata.Identity, result *Result) {
	data, err := json.Marshal(result)
	if err != nil {
		if a.log != nil {
			a.log.Warn("failed to marshal result for cache", "identity", seed.String(), "error", err)
		}
		return
	}
	key := cache.RecommendationsKey(string(seed.Type), seed.ID)
	if err := a.cache.Set(ctx, key, data, cache.RecommendationsTTL); err != nil && a.log != nil {
		a.log.Warn("failed to cache result", "identity", seed.String(), "error", err)
	}
}

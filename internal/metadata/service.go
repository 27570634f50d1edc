package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/recgo/internal/cache"
	"github.com/vmunix/recgo/pkg/tmdb"
)

// Service provides cached access to normalized TMDB metadata.
type Service struct {
	client *tmdb.Client
	cache  cache.Store
	log    *slog.Logger
}

// NewService creates a new metadata service.
func NewService(client *tmdb.Client, store cache.Store, log *slog.Logger) *Service {
	return &Service{
		client: client,
		cache:  store,
		log:    log,
	}
}

// Get fetches normalized metadata for one identity, consulting the cache
// first. Cache failures degrade to a miss and never fail the call.
func (s *Service) Get(ctx context.Context, id Identity) (*Metadata, error) {
	if !id.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, id.Type)
	}

	key := cache.MediaKey(string(id.Type), id.ID)

	if data, ok := s.cache.Get(ctx, key); ok {
		var meta Metadata
		if err := json.Unmarshal(data, &meta); err == nil {
			if s.log != nil {
				s.log.Debug("cache hit for metadata", "identity", id.String(), "title", meta.Title)
			}
			return &meta, nil
		}
		// Corrupt entry: treat as miss and fetch fresh data
		if s.log != nil {
			s.log.Warn("failed to unmarshal cached metadata", "identity", id.String())
		}
	}

	if s.log != nil {
		s.log.Debug("cache miss for metadata, calling API", "identity", id.String())
	}

	meta, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(meta)
	if err != nil {
		if s.log != nil {
			s.log.Warn("failed to marshal metadata for cache", "identity", id.String(), "error", err)
		}
		return meta, nil
	}
	if err := s.cache.Set(ctx, key, data, cache.MetadataTTL); err != nil {
		if s.log != nil {
			s.log.Warn("failed to cache metadata", "identity", id.String(), "error", err)
		}
	}

	return meta, nil
}

// GetFresh fetches metadata bypassing both cache read and write. Existing
// entries are left untouched for other callers.
func (s *Service) GetFresh(ctx context.Context, id Identity) (*Metadata, error) {
	if !id.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, id.Type)
	}
	return s.fetch(ctx, id)
}

// Invalidate removes the cached metadata and recommendation entries for an
// identity.
func (s *Service) Invalidate(ctx context.Context, id Identity) error {
	var errs []error
	if err := s.cache.Delete(ctx, cache.MediaKey(string(id.Type), id.ID)); err != nil {
		errs = append(errs, fmt.Errorf("delete metadata cache: %w", err))
	}
	if err := s.cache.Delete(ctx, cache.RecommendationsKey(string(id.Type), id.ID)); err != nil {
		errs = append(errs, fmt.Errorf("delete recommendations cache: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalidate %s: %v", id.String(), errs)
	}
	if s.log != nil {
		s.log.Debug("invalidated cache", "identity", id.String())
	}
	return nil
}

// fetch resolves one identity against the provider. Movies arrive in a
// single combined call; shows need the recommendation and similar lists
// fetched separately, which is done concurrently.
func (s *Service) fetch(ctx context.Context, id Identity) (*Metadata, error) {
	switch id.Type {
	case TypeMovie:
		movie, err := s.client.GetMovie(ctx, id.ID)
		if err != nil {
			return nil, mapError(err, id)
		}
		return fromMovie(movie), nil

	case TypeTV:
		var (
			show          *tmdb.Show
			recs, similar []tmdb.ListItem
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			show, err = s.client.GetShow(gctx, id.ID)
			return err
		})
		g.Go(func() error {
			var err error
			recs, err = s.client.GetShowRecommendations(gctx, id.ID)
			return err
		})
		g.Go(func() error {
			var err error
			similar, err = s.client.GetShowSimilar(gctx, id.ID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, mapError(err, id)
		}
		return fromShow(show, recs, similar), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, id.Type)
	}
}

// mapError translates provider sentinels into this package's taxonomy.
func mapError(err error, id Identity) error {
	if errors.Is(err, tmdb.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id.String())
	}
	return fmt.Errorf("fetch %s: %w", id.String(), err)
}

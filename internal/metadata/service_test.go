package metadata

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/recgo/internal/cache"
	"github.com/vmunix/recgo/pkg/tmdb"

	_ "modernc.org/sqlite"
)

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupCache(t *testing.T) *cache.SQLite {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := cache.NewSQLite(db)
	require.NoError(t, store.Init(context.Background()))
	return store
}

const fightClubJSON = `{
	"id": 550,
	"title": "Fight Club",
	"overview": "An insomniac office worker...",
	"release_date": "1999-10-15",
	"vote_average": 8.4,
	"vote_count": 26000,
	"popularity": 61.4,
	"genres": [{"id": 18, "name": "Drama"}],
	"keywords": {"keywords": [{"id": 825, "name": "support group"}]},
	"recommendations": {"results": [{"id": 807, "title": "Se7en"}]},
	"similar": {"results": [{"id": 1124, "title": "The Prestige"}]},
	"release_dates": {"results": [{"iso_3166_1": "US", "release_dates": [{"certification": "R"}]}]}
}`

func TestService_Get_Movie_CachesResult(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/3/movie/550", r.URL.Path)
		_, _ = w.Write([]byte(fightClubJSON))
	}))
	defer server.Close()

	svc := NewService(tmdb.New("k", tmdb.WithBaseURL(server.URL)), setupCache(t), testLogger())
	ctx := context.Background()
	id := Identity{Type: TypeMovie, ID: 550}

	meta, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", meta.Title)
	assert.Equal(t, 1999, meta.Year())
	assert.Equal(t, "R", meta.ContentRating)
	assert.Equal(t, []Identity{{Type: TypeMovie, ID: 807}}, meta.Recommendations)
	assert.Equal(t, []Identity{{Type: TypeMovie, ID: 1124}}, meta.Similar)
	assert.Equal(t, int64(1), calls.Load())

	// Second call is served from cache
	again, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, meta, again)
	assert.Equal(t, int64(1), calls.Load(), "should use cache, not call API again")
}

func TestService_Get_Show_FetchesListsSeparately(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path]++
		mu.Unlock()
		switch r.URL.Path {
		case "/3/tv/1396":
			_, _ = w.Write([]byte(`{"id": 1396, "name": "Breaking Bad", "first_air_date": "2008-01-20",
				"genres": [{"id": 80, "name": "Crime"}],
				"keywords": {"results": [{"id": 1, "name": "drug cartel"}]},
				"content_ratings": {"results": [{"iso_3166_1": "US", "rating": "TV-MA"}]}}`))
		case "/3/tv/1396/recommendations":
			_, _ = w.Write([]byte(`{"results": [{"id": 60059, "name": "Better Call Saul"}]}`))
		case "/3/tv/1396/similar":
			_, _ = w.Write([]byte(`{"results": [{"id": 1398, "name": "The Sopranos"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := NewService(tmdb.New("k", tmdb.WithBaseURL(server.URL)), setupCache(t), testLogger())

	meta, err := svc.Get(context.Background(), Identity{Type: TypeTV, ID: 1396})
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad", meta.Title)
	assert.Equal(t, "TV-MA", meta.ContentRating)
	assert.Equal(t, []Identity{{Type: TypeTV, ID: 60059}}, meta.Recommendations)
	assert.Equal(t, []Identity{{Type: TypeTV, ID: 1398}}, meta.Similar)

	for _, path := range []string{"/3/tv/1396", "/3/tv/1396/recommendations", "/3/tv/1396/similar"} {
		assert.Equal(t, 1, seen[path], "expected exactly one call to %s", path)
	}
}

// faultyStore simulates a broken cache backend: reads miss, writes fail.
type faultyStore struct{}

func (faultyStore) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (faultyStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("disk full")
}

func (faultyStore) Delete(context.Context, string) error {
	return errors.New("disk full")
}

func TestService_Get_CacheFailureDegradesToMiss(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(fightClubJSON))
	}))
	defer server.Close()

	svc := NewService(tmdb.New("k", tmdb.WithBaseURL(server.URL)), faultyStore{}, testLogger())
	ctx := context.Background()
	id := Identity{Type: TypeMovie, ID: 550}

	// A broken cache must never fail the fetch
	meta, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", meta.Title)

	// Every call falls through to the API instead
	_, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestService_Get_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewService(tmdb.New("k", tmdb.WithBaseURL(server.URL)), setupCache(t), testLogger())

	_, err := svc.Get(context.Background(), Identity{Type: TypeMovie, ID: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Get_InvalidMediaType(t *testing.T) {
	svc := NewService(tmdb.New("k"), setupCache(t), testLogger())

	_, err := svc.Get(context.Background(), Identity{Type: "book", ID: 1})
	assert.ErrorIs(t, err, ErrInvalidMediaType)
}

func TestService_GetFresh_BypassesCache(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(fightClubJSON))
	}))
	defer server.Close()

	store := setupCache(t)
	svc := NewService(tmdb.New("k", tmdb.WithBaseURL(server.URL)), store, testLogger())
	ctx := context.Background()
	id := Identity{Type: TypeMovie, ID: 550}

	_, err := svc.GetFresh(ctx, id)
	require.NoError(t, err)
	_, err = svc.GetFresh(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load(), "fresh fetches should never read the cache")

	// And it did not populate the cache either
	_, ok := store.Get(ctx, cache.MediaKey("movie", 550))
	assert.False(t, ok)
}

func TestService_Invalidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fightClubJSON))
	}))
	defer server.Close()

	store := setupCache(t)
	svc := NewService(tmdb.New("k", tmdb.WithBaseURL(server.URL)), store, testLogger())
	ctx := context.Background()
	id := Identity{Type: TypeMovie, ID: 550}

	_, err := svc.Get(ctx, id)
	require.NoError(t, err)
	_, ok := store.Get(ctx, cache.MediaKey("movie", 550))
	require.True(t, ok)

	require.NoError(t, svc.Invalidate(ctx, id))
	_, ok = store.Get(ctx, cache.MediaKey("movie", 550))
	assert.False(t, ok)
}

func TestMetadata_Text(t *testing.T) {
	meta := &Metadata{
		Overview:            "A chemistry teacher turns to crime.",
		Tagline:             "All bad things must come to an end.",
		Reviews:             []string{"Gripping."},
		TranslatedOverviews: []string{"Un profesor de química."},
	}
	assert.Equal(t,
		"A chemistry teacher turns to crime. All bad things must come to an end. Gripping. Un profesor de química.",
		meta.Text())

	empty := &Metadata{}
	assert.Equal(t, "", empty.Text())
}

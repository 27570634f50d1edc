package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetMovie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/550", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, movieAppend, r.URL.Query().Get("append_to_response"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 550,
			"title": "Fight Club",
			"overview": "An insomniac office worker...",
			"tagline": "Mischief. Mayhem. Soap.",
			"release_date": "1999-10-15",
			"vote_average": 8.4,
			"vote_count": 26000,
			"popularity": 61.4,
			"genres": [{"id": 18, "name": "Drama"}],
			"keywords": {"keywords": [{"id": 825, "name": "support group"}]},
			"recommendations": {"results": [{"id": 807, "title": "Se7en", "release_date": "1995-09-22"}]},
			"similar": {"results": [{"id": 1124, "title": "The Prestige"}]},
			"release_dates": {"results": [{"iso_3166_1": "US", "release_dates": [{"certification": "R"}]}]},
			"translations": {"translations": [{"iso_639_1": "en", "data": {"overview": "Translated overview."}}]},
			"reviews": {"results": [{"author": "a", "content": "A modern classic."}]}
		}`))
	}))
	defer server.Close()

	client := New("test-token", WithBaseURL(server.URL))

	movie, err := client.GetMovie(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, int64(550), movie.ID)
	assert.Equal(t, "Fight Club", movie.Title)
	assert.Equal(t, 1999, movie.Year())
	assert.Equal(t, "R", movie.ReleaseDates.USCertification())
	assert.Equal(t, []Keyword{{ID: 825, Name: "support group"}}, movie.Keywords.All())
	require.Len(t, movie.Recommendations.Results, 1)
	assert.Equal(t, int64(807), movie.Recommendations.Results[0].ID)
	require.Len(t, movie.Similar.Results, 1)
	assert.Equal(t, []string{"Translated overview."}, movie.Translations.EnglishOverviews())
	assert.Equal(t, []string{"A modern classic."}, movie.Reviews.Bodies())
}

func TestClient_GetMovie_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	}))
	defer server.Close()

	client := New("test-token", WithBaseURL(server.URL))

	movie, err := client.GetMovie(context.Background(), 99999999)
	assert.Nil(t, movie)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_GetShow_SeparateLists(t *testing.T) {
	// Shows need three calls: details, recommendations, similar.
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/3/tv/1396":
			assert.Equal(t, showAppend, r.URL.Query().Get("append_to_response"))
			_, _ = w.Write([]byte(`{
				"id": 1396,
				"name": "Breaking Bad",
				"first_air_date": "2008-01-20",
				"vote_average": 8.9,
				"vote_count": 12000,
				"genres": [{"id": 18, "name": "Drama"}],
				"keywords": {"results": [{"id": 1, "name": "drug cartel"}]},
				"content_ratings": {"results": [{"iso_3166_1": "US", "rating": "TV-MA"}]}
			}`))
		case "/3/tv/1396/recommendations":
			_, _ = w.Write([]byte(`{"results": [{"id": 60059, "name": "Better Call Saul"}]}`))
		case "/3/tv/1396/similar":
			_, _ = w.Write([]byte(`{"results": [{"id": 1398, "name": "The Sopranos"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := New("test-token", WithBaseURL(server.URL))
	ctx := context.Background()

	show, err := client.GetShow(ctx, 1396)
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad", show.Name)
	assert.Equal(t, 2008, show.Year())
	assert.Equal(t, "TV-MA", show.ContentRatings.USRating())
	assert.Equal(t, []Keyword{{ID: 1, Name: "drug cartel"}}, show.Keywords.All())

	recs, err := client.GetShowRecommendations(ctx, 1396)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Better Call Saul", recs[0].DisplayTitle())

	similar, err := client.GetShowSimilar(ctx, 1396)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, int64(1398), similar[0].ID)

	assert.Equal(t, []string{"/3/tv/1396", "/3/tv/1396/recommendations", "/3/tv/1396/similar"}, paths)
}

func TestClient_RateLimitRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(Movie{ID: 550, Title: "Fight Club"})
	}))
	defer server.Close()

	var slept []time.Duration
	client := New("test-token",
		WithBaseURL(server.URL),
		WithSleep(func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
	)

	movie, err := client.GetMovie(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", movie.Title)
	assert.Equal(t, 2, calls, "should retry exactly once after the 429")
	assert.Equal(t, []time.Duration{2 * time.Second}, slept, "should honor Retry-After")
}

func TestClient_RateLimitRetry_DefaultDelay(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// No Retry-After header
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(Movie{ID: 550})
	}))
	defer server.Close()

	var slept []time.Duration
	client := New("test-token",
		WithBaseURL(server.URL),
		WithSleep(func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
	)

	_, err := client.GetMovie(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second}, slept)
}

func TestClient_SearchMulti_FiltersPeople(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/search/multi", r.URL.Path)
		assert.Equal(t, "breaking bad", r.URL.Query().Get("query"))
		_, _ = w.Write([]byte(`{"results": [
			{"id": 1396, "media_type": "tv", "name": "Breaking Bad"},
			{"id": 17419, "media_type": "person", "name": "Bryan Cranston"},
			{"id": 14, "media_type": "movie", "title": "American Beauty"}
		]}`))
	}))
	defer server.Close()

	client := New("test-token", WithBaseURL(server.URL))

	results, err := client.SearchMulti(context.Background(), "breaking bad")
	require.NoError(t, err)
	require.Len(t, results, 2, "person results should be dropped")
	assert.Equal(t, "tv", results[0].MediaType)
	assert.Equal(t, "movie", results[1].MediaType)
}

func TestClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New("test-token", WithBaseURL(server.URL))

	_, err := client.GetMovie(context.Background(), 550)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "500")
}

// Package metadata provides normalized title metadata with cache-backed
// access to the TMDB API.
package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vmunix/recgo/pkg/tmdb"
)

// MediaType distinguishes movies from TV shows. The distinction matters:
// the two share an ID namespace upstream only per type.
type MediaType string

const (
	TypeMovie MediaType = "movie"
	TypeTV    MediaType = "tv"
)

// Valid reports whether the media type is one this system understands.
func (t MediaType) Valid() bool {
	return t == TypeMovie || t == TypeTV
}

// ParseMediaType parses "movie" or "tv".
func ParseMediaType(s string) (MediaType, error) {
	t := MediaType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
	}
	return t, nil
}

// Identity is the primary key for all caching and deduplication.
// Two identities are equal iff both type and ID match.
type Identity struct {
	Type MediaType `json:"type"`
	ID   int64     `json:"id"`
}

func (id Identity) String() string {
	return string(id.Type) + ":" + strconv.FormatInt(id.ID, 10)
}

// Genre is a (id, name) genre pair with set semantics by ID.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Keyword is a (id, name) keyword pair with set semantics by ID.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Metadata is the normalized view of one title. It is fetched on demand,
// cached whole, and never mutated in place; a refresh replaces the cache
// entry wholesale.
type Metadata struct {
	Identity Identity `json:"identity"`
	Title    string   `json:"title"`
	Overview string   `json:"overview,omitempty"`
	Tagline  string   `json:"tagline,omitempty"`

	// ReleaseDate is the release date for movies, first-air date for shows.
	ReleaseDate string `json:"release_date,omitempty"`

	Genres   []Genre   `json:"genres,omitempty"`
	Keywords []Keyword `json:"keywords,omitempty"`

	VoteAverage   float64 `json:"vote_average"` // 0-10 scale
	VoteCount     int     `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
	ContentRating string  `json:"content_rating,omitempty"`
	PosterPath    string  `json:"poster_path,omitempty"`

	Reviews             []string `json:"reviews,omitempty"`
	TranslatedOverviews []string `json:"translated_overviews,omitempty"`

	// Raw candidate lists as returned by the provider for this title.
	Recommendations []Identity `json:"recommendations,omitempty"`
	Similar         []Identity `json:"similar,omitempty"`
}

// Year extracts the year from ReleaseDate, 0 if unknown.
func (m *Metadata) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// Text concatenates all free-text fields with single spaces, for thematic
// pattern classification. Absent fields contribute nothing.
func (m *Metadata) Text() string {
	parts := make([]string, 0, 2+len(m.Reviews)+len(m.TranslatedOverviews))
	if m.Overview != "" {
		parts = append(parts, m.Overview)
	}
	if m.Tagline != "" {
		parts = append(parts, m.Tagline)
	}
	parts = append(parts, m.Reviews...)
	parts = append(parts, m.TranslatedOverviews...)
	return strings.Join(parts, " ")
}

// PosterURL returns the full poster image URL at w500 size.
func (m *Metadata) PosterURL() string {
	return tmdb.PosterURL(m.PosterPath, "w500")
}

func fromMovie(movie *tmdb.Movie) *Metadata {
	return &Metadata{
		Identity:            Identity{Type: TypeMovie, ID: movie.ID},
		Title:               movie.Title,
		Overview:            movie.Overview,
		Tagline:             movie.Tagline,
		ReleaseDate:         movie.ReleaseDate,
		Genres:              genres(movie.Genres),
		Keywords:            keywords(movie.Keywords.All()),
		VoteAverage:         movie.VoteAverage,
		VoteCount:           movie.VoteCount,
		Popularity:          movie.Popularity,
		ContentRating:       movie.ReleaseDates.USCertification(),
		PosterPath:          movie.PosterPath,
		Reviews:             movie.Reviews.Bodies(),
		TranslatedOverviews: movie.Translations.EnglishOverviews(),
		Recommendations:     identities(TypeMovie, movie.Recommendations.Results),
		Similar:             identities(TypeMovie, movie.Similar.Results),
	}
}

func fromShow(show *tmdb.Show, recs, similar []tmdb.ListItem) *Metadata {
	return &Metadata{
		Identity:            Identity{Type: TypeTV, ID: show.ID},
		Title:               show.Name,
		Overview:            show.Overview,
		Tagline:             show.Tagline,
		ReleaseDate:         show.FirstAirDate,
		Genres:              genres(show.Genres),
		Keywords:            keywords(show.Keywords.All()),
		VoteAverage:         show.VoteAverage,
		VoteCount:           show.VoteCount,
		Popularity:          show.Popularity,
		ContentRating:       show.ContentRatings.USRating(),
		PosterPath:          show.PosterPath,
		Reviews:             show.Reviews.Bodies(),
		TranslatedOverviews: show.Translations.EnglishOverviews(),
		Recommendations:     identities(TypeTV, recs),
		Similar:             identities(TypeTV, similar),
	}
}

func genres(in []tmdb.Genre) []Genre {
	out := make([]Genre, 0, len(in))
	for _, g := range in {
		out = append(out, Genre{ID: g.ID, Name: g.Name})
	}
	return out
}

func keywords(in []tmdb.Keyword) []Keyword {
	out := make([]Keyword, 0, len(in))
	for _, k := range in {
		out = append(out, Keyword{ID: k.ID, Name: k.Name})
	}
	return out
}

func identities(t MediaType, items []tmdb.ListItem) []Identity {
	out := make([]Identity, 0, len(items))
	for _, item := range items {
		out = append(out, Identity{Type: t, ID: item.ID})
	}
	return out
}

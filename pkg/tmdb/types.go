// Package tmdb provides a client for The Movie Database API v3.
package tmdb

import "strconv"

// Genre is a TMDB genre reference.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Keyword is a TMDB keyword tag.
type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListItem is one entry of a recommendations or similar list.
// MediaType is only populated by endpoints that mix types (multi search).
type ListItem struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	PosterPath   string  `json:"poster_path"`
}

// DisplayTitle returns the movie title or the show name, whichever is set.
func (i ListItem) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Name
}

// Year extracts the year from whichever date field is populated.
func (i ListItem) Year() int {
	return yearOf(i.ReleaseDate, i.FirstAirDate)
}

type list struct {
	Results []ListItem `json:"results"`
}

// keywordList tolerates both keyword envelope shapes: movies use
// "keywords", TV uses "results".
type keywordList struct {
	Keywords []Keyword `json:"keywords"`
	Results  []Keyword `json:"results"`
}

func (k keywordList) All() []Keyword {
	if len(k.Keywords) > 0 {
		return k.Keywords
	}
	return k.Results
}

type translationList struct {
	Translations []struct {
		ISO6391 string `json:"iso_639_1"`
		Data    struct {
			Overview string `json:"overview"`
			Tagline  string `json:"tagline"`
		} `json:"data"`
	} `json:"translations"`
}

// EnglishOverviews returns the overview bodies of English-language
// translations, which TMDB lists separately from the primary overview.
func (t translationList) EnglishOverviews() []string {
	var out []string
	for _, tr := range t.Translations {
		if tr.ISO6391 == "en" && tr.Data.Overview != "" {
			out = append(out, tr.Data.Overview)
		}
	}
	return out
}

type reviewList struct {
	Results []struct {
		Author  string `json:"author"`
		Content string `json:"content"`
	} `json:"results"`
}

func (r reviewList) Bodies() []string {
	var out []string
	for _, rv := range r.Results {
		if rv.Content != "" {
			out = append(out, rv.Content)
		}
	}
	return out
}

type releaseDates struct {
	Results []struct {
		ISO31661 string `json:"iso_3166_1"`
		Releases []struct {
			Certification string `json:"certification"`
		} `json:"release_dates"`
	} `json:"results"`
}

// USCertification returns the US certification code (e.g. "PG-13"), or "".
func (r releaseDates) USCertification() string {
	for _, c := range r.Results {
		if c.ISO31661 != "US" {
			continue
		}
		for _, rel := range c.Releases {
			if rel.Certification != "" {
				return rel.Certification
			}
		}
	}
	return ""
}

type contentRatings struct {
	Results []struct {
		ISO31661 string `json:"iso_3166_1"`
		Rating   string `json:"rating"`
	} `json:"results"`
}

// USRating returns the US TV content rating (e.g. "TV-MA"), or "".
func (r contentRatings) USRating() string {
	for _, c := range r.Results {
		if c.ISO31661 == "US" && c.Rating != "" {
			return c.Rating
		}
	}
	return ""
}

// Movie is the movie detail response with its appended sub-resources.
// Recommendations and similar titles arrive in the same call.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	Tagline     string  `json:"tagline"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
	Genres      []Genre `json:"genres"`

	Keywords        keywordList     `json:"keywords"`
	Recommendations list            `json:"recommendations"`
	Similar         list            `json:"similar"`
	ReleaseDates    releaseDates    `json:"release_dates"`
	Translations    translationList `json:"translations"`
	Reviews         reviewList      `json:"reviews"`
}

// Year extracts the release year.
func (m *Movie) Year() int {
	return yearOf(m.ReleaseDate)
}

// Show is the TV detail response. Recommendations and similar titles are
// not appendable for shows and require separate calls.
type Show struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	Tagline      string  `json:"tagline"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	Genres       []Genre `json:"genres"`

	Keywords       keywordList     `json:"keywords"`
	ContentRatings contentRatings  `json:"content_ratings"`
	Translations   translationList `json:"translations"`
	Reviews        reviewList      `json:"reviews"`
}

// Year extracts the first-air year.
func (s *Show) Year() int {
	return yearOf(s.FirstAirDate)
}

// PosterURL returns the full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original.
func PosterURL(path, size string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + path
}

func yearOf(dates ...string) int {
	for _, d := range dates {
		if len(d) < 4 {
			continue
		}
		year, err := strconv.Atoi(d[:4])
		if err == nil {
			return year
		}
	}
	return 0
}

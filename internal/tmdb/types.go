// Package tmdb provides a client for The Movie Database API, used to look up
// replacement posters by title.
package tmdb

import "strconv"

// ImageBaseURL is the TMDB image CDN.
const ImageBaseURL = "https://image.tmdb.org/t/p/"

// MediaKind selects which TMDB catalogue to search.
type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
)

// Movie represents TMDB movie metadata.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"` // "2024-03-01"
	PosterPath  string  `json:"poster_path"`  // "/abc123.jpg"
	VoteAverage float64 `json:"vote_average"`
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	return yearOf(m.ReleaseDate)
}

// PosterURL returns the full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original
func (m *Movie) PosterURL(size string) string {
	return posterURL(m.PosterPath, size)
}

// Result is one search hit, movie or show.
type Result struct {
	ID         int64     `json:"id"`
	Kind       MediaKind `json:"kind"`
	Title      string    `json:"title"`
	Year       int       `json:"year,omitempty"`
	PosterPath string    `json:"poster_path,omitempty"`
	Popularity float64   `json:"popularity"`

	// Score is the title similarity to the query, 0 to 1.
	Score float64 `json:"score"`
}

// PosterURL returns the full poster image URL.
func (r *Result) PosterURL(size string) string {
	return posterURL(r.PosterPath, size)
}

// searchResponse is the JSON body of /3/search/movie and /3/search/tv.
type searchResponse struct {
	Page    int           `json:"page"`
	Results []searchEntry `json:"results"`
}

type searchEntry struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`          // movies
	Name         string  `json:"name"`           // tv
	ReleaseDate  string  `json:"release_date"`   // movies
	FirstAirDate string  `json:"first_air_date"` // tv
	PosterPath   string  `json:"poster_path"`
	Popularity   float64 `json:"popularity"`
}

func (e searchEntry) result(kind MediaKind) Result {
	r := Result{ID: e.ID, Kind: kind, PosterPath: e.PosterPath, Popularity: e.Popularity}
	if kind == KindTV {
		r.Title = e.Name
		r.Year = yearOf(e.FirstAirDate)
	} else {
		r.Title = e.Title
		r.Year = yearOf(e.ReleaseDate)
	}
	return r
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func posterURL(path, size string) string {
	if path == "" {
		return ""
	}
	return ImageBaseURL + size + path
}

// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package tmdb

import (
	"strconv"

	"reelquest/internal/models"
)

// Page is the common paging envelope on TMDB list responses.
type Page struct {
	Page         int `json:"page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// MultiResult is a hit from /search/multi. MediaType distinguishes movie, tv
// and person rows; person rows only populate the person fields.
type MultiResult struct {
	ID        int    `json:"id"`
	MediaType string `json:"media_type"` // movie, tv, person

	// Movie fields.
	Title       string `json:"title,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`

	// TV fields.
	Name         string `json:"name,omitempty"`
	FirstAirDate string `json:"first_air_date,omitempty"`

	Overview         string  `json:"overview,omitempty"`
	VoteAverage      float64 `json:"vote_average,omitempty"`
	VoteCount        int     `json:"vote_count,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	Popularity       float64 `json:"popularity,omitempty"`
}

// DisplayTitle returns the title for movies and the name for TV/person rows.
func (r MultiResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Year returns the release year, or 0 when unknown.
func (r MultiResult) Year() int {
	return yearOf(r.ReleaseDate, r.FirstAirDate)
}

// SearchMultiResponse is the /search/multi envelope.
type SearchMultiResponse struct {
	Page
	Results []MultiResult `json:"results"`
}

// MediaResult is a hit from /discover, /similar or /recommendations.
type MediaResult struct {
	ID               int     `json:"id"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	VoteAverage      float64 `json:"vote_average,omitempty"`
	VoteCount        int     `json:"vote_count,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	Popularity       float64 `json:"popularity,omitempty"`
}

// DisplayTitle returns the title for movies and the name for TV rows.
func (r MediaResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Year returns the release year, or 0 when unknown.
func (r MediaResult) Year() int {
	return yearOf(r.ReleaseDate, r.FirstAirDate)
}

// MediaPageResponse is the envelope for discover/similar/recommendations.
type MediaPageResponse struct {
	Page
	Results []MediaResult `json:"results"`
}

// Genre is one entry from /genre/{movie,tv}/list.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponse is the /genre/{movie,tv}/list envelope.
type GenreListResponse struct {
	Genres []Genre `json:"genres"`
}

// MovieDetails is the subset of /movie/{id} the pipeline consumes; the only
// field discovery cannot get from list pages is the runtime.
type MovieDetails struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Runtime int    `json:"runtime"`
}

// apiError is TMDB's error envelope.
type apiError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// ToCandidate converts a list-page hit into a pipeline candidate.
func (r MediaResult) ToCandidate(mt models.MediaType, source models.SourceConfidence) models.Candidate {
	return models.Candidate{
		Key:              models.CandidateKey{MediaType: mt, CatalogID: r.ID},
		Name:             r.DisplayTitle(),
		Overview:         r.Overview,
		VoteAverage:      r.VoteAverage,
		VoteCount:        r.VoteCount,
		Year:             r.Year(),
		PosterPath:       r.PosterPath,
		OriginalLanguage: r.OriginalLanguage,
		Source:           source,
	}
}

// yearOf parses the year from the first non-empty YYYY-MM-DD date.
func yearOf(dates ...string) int {
	for _, d := range dates {
		if len(d) >= 4 {
			if y, err := strconv.Atoi(d[:4]); err == nil {
				return y
			}
		}
	}
	return 0
}

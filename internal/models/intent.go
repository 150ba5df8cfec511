// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package models defines the core value types flowing through the discovery
// pipeline: Intent (what the user asked for), Candidate (a catalog entry under
// evaluation) and RankedResult (a scored, explained candidate).
package models

// MediaType identifies the kind of catalog entry.
type MediaType string

const (
	// MediaTypeMovie is a feature film.
	MediaTypeMovie MediaType = "movie"
	// MediaTypeShow is a TV series. The catalog API calls this "tv";
	// ParseMediaType normalizes both spellings.
	MediaTypeShow MediaType = "show"
)

// ParseMediaType normalizes a catalog media-type string.
// Returns the parsed type and whether it is one we handle.
func ParseMediaType(s string) (MediaType, bool) {
	switch s {
	case "movie":
		return MediaTypeMovie, true
	case "tv", "show":
		return MediaTypeShow, true
	default:
		return "", false
	}
}

// Intent is the structured representation of a parsed natural-language query.
// It is produced once per request by the intent extractor and never mutated.
type Intent struct {
	// Titles are explicitly named titles, in the order mentioned.
	Titles []string `json:"titles,omitempty"`

	// People are explicitly named actors, directors or other credits.
	People []string `json:"people,omitempty"`

	// Genres are explicit genre names ("comedy", "science fiction").
	Genres []string `json:"genres,omitempty"`

	// Moods are softer tonal cues ("feel-good", "dark") mapped to genre
	// keywords during discovery.
	Moods []string `json:"moods,omitempty"`

	// YearFrom and YearTo bound the requested release window. Nil means
	// unbounded on that side.
	YearFrom *int `json:"year_from,omitempty"`
	YearTo   *int `json:"year_to,omitempty"`

	// RuntimeMaxMinutes is the requested runtime ceiling, if any.
	RuntimeMaxMinutes *int `json:"runtime_max_minutes,omitempty"`

	// MediaTypes restricts results to a subset of {movie, show}.
	// Empty means both.
	MediaTypes []MediaType `json:"media_types,omitempty"`

	// RequestedCount is how many results the user asked for, if stated.
	RequestedCount *int `json:"requested_count,omitempty"`

	// Language is an inferred or explicit original-language preference
	// (ISO 639-1, e.g. "en"). Empty means no preference.
	Language string `json:"language,omitempty"`

	// RequestingSuggestions is true when the user wants recommendations
	// rather than a direct title lookup ("movies like X" vs. "X").
	RequestingSuggestions bool `json:"requesting_suggestions"`
}

// DefaultIntent returns the intent used when extraction fails: everything
// empty and suggestions requested, so the pipeline degrades to an
// unconstrained discovery search instead of aborting.
func DefaultIntent() Intent {
	return Intent{RequestingSuggestions: true}
}

// WantsMovies reports whether movie results are in scope.
func (in Intent) WantsMovies() bool {
	return in.WantsType(MediaTypeMovie)
}

// WantsShows reports whether TV results are in scope.
func (in Intent) WantsShows() bool {
	return in.WantsType(MediaTypeShow)
}

// WantsType reports whether the given media type is in scope.
func (in Intent) WantsType(mt MediaType) bool {
	if len(in.MediaTypes) == 0 {
		return true
	}
	for _, t := range in.MediaTypes {
		if t == mt {
			return true
		}
	}
	return false
}

// HasYearRange reports whether at least one year bound was given.
func (in Intent) HasYearRange() bool {
	return in.YearFrom != nil || in.YearTo != nil
}

// TargetYear returns the single year the intent centers on and whether one
// exists. When both bounds are set the midpoint is used; exact-match year
// checks use this value.
func (in Intent) TargetYear() (int, bool) {
	switch {
	case in.YearFrom != nil && in.YearTo != nil:
		return (*in.YearFrom + *in.YearTo) / 2, true
	case in.YearFrom != nil:
		return *in.YearFrom, true
	case in.YearTo != nil:
		return *in.YearTo, true
	default:
		return 0, false
	}
}

// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

// CandidateKey uniquely identifies a catalog entry across discovery sources.
type CandidateKey struct {
	MediaType MediaType `json:"media_type"`
	CatalogID int       `json:"catalog_id"`
}

// Candidate is a catalog entry under evaluation. Candidates are created
// during resolution and discovery, mutated only while merging (accumulating
// matched-signal sets) and treated as immutable once ranking begins.
type Candidate struct {
	// Key is the unique (mediaType, catalogId) identity.
	Key CandidateKey `json:"key"`

	// Name is the display title.
	Name string `json:"name"`

	// Overview is the catalog synopsis, used for theme-overlap scoring.
	Overview string `json:"overview"`

	// VoteAverage is the catalog rating (0-10).
	VoteAverage float64 `json:"vote_average"`

	// VoteCount is the number of catalog votes.
	VoteCount int `json:"vote_count"`

	// Year is the release year, 0 when unknown.
	Year int `json:"year"`

	// PosterPath is the catalog poster reference.
	PosterPath string `json:"poster_path,omitempty"`

	// OriginalLanguage is the ISO 639-1 original language code.
	OriginalLanguage string `json:"original_language,omitempty"`

	// RuntimeMinutes is the runtime when known, 0 when unknown.
	RuntimeMinutes int `json:"runtime_minutes,omitempty"`

	// MatchedGenreIDs are genre ids this candidate matched during discovery.
	MatchedGenreIDs map[int]struct{} `json:"-"`

	// MatchedPersonIDs are person ids this candidate matched during discovery.
	MatchedPersonIDs map[int]struct{} `json:"-"`

	// MoodMatched is true when the genre signal arrived via mood mapping
	// rather than an explicit genre; the ranker grants partial credit.
	MoodMatched bool `json:"-"`

	// Source is the strongest discovery source that surfaced this candidate.
	Source SourceConfidence `json:"source"`
}

// AddGenreMatch records a matched genre id.
func (c *Candidate) AddGenreMatch(id int) {
	if c.MatchedGenreIDs == nil {
		c.MatchedGenreIDs = make(map[int]struct{})
	}
	c.MatchedGenreIDs[id] = struct{}{}
}

// AddPersonMatch records a matched person id.
func (c *Candidate) AddPersonMatch(id int) {
	if c.MatchedPersonIDs == nil {
		c.MatchedPersonIDs = make(map[int]struct{})
	}
	c.MatchedPersonIDs[id] = struct{}{}
}

// Absorb merges signal annotations from another sighting of the same catalog
// entry. Base fields stay with the receiver; the caller is responsible for
// keeping the higher-confidence instance as the receiver.
func (c *Candidate) Absorb(other *Candidate) {
	for id := range other.MatchedGenreIDs {
		c.AddGenreMatch(id)
	}
	for id := range other.MatchedPersonIDs {
		c.AddPersonMatch(id)
	}
	c.MoodMatched = c.MoodMatched || other.MoodMatched
	// Fill gaps the stronger source did not carry (e.g. discover pages omit
	// runtime).
	if c.RuntimeMinutes == 0 {
		c.RuntimeMinutes = other.RuntimeMinutes
	}
	if c.Overview == "" {
		c.Overview = other.Overview
	}
	if c.Year == 0 {
		c.Year = other.Year
	}
}

// RankedResult is a candidate plus its relevance score and a short
// human-readable justification. Created once by the ranker, never mutated.
type RankedResult struct {
	Candidate Candidate `json:"candidate"`

	// RelevanceScore is the normalized weighted score in [0,1].
	RelevanceScore float64 `json:"relevance_score"`

	// Reasoning is a short natural-language justification, e.g.
	// "Because it matches your genres and it is highly rated."
	Reasoning string `json:"reasoning"`
}

// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

// SourceConfidence classifies how directly a discovery method implies
// relevance. Higher ordinals win when the same catalog entry is surfaced by
// multiple sources.
type SourceConfidence int

const (
	// SourceNone is the zero value; candidates never carry it past creation.
	SourceNone SourceConfidence = iota
	// SourceGenreDiscovery is a hit from the popularity-sorted discover query.
	SourceGenreDiscovery
	// SourceQualityDiscovery is a highly-rated hit from the rating-sorted
	// discover query.
	SourceQualityDiscovery
	// SourcePersonSearch is a hit from a person-filtered discover query.
	SourcePersonSearch
	// SourceRecommendation is a catalog "recommendations" hit for a seed title.
	SourceRecommendation
	// SourceSimilar is a catalog "similar" hit for a seed title.
	SourceSimilar
	// SourceMultiSearchExact is a near-exact multi-search hit for a named title.
	SourceMultiSearchExact
	// SourceExactMatch is a verified exact match for a named title.
	SourceExactMatch
)

// maxConfidenceOrdinal normalizes ordinals into [0,1] for the ranker's base
// factor.
const maxConfidenceOrdinal = 3.0

// confidenceOrdinals is the single tunable lookup table for source weights.
// Retune here, not in pipeline logic.
var confidenceOrdinals = map[SourceConfidence]float64{
	SourceExactMatch:       3.0,
	SourceMultiSearchExact: 2.8,
	SourceSimilar:          1.8,
	SourceRecommendation:   1.7,
	SourcePersonSearch:     1.6,
	SourceQualityDiscovery: 1.4,
	SourceGenreDiscovery:   1.2,
}

// Ordinal returns the fixed confidence weight for this source.
func (s SourceConfidence) Ordinal() float64 {
	return confidenceOrdinals[s]
}

// Normalized returns the ordinal scaled into [0,1].
func (s SourceConfidence) Normalized() float64 {
	return s.Ordinal() / maxConfidenceOrdinal
}

// String returns a stable identifier used in logs and metrics labels.
func (s SourceConfidence) String() string {
	switch s {
	case SourceExactMatch:
		return "exact_match"
	case SourceMultiSearchExact:
		return "multi_search_exact"
	case SourceSimilar:
		return "similar"
	case SourceRecommendation:
		return "recommendation"
	case SourcePersonSearch:
		return "person_search"
	case SourceQualityDiscovery:
		return "quality_discovery"
	case SourceGenreDiscovery:
		return "genre_discovery"
	default:
		return "none"
	}
}

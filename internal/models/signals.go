// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

// QuerySignals are the request-side identifiers discovery resolved from the
// intent. The ranker measures candidate overlap against these sets; their
// sizes are the overlap denominators.
type QuerySignals struct {
	// ExplicitGenreIDs were named as genres in the query.
	ExplicitGenreIDs map[int]struct{}

	// MoodGenreIDs arrived only via mood-to-genre mapping. Matches against
	// them earn partial credit.
	MoodGenreIDs map[int]struct{}

	// PersonIDs are the resolved people named in the query.
	PersonIDs map[int]struct{}
}

// GenreCount returns the total number of requested genre ids.
func (s QuerySignals) GenreCount() int {
	return len(s.ExplicitGenreIDs) + len(s.MoodGenreIDs)
}

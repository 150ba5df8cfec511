// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import "strings"

// moodGenres maps tonal cues to catalog genre keywords. Multiple moods
// combine with OR semantics; conjunctive matching would over-constrain vague
// queries. Keys and values are matched case-insensitively against the
// catalog's genre taxonomy.
var moodGenres = map[string][]string{
	"feel-good":         {"comedy", "family", "music", "romance"},
	"feel good":         {"comedy", "family", "music", "romance"},
	"uplifting":         {"comedy", "family", "music", "drama"},
	"heartwarming":      {"family", "drama", "romance"},
	"dark":              {"thriller", "horror", "crime"},
	"gritty":            {"crime", "thriller", "drama"},
	"scary":             {"horror", "thriller"},
	"funny":             {"comedy"},
	"romantic":          {"romance", "comedy", "drama"},
	"tense":             {"thriller", "mystery", "crime"},
	"thought-provoking": {"drama", "science fiction", "mystery"},
	"mind-bending":      {"science fiction", "mystery", "thriller"},
	"action-packed":     {"action", "adventure"},
	"epic":              {"adventure", "fantasy", "action"},
	"nostalgic":         {"family", "comedy", "adventure"},
	"family-friendly":   {"family", "animation", "comedy"},
	"whimsical":         {"fantasy", "animation", "comedy"},
	"sad":               {"drama"},
	"inspiring":         {"drama", "history", "music"},
}

// MoodGenreKeywords returns the deduplicated genre keywords the given moods
// map to. Unknown moods contribute nothing; they still participate in
// theme-overlap scoring as free-text tokens.
func MoodGenreKeywords(moods []string) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, mood := range moods {
		for _, g := range moodGenres[strings.ToLower(strings.TrimSpace(mood))] {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			keywords = append(keywords, g)
		}
	}
	return keywords
}

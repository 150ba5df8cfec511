// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ranking

import "strings"

// stopwords are high-frequency tokens that carry no theme signal. Scoring
// is ratio-based, so the list only needs to cover the common noise, not be
// exhaustive.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "are": {}, "was": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "his": {}, "has": {},
	"have": {}, "its": {}, "she": {}, "they": {}, "them": {}, "their": {},
	"when": {}, "who": {}, "will": {}, "one": {}, "out": {}, "into": {},
	"about": {}, "after": {}, "more": {}, "than": {}, "where": {},
}

// tokenize lowercases the text, splits on non-alphanumeric runes, and drops
// stopwords and tokens shorter than three characters. Deterministic by
// construction; no stemming.
func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isAlphanumeric(r)
	})

	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, skip := stopwords[f]; skip {
			continue
		}
		tokens[f] = struct{}{}
	}
	return tokens
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z')
}

// overlapRatio returns |want ∩ have| / |want|, or 0 when want is empty.
func overlapRatio(want, have map[string]struct{}) float64 {
	if len(want) == 0 {
		return 0
	}
	matched := 0
	for token := range want {
		if _, ok := have[token]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(want))
}

// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"sort"

	"reelquest/internal/models"
)

// Merge deduplicates candidates by catalog identity. When the same entry is
// seen by multiple sources the highest-confidence sighting keeps its base
// fields and absorbs the signal annotations of the rest, so duplicates only
// ever strengthen a candidate. Output order is deterministic.
func Merge(pool []models.Candidate) []models.Candidate {
	byKey := make(map[models.CandidateKey]*models.Candidate, len(pool))
	order := make([]models.CandidateKey, 0, len(pool))

	for i := range pool {
		cand := pool[i]
		existing, ok := byKey[cand.Key]
		if !ok {
			kept := cand
			byKey[cand.Key] = &kept
			order = append(order, cand.Key)
			continue
		}
		if cand.Source.Ordinal() > existing.Source.Ordinal() {
			// The new sighting is stronger: it takes over as the base and
			// absorbs what the weaker one had collected.
			cand.Absorb(existing)
			*existing = cand
		} else {
			existing.Absorb(&cand)
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].MediaType != order[j].MediaType {
			return order[i].MediaType < order[j].MediaType
		}
		return order[i].CatalogID < order[j].CatalogID
	})

	merged := make([]models.Candidate, 0, len(order))
	for _, key := range order {
		merged = append(merged, *byKey[key])
	}
	return merged
}

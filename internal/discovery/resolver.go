// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import (
	"context"

	"github.com/rs/zerolog"

	"reelquest/internal/config"
	"reelquest/internal/logging"
	"reelquest/internal/models"
	"reelquest/internal/tmdb"
)

// Resolution is the outcome of resolving an intent's explicit titles and
// people against the catalog.
type Resolution struct {
	// ExactMatch is the verified exact match for the first resolvable
	// title, if any. When the user is not asking for suggestions this
	// short-circuits the pipeline.
	ExactMatch *models.Candidate

	// Seed identifies the title used for similar/recommendation lookups.
	// Set whenever an exact match exists, and otherwise to the strongest
	// near match.
	Seed *models.CandidateKey

	// PersonIDs are resolved person identifiers, used as discovery
	// filters, never as final results.
	PersonIDs []int

	// Pool holds near-exact title hits that enter the candidate pool
	// directly with MultiSearchExact confidence.
	Pool []models.Candidate
}

// Resolver resolves explicit titles and people to catalog identifiers.
type Resolver struct {
	catalog Catalog
	cfg     *config.DiscoveryConfig
	logger  zerolog.Logger
}

// NewResolver creates a resolver.
func NewResolver(catalog Catalog, cfg *config.DiscoveryConfig) *Resolver {
	return &Resolver{
		catalog: catalog,
		cfg:     cfg,
		logger:  logging.Logger().With().Str("component", "resolver").Logger(),
	}
}

// Resolve performs multi-type searches for each named title and person.
// Individual search failures are logged and skipped; only cancellation
// aborts resolution.
func (r *Resolver) Resolve(ctx context.Context, in models.Intent) (*Resolution, error) {
	res := &Resolution{}

	for _, title := range in.Titles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.resolveTitle(ctx, in, title, res); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn().Err(err).Str("title", title).Msg("title resolution failed")
		}
	}

	for _, person := range in.People {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := r.resolvePerson(ctx, person)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn().Err(err).Str("person", person).Msg("person resolution failed")
			continue
		}
		if id > 0 {
			res.PersonIDs = append(res.PersonIDs, id)
		}
	}

	return res, nil
}

// resolveTitle searches one title and classifies its hits.
func (r *Resolver) resolveTitle(ctx context.Context, in models.Intent, title string, res *Resolution) error {
	hits, err := r.catalog.SearchMulti(ctx, title, 1)
	if err != nil {
		return err
	}

	targetYear, hasYear := in.TargetYear()

	var bestNear *models.Candidate
	var bestNearSim float64

	for i := range hits {
		hit := hits[i]
		mt, ok := models.ParseMediaType(hit.MediaType)
		if !ok || !in.WantsType(mt) {
			continue
		}

		sim := TitleSimilarity(title, hit.DisplayTitle())
		if sim < r.cfg.ExactMatchThreshold {
			continue
		}

		cand := multiToCandidate(hit, mt, models.SourceMultiSearchExact)

		yearOK := !hasYear || (cand.Year != 0 && absInt(cand.Year-targetYear) <= 1)
		if yearOK && res.ExactMatch == nil {
			exact := cand
			exact.Source = models.SourceExactMatch
			res.ExactMatch = &exact
			r.fillMovieRuntime(ctx, res.ExactMatch)
			continue
		}

		if sim > bestNearSim {
			bestNearSim = sim
			bestNear = &cand
		}
	}

	if bestNear != nil {
		res.Pool = append(res.Pool, *bestNear)
	}

	// The exact match (or failing that, the strongest near match) seeds
	// similar/recommendation discovery.
	if res.Seed == nil {
		switch {
		case res.ExactMatch != nil:
			key := res.ExactMatch.Key
			res.Seed = &key
		case bestNear != nil:
			key := bestNear.Key
			res.Seed = &key
		}
	}

	return nil
}

// fillMovieRuntime fetches the runtime for an exact-match movie; list pages
// do not carry it. Best effort: a failure leaves runtime unknown.
func (r *Resolver) fillMovieRuntime(ctx context.Context, cand *models.Candidate) {
	if cand.Key.MediaType != models.MediaTypeMovie {
		return
	}
	details, err := r.catalog.MovieDetails(ctx, cand.Key.CatalogID)
	if err != nil {
		r.logger.Debug().Err(err).Int("id", cand.Key.CatalogID).Msg("runtime lookup failed")
		return
	}
	cand.RuntimeMinutes = details.Runtime
}

// resolvePerson returns the best-matching person id, or 0 when none clears
// the similarity floor.
func (r *Resolver) resolvePerson(ctx context.Context, name string) (int, error) {
	hits, err := r.catalog.SearchMulti(ctx, name, 1)
	if err != nil {
		return 0, err
	}

	bestID := 0
	bestSim := r.cfg.PersonMatchThreshold
	for _, hit := range hits {
		if hit.MediaType != "person" {
			continue
		}
		if sim := TitleSimilarity(name, hit.DisplayTitle()); sim >= bestSim {
			bestSim = sim
			bestID = hit.ID
		}
	}
	return bestID, nil
}

func multiToCandidate(hit tmdb.MultiResult, mt models.MediaType, source models.SourceConfidence) models.Candidate {
	return models.Candidate{
		Key:              models.CandidateKey{MediaType: mt, CatalogID: hit.ID},
		Name:             hit.DisplayTitle(),
		Overview:         hit.Overview,
		VoteAverage:      hit.VoteAverage,
		VoteCount:        hit.VoteCount,
		Year:             hit.Year(),
		PosterPath:       hit.PosterPath,
		OriginalLanguage: hit.OriginalLanguage,
		Source:           source,
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
